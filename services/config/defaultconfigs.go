package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgStation = `{
  "wifi": {
      "ssid": "station-net",
      "pass": "change-me",
      "connect_timeout_ms": 10000,
      "retry_ms": 5000,
      "max_attempts": 5
  },
  "sampling": {
      "interval_ms": 2000,
      "log": true
  },
  "http": {
      "port": 80
  }
}`

var embeddedConfigs = map[string][]byte{
	"station": []byte(cfgStation),
}
