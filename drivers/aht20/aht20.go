// Package aht20 provides a driver for the AHT20 temperature/humidity sensor.
// It exposes a two-phase measurement API:
//
//	d.Trigger()              // start a measurement (fast)
//	err := d.Collect()       // fetch when ready; returns ErrNotReady while busy
//
// For convenience, d.Read() performs trigger + bounded polling until ready.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package aht20

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits.
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotReady = errors.New("aht20: not ready")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x38 if zero.
	Address uint16
	// PollInterval is used by Read() between Collect() attempts. Default 15 ms.
	PollInterval time.Duration
	// CollectTimeout bounds the total wait in Read(). Default 250 ms.
	CollectTimeout time.Duration
}

// Device wraps an I2C connection to an AHT20.
type Device struct {
	bus drivers.I2C
	cfg Config

	buf      [7]byte // reuse buffer to avoid allocations
	humidity uint32  // last raw humidity sample
	temp     uint32  // last raw temperature sample
}

// New creates a new AHT20 connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, cfg: Config{Address: Address}}
}

// Configure applies optional config and initialises the device if its
// calibration bit is not yet set.
func (d *Device) Configure(cfgs ...Config) {
	if len(cfgs) > 0 {
		d.cfg = cfgs[0]
	}
	if d.cfg.Address == 0 {
		d.cfg.Address = Address
	}
	if d.cfg.PollInterval <= 0 {
		d.cfg.PollInterval = 15 * time.Millisecond
	}
	if d.cfg.CollectTimeout <= 0 {
		d.cfg.CollectTimeout = 250 * time.Millisecond
	}

	st, _ := d.Status() // ignore error; will attempt init anyway
	if st&statusCalibrated != 0 {
		return // already initialised
	}
	_ = d.bus.Tx(d.cfg.Address, []byte{cmdInitialize, 0x08, 0x00}, nil)
	// Guard delay; callers should not expect an immediate ready sample.
	time.Sleep(10 * time.Millisecond)
}

// Reset issues a soft reset. Give the device ~20ms afterwards before using.
func (d *Device) Reset() {
	_ = d.bus.Tx(d.cfg.Address, []byte{cmdSoftReset}, nil)
}

// Status reads and returns the status byte.
func (d *Device) Status() (byte, error) {
	data := []byte{0}
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Trigger starts a measurement. It is a quick register write with no blocking;
// the device then needs ~80 ms to convert.
func (d *Device) Trigger() error {
	return d.bus.Tx(d.cfg.Address, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect attempts to read one measurement into the device cache. While the
// device is still converting, ErrNotReady is returned. Bus errors pass
// through as-is.
func (d *Device) Collect() error {
	data := d.buf[:]
	if err := d.bus.Tx(d.cfg.Address, nil, data); err != nil {
		return err
	}
	if (data[0]&statusCalibrated) == 0 || (data[0]&statusBusy) != 0 {
		return ErrNotReady
	}
	d.humidity = (uint32(data[1]) << 12) | (uint32(data[2]) << 4) | (uint32(data[3]) >> 4)
	d.temp = (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])
	return nil
}

// Read performs a full measurement cycle: Trigger followed by bounded polling
// until Collect succeeds or the timeout elapses.
func (d *Device) Read() error {
	if d.cfg.PollInterval == 0 {
		d.Configure()
	}
	if err := d.Trigger(); err != nil {
		return err
	}
	deadline := time.Now().Add(d.cfg.CollectTimeout)
	for {
		err := d.Collect()
		switch err {
		case nil:
			return nil
		case ErrNotReady:
			if time.Now().After(deadline) {
				return ErrTimeout
			}
			time.Sleep(d.cfg.PollInterval)
		default:
			return err
		}
	}
}

// Celsius returns the last collected temperature in °C.
func (d *Device) Celsius() float64 {
	return (float64(d.temp)*200.0)/0x100000 - 50
}

// RelHumidity returns the last collected relative humidity in %.
func (d *Device) RelHumidity() float64 {
	return (float64(d.humidity) * 100) / 0x100000
}
