// services/netmon/netmon.go
package netmon

import (
	"context"
	"time"

	"tinygo.org/x/drivers/netlink"

	"weatherstation-go/bus"
	"weatherstation-go/types"
	"weatherstation-go/x/strconvx"
)

// Link is the slice of the radio driver the monitor needs.
type Link interface {
	Connect(params *netlink.ConnectParams) error
	Disconnect()
	NetConnected() bool
}

const (
	defaultRetry   = 5 * time.Second
	defaultTimeout = 10 * time.Second
)

var (
	topicWifiConfig = bus.T("config", "wifi")
	topicNetState   = bus.T("net", "state")
)

// Service keeps the wireless link alive. Link loss is never fatal: after the
// configured initial attempts it keeps retrying on the fixed interval
// indefinitely, publishing the retained link state on every transition.
type Service struct {
	conn *bus.Connection
	link Link

	params      netlink.ConnectParams
	retry       time.Duration
	maxAttempts int

	attempts int
	up       bool
	haveCfg  bool
}

func New(conn *bus.Connection, link Link) *Service {
	return &Service{
		conn:  conn,
		link:  link,
		retry: defaultRetry,
		params: netlink.ConnectParams{
			ConnectTimeout: defaultTimeout,
		},
	}
}

func (s *Service) Start(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicWifiConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState(false)

	tick := time.NewTicker(s.retry)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: net monitor stopping")
			s.link.Disconnect()
			return
		case msg := <-cfgSub.Channel():
			s.applyConfig(msg.Payload)
		case <-tick.C:
			s.check()
			tick.Reset(s.retry)
		}
	}
}

// check reconciles the actual link state with the published one, attempting
// a reconnect when the link is down.
func (s *Service) check() {
	if !s.haveCfg {
		return
	}
	if s.link.NetConnected() {
		if !s.up {
			println("Info: wifi link up")
			s.up = true
			s.publishState(true)
		}
		return
	}
	if s.up {
		println("Warn: wifi link lost")
		s.up = false
		s.publishState(false)
	}

	s.attempts++
	if err := s.link.Connect(&s.params); err != nil {
		if s.maxAttempts > 0 && s.attempts == s.maxAttempts {
			println("Warn: wifi not connected after", strconvx.Itoa(s.attempts), "attempts, still retrying")
		}
		return
	}
	println("Info: wifi connected to", s.params.Ssid)
	s.attempts = 0
	s.up = true
	s.publishState(true)
}

func (s *Service) publishState(up bool) {
	s.conn.Publish(s.conn.NewMessage(topicNetState, types.LinkState{Up: up}, true))
}

func (s *Service) applyConfig(v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	if ssid, ok := m["ssid"].(string); ok {
		s.params.Ssid = ssid
	}
	if pass, ok := m["pass"].(string); ok {
		s.params.Passphrase = pass
	}
	if ms, ok := num(m["connect_timeout_ms"]); ok && ms > 0 {
		s.params.ConnectTimeout = time.Duration(ms) * time.Millisecond
	}
	if ms, ok := num(m["retry_ms"]); ok && ms >= 1000 {
		s.retry = time.Duration(ms) * time.Millisecond
	}
	if n, ok := num(m["max_attempts"]); ok {
		s.maxAttempts = int(n)
	}
	s.haveCfg = s.params.Ssid != ""
}

// num accepts the numeric shapes the JSON decoder may hand back.
func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
