// services/sampler/sampler.go
package sampler

import (
	"context"
	"time"

	"weatherstation-go/bus"
	"weatherstation-go/state"
	"weatherstation-go/types"
	"weatherstation-go/x/fmtx"
)

// -----------------------------------------------------------------------------
// Sensor contracts
//
// Bus drivers and calibration live below this line; the task only sees
// converted engineering units.
// -----------------------------------------------------------------------------

// THSensor supplies one converted temperature/humidity reading per call.
type THSensor interface {
	Measure() (tempC, humPct float64, err error)
}

// PressureSensor supplies one converted pressure reading per call.
type PressureSensor interface {
	Measure() (hPa float64, err error)
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

const defaultInterval = 2 * time.Second

var (
	topicSensorValue    = bus.T("sensor", "value")
	topicConfigSampling = bus.T("config", "sampling")
)

type Service struct {
	st    *state.Store
	conn  *bus.Connection
	th    THSensor
	press PressureSensor

	interval time.Duration

	// Offsets applied to raw readings; refreshed from the config region each
	// cycle, kept from the previous cycle when the lock is busy.
	offTemp, offHum, offPress float64
}

func New(st *state.Store, conn *bus.Connection, th THSensor, press PressureSensor) *Service {
	return &Service{st: st, conn: conn, th: th, press: press, interval: defaultInterval}
}

// Start launches the sampling loop.
func (s *Service) Start(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigSampling)
	defer s.conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: sampler stopping")
			return
		case <-tick.C:
			s.sample()
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval_ms"].(float64); ok && iv >= 200 {
					s.interval = time.Duration(iv) * time.Millisecond
					tick.Reset(s.interval)
				}
				if lg, ok := m["log"].(bool); ok {
					s.st.SetLogging(lg)
				}
			}
		}
	}
}

// sample runs one acquisition cycle. A failed sensor contributes the zero
// sentinel and is logged; the next period is the retry.
func (s *Service) sample() {
	if lim, err := s.st.Limits(); err == nil {
		s.offTemp, s.offHum, s.offPress = lim.TempOffset, lim.HumOffset, lim.PressOffset
	}

	var snap types.Snapshot
	if t, h, err := s.th.Measure(); err != nil {
		println("Error: sampler: temp/hum read failed:", err.Error())
	} else {
		snap.Temp = t + s.offTemp
		snap.Hum = h + s.offHum
	}
	if p, err := s.press.Measure(); err != nil {
		println("Error: sampler: pressure read failed:", err.Error())
	} else {
		snap.Press = p + s.offPress
	}

	if err := s.st.PublishSnapshot(snap); err != nil {
		println("Error: sampler: snapshot publish:", err.Error())
		return
	}
	s.conn.Publish(s.conn.NewMessage(topicSensorValue, snap, false))

	if s.st.LoggingEnabled() {
		fmtx.Printf("Info: sensors temp=%.1fC hum=%.1f%% press=%.1fhPa\n",
			snap.Temp, snap.Hum, snap.Press)
	}
}
