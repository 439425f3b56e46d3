// services/alert/alert.go
package alert

import (
	"context"
	"time"

	"weatherstation-go/bus"
	"weatherstation-go/state"
	"weatherstation-go/types"
	"weatherstation-go/x/fmtx"
	"weatherstation-go/x/mathx"
)

// -----------------------------------------------------------------------------
// Output contracts
// -----------------------------------------------------------------------------

// Beeper drives the buzzer; SetActive(true) starts the tone.
type Beeper interface {
	SetActive(on bool)
}

// StatusLED drives the RGB status indicator.
type StatusLED interface {
	Set(r, g, b bool)
}

// -----------------------------------------------------------------------------
// Service
//
// Every 500 ms the snapshot is checked against the limits. The audible
// pattern fires only on the false→true transition; while the condition
// persists (or clears) the buzzer stays silent. A cycle that cannot take a
// lock is skipped entirely, leaving the alert state unchanged.
// -----------------------------------------------------------------------------

const (
	period       = 500 * time.Millisecond
	beepCycles   = 3
	beepDuration = 200 * time.Millisecond
	beepPause    = 100 * time.Millisecond
)

var (
	topicNetState   = bus.T("net", "state")
	topicAlertState = bus.T("alert", "state")
)

type Service struct {
	st     *state.Store
	conn   *bus.Connection
	beeper Beeper
	led    StatusLED

	// Shortened in tests.
	BeepDuration, BeepPause time.Duration

	active bool
	linkUp bool
}

func New(st *state.Store, conn *bus.Connection, beeper Beeper, led StatusLED) *Service {
	return &Service{
		st: st, conn: conn, beeper: beeper, led: led,
		BeepDuration: beepDuration, BeepPause: beepPause,
	}
}

func (s *Service) Start(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	netSub := s.conn.Subscribe(topicNetState)
	defer s.conn.Unsubscribe(netSub)

	tick := time.NewTicker(period)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: alert service stopping")
			return
		case msg := <-netSub.Channel():
			if ls, ok := msg.Payload.(types.LinkState); ok {
				s.linkUp = ls.Up
			}
		case <-tick.C:
			s.cycle()
		}
	}
}

// cycle evaluates the alert condition once.
func (s *Service) cycle() {
	snap, err := s.st.Snapshot()
	if err != nil {
		return // run one cycle behind rather than stall
	}
	lim, err := s.st.Limits()
	if err != nil {
		return
	}

	alert := !mathx.Between(snap.Temp, lim.TempMin, lim.TempMax) ||
		!mathx.Between(snap.Hum, lim.HumMin, lim.HumMax) ||
		!mathx.Between(snap.Press, lim.PressMin, lim.PressMax)

	if alert != s.active {
		if alert {
			fmtx.Printf("Warn: reading out of limits: temp=%.1f hum=%.1f press=%.1f\n",
				snap.Temp, snap.Hum, snap.Press)
			s.emit()
		} else {
			println("Info: all readings back within limits")
		}
		s.active = alert
		s.conn.Publish(s.conn.NewMessage(topicAlertState, alert, true))
	}
	s.updateLED()
}

// emit plays the audible pattern. Deliberately blocking for this task only;
// alert emission ranks below sampling.
func (s *Service) emit() {
	for i := 0; i < beepCycles; i++ {
		s.beeper.SetActive(true)
		time.Sleep(s.BeepDuration)
		s.beeper.SetActive(false)
		time.Sleep(s.BeepPause)
	}
}

func (s *Service) updateLED() {
	if s.active {
		s.led.Set(true, false, false)
		return
	}
	// Green when healthy; blue blended in while the link is down.
	s.led.Set(false, true, !s.linkUp)
}
