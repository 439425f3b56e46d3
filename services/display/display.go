// services/display/display.go
package display

import (
	"context"
	"time"

	"weatherstation-go/bus"
	"weatherstation-go/state"
	"weatherstation-go/types"
	"weatherstation-go/x/strconvx"
)

// Display accepts a full frame of text lines and commits it.
type Display interface {
	Render(lines []string) error
}

const period = 500 * time.Millisecond

var topicNetState = bus.T("net", "state")

// Service renders the snapshot and link status every 500 ms.
type Service struct {
	st   *state.Store
	conn *bus.Connection
	disp Display

	linkUp bool
}

func New(st *state.Store, conn *bus.Connection, disp Display) *Service {
	return &Service{st: st, conn: conn, disp: disp}
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
			println("Info: display service stopping")
			return
		case msg := <-netSub.Channel():
			if ls, ok := msg.Payload.(types.LinkState); ok {
				s.linkUp = ls.Up
			}
		case <-tick.C:
			s.frame()
		}
	}
}

func (s *Service) frame() {
	snap, err := s.st.Snapshot()
	if err != nil {
		return // keep the previous frame for one cycle
	}
	wifi := "---"
	if s.linkUp {
		wifi = "OK"
	}
	lines := []string{
		"Temp: " + strconvx.Ftoa1(snap.Temp) + " C",
		"Hum: " + strconvx.Ftoa1(snap.Hum) + " %",
		"Press: " + strconvx.Ftoa1(snap.Press) + " hPa",
		"WiFi: " + wifi,
	}
	if err := s.disp.Render(lines); err != nil {
		println("Error: display render:", err.Error())
	}
}
