//go:build !(rp2040 || rp2350)

package main

import (
	"math/rand"

	"tinygo.org/x/drivers/netlink"

	"weatherstation-go/services/input"
	"weatherstation-go/x/fmtx"
)

// Host simulation: random-walk sensors, console display, printed outputs.
// Lets the whole stack run on a laptop with curl against :8080.
func newBoard() *board {
	return &board{
		th:         &simTH{temp: 22.5, hum: 45.0},
		press:      &simPress{press: 1013.2},
		display:    consoleDisplay{},
		beeper:     consoleBeeper{},
		led:        &consoleLED{},
		link:       &simLink{},
		listenAddr: ":8080",
		bootloader: func() { println("Info: bootloader entry (simulated)") },
		bindButtons: func(d *input.Dispatcher) {
			// No physical buttons on the host; dispatcher still runs so the
			// actions stay reachable from tests and future console bindings.
		},
	}
}

func walk(v *float64, step, lo, hi float64) {
	*v += (rand.Float64() - 0.5) * step
	if *v < lo {
		*v = lo
	}
	if *v > hi {
		*v = hi
	}
}

type simTH struct{ temp, hum float64 }

func (s *simTH) Measure() (float64, float64, error) {
	walk(&s.temp, 0.4, 15, 35)
	walk(&s.hum, 1.0, 20, 80)
	return s.temp, s.hum, nil
}

type simPress struct{ press float64 }

func (s *simPress) Measure() (float64, error) {
	walk(&s.press, 0.6, 980, 1040)
	return s.press, nil
}

type consoleDisplay struct{}

func (consoleDisplay) Render(lines []string) error {
	out := "[display]"
	for _, ln := range lines {
		out += " | " + ln
	}
	println(out)
	return nil
}

type consoleBeeper struct{}

func (consoleBeeper) SetActive(on bool) {
	if on {
		println("[beeper] on")
	}
}

type consoleLED struct{ last string }

func (l *consoleLED) Set(r, g, b bool) {
	s := fmtx.Sprintf("r=%t g=%t b=%t", r, g, b)
	if s == l.last {
		return
	}
	l.last = s
	println("[led]", s)
}

// simLink pretends the join succeeds after one failed attempt, which
// exercises the monitor's retry path.
type simLink struct {
	attempts int
	up       bool
}

func (s *simLink) Connect(p *netlink.ConnectParams) error {
	s.attempts++
	if s.attempts == 1 {
		return errStartingUp
	}
	println("Info: simulated join to", p.Ssid)
	s.up = true
	return nil
}

func (s *simLink) Disconnect()        { s.up = false }
func (s *simLink) NetConnected() bool { return s.up }

type simError string

func (e simError) Error() string { return string(e) }

const errStartingUp = simError("radio still starting")
