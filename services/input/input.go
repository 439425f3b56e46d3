// services/input/input.go
package input

import (
	"context"
	"sync/atomic"

	"weatherstation-go/bus"
	"weatherstation-go/state"
	"weatherstation-go/x/timex"
)

// Button identifies a physical input source.
type Button int

const (
	BtnResetConfig Button = iota
	BtnBootloader
	BtnLogToggle
	numButtons
)

func (b Button) String() string {
	switch b {
	case BtnResetConfig:
		return "reset-config"
	case BtnBootloader:
		return "bootloader"
	case BtnLogToggle:
		return "log-toggle"
	}
	return "unknown"
}

const debounceMs = 200

var topicButton = bus.T("button", "event")

// -----------------------------------------------------------------------------
// Dispatcher
//
// ISR() is the only entry point safe to call from an interrupt handler: it
// does a non-blocking channel send and counts drops. The consumer goroutine
// applies a per-button debounce window and performs the bound action.
// -----------------------------------------------------------------------------

type Dispatcher struct {
	st   *state.Store
	conn *bus.Connection

	// Enters the bootloader; injected because it never returns on hardware.
	Bootloader func()

	// Written by ISR; MUST NOT block the ISR:
	isrQ chan Button

	lastFired [numButtons]int64 // ms timestamps
	drops     uint32
}

func New(st *state.Store, conn *bus.Connection) *Dispatcher {
	return &Dispatcher{
		st:   st,
		conn: conn,
		isrQ: make(chan Button, 16),
	}
}

// ISR queues a press. Fast path only: non-blocking send, drop on overflow.
func (d *Dispatcher) ISR(b Button) {
	select {
	case d.isrQ <- b:
	default:
		atomic.AddUint32(&d.drops, 1)
	}
}

func (d *Dispatcher) ISRDrops() uint32 { return atomic.LoadUint32(&d.drops) }

func (d *Dispatcher) Start(ctx context.Context) error {
	go d.run(ctx)
	return nil
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			println("Info: input dispatcher stopping")
			return
		case b := <-d.isrQ:
			d.handle(b, timex.NowMs())
		}
	}
}

// handle debounces and performs the button's action.
func (d *Dispatcher) handle(b Button, nowMs int64) {
	if b < 0 || b >= numButtons {
		return
	}
	if last := d.lastFired[b]; last != 0 && nowMs-last < debounceMs {
		return
	}
	d.lastFired[b] = nowMs

	switch b {
	case BtnResetConfig:
		if err := d.st.ResetDefaults(); err != nil {
			println("Error: config reset:", err.Error())
			return
		}
		println("Info: configuration reset to defaults")
	case BtnBootloader:
		println("Info: entering bootloader")
		if d.Bootloader != nil {
			d.Bootloader()
		}
	case BtnLogToggle:
		on := d.st.ToggleLogging()
		if on {
			println("Info: sensor logging enabled")
		} else {
			println("Info: sensor logging disabled")
		}
	}
	d.conn.Publish(d.conn.NewMessage(topicButton, b.String(), false))
}
