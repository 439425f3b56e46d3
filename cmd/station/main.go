package main

import (
	"context"
	"time"

	"weatherstation-go/bus"
	"weatherstation-go/services/alert"
	"weatherstation-go/services/config"
	"weatherstation-go/services/display"
	"weatherstation-go/services/httpd"
	"weatherstation-go/services/input"
	"weatherstation-go/services/netmon"
	"weatherstation-go/services/sampler"
	"weatherstation-go/state"
	"weatherstation-go/x/strconvx"
)

// board is the platform-specific half of the bootstrap, filled in by the
// build-tagged newBoard variants.
type board struct {
	th      sampler.THSensor
	press   sampler.PressureSensor
	display display.Display
	beeper  alert.Beeper
	led     alert.StatusLED
	link    netmon.Link

	listenAddr  string
	bootloader  func()
	bindButtons func(*input.Dispatcher)
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("Info: weather station starting")

	ctx := context.Background()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "station")

	b := bus.NewBus(8)
	st := state.New()

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	brd := newBoard()

	_ = sampler.New(st, b.NewConnection("sampler"), brd.th, brd.press).Start(ctx)
	_ = alert.New(st, b.NewConnection("alert"), brd.beeper, brd.led).Start(ctx)
	_ = display.New(st, b.NewConnection("display"), brd.display).Start(ctx)

	disp := input.New(st, b.NewConnection("input"))
	disp.Bootloader = brd.bootloader
	_ = disp.Start(ctx)
	brd.bindButtons(disp)

	_ = netmon.New(b.NewConnection("netmon"), brd.link).Start(ctx)

	srv := httpd.NewServer(st, httpd.DefaultOptions())
	_ = srv.Start(ctx)

	addr := brd.listenAddr
	if addr == "" {
		addr = configuredAddr(b.NewConnection("http-cfg"))
	}
	go serve(ctx, addr, srv)

	select {}
}

// configuredAddr takes the listen port from the retained http config
// section, defaulting to 80.
func configuredAddr(conn *bus.Connection) string {
	sub := conn.Subscribe(bus.T("config", "http"))
	defer conn.Unsubscribe(sub)

	select {
	case m := <-sub.Channel():
		if cfg, ok := m.Payload.(map[string]any); ok {
			switch p := cfg["port"].(type) {
			case float64:
				if p > 0 {
					return ":" + strconvx.Itoa(int(p))
				}
			case int64:
				if p > 0 {
					return ":" + strconvx.Itoa(int(p))
				}
			}
		}
	case <-time.After(2 * time.Second):
	}
	return ":80"
}

// serve brings the listener up once the stack is ready, retrying while the
// link is still coming up.
func serve(ctx context.Context, addr string, srv *httpd.Server) {
	for {
		t, err := httpd.ListenNet(addr, srv.Handle)
		if err != nil {
			println("Error: listen:", err.Error())
			time.Sleep(5 * time.Second)
			continue
		}
		println("Info: http server on", addr)
		_ = t.Start(ctx)
		return
	}
}
