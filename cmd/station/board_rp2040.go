//go:build rp2040 || rp2350

package main

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"
	"tinygo.org/x/drivers/ssd1306"

	"weatherstation-go/drivers/aht20"
	"weatherstation-go/drivers/bmp280"
	"weatherstation-go/services/display"
	"weatherstation-go/services/input"
	"weatherstation-go/x/fmtx"
)

// BitDogLab pin map.
const (
	pinSensorSDA = machine.GPIO0
	pinSensorSCL = machine.GPIO1
	pinOLEDSDA   = machine.GPIO14
	pinOLEDSCL   = machine.GPIO15

	pinLEDRed   = machine.GPIO13
	pinLEDGreen = machine.GPIO11
	pinLEDBlue  = machine.GPIO12
	pinBuzzer   = machine.GPIO21

	pinBtnLogToggle   = machine.GPIO5
	pinBtnBootloader  = machine.GPIO6
	pinBtnResetConfig = machine.GPIO22
)

func newBoard() *board {
	uartx.UART0.Configure(uartx.UARTConfig{BaudRate: 115200})
	fmtx.DefaultOutput = uartx.UART0

	// Sensors share I2C0, the display has I2C1 to itself.
	machine.I2C0.Configure(machine.I2CConfig{
		SDA: pinSensorSDA, SCL: pinSensorSCL, Frequency: 400e3,
	})
	machine.I2C1.Configure(machine.I2CConfig{
		SDA: pinOLEDSDA, SCL: pinOLEDSCL, Frequency: 400e3,
	})

	th := aht20.New(machine.I2C0)
	th.Configure()
	press := bmp280.New(machine.I2C0)
	if err := press.Configure(); err != nil {
		println("Error: bmp280 init:", err.Error())
	}

	oled := ssd1306.NewI2C(machine.I2C1)
	oled.Configure(ssd1306.Config{Address: 0x3C, Width: 128, Height: 64})

	for _, p := range []machine.Pin{pinLEDRed, pinLEDGreen, pinLEDBlue, pinBuzzer} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}

	link, _ := probe.Probe()

	return &board{
		th:         &thSensor{dev: th},
		press:      &pressSensor{dev: press},
		display:    display.NewOLED(&oled),
		beeper:     pinBeeper{pin: pinBuzzer},
		led:        pinLED{r: pinLEDRed, g: pinLEDGreen, b: pinLEDBlue},
		link:       &radioLink{nl: link},
		listenAddr: "", // taken from the http config section
		bootloader: machine.EnterBootloader,
		bindButtons: func(d *input.Dispatcher) {
			bindButton(pinBtnResetConfig, d, input.BtnResetConfig)
			bindButton(pinBtnBootloader, d, input.BtnBootloader)
			bindButton(pinBtnLogToggle, d, input.BtnLogToggle)
		},
	}
}

func bindButton(pin machine.Pin, d *input.Dispatcher, b input.Button) {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	err := pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		d.ISR(b)
	})
	if err != nil {
		println("Error: button irq:", err.Error())
	}
}

// --- sensor adaptors ---

type thSensor struct{ dev *aht20.Device }

func (s *thSensor) Measure() (float64, float64, error) {
	if err := s.dev.Read(); err != nil {
		return 0, 0, err
	}
	return s.dev.Celsius(), s.dev.RelHumidity(), nil
}

type pressSensor struct{ dev *bmp280.Device }

func (s *pressSensor) Measure() (float64, error) {
	if err := s.dev.Read(); err != nil {
		return 0, err
	}
	return s.dev.Pressure(), nil
}

// --- output adaptors ---

type pinBeeper struct{ pin machine.Pin }

func (b pinBeeper) SetActive(on bool) { b.pin.Set(on) }

type pinLED struct{ r, g, b machine.Pin }

func (l pinLED) Set(r, g, b bool) {
	l.r.Set(r)
	l.g.Set(g)
	l.b.Set(b)
}

// --- radio adaptor ---

type radioLink struct {
	nl       netlink.Netlinker
	notified bool
	up       bool
}

func (r *radioLink) Connect(p *netlink.ConnectParams) error {
	if !r.notified {
		r.nl.NetNotify(func(e netlink.Event) {
			switch e {
			case netlink.EventNetUp:
				r.up = true
			case netlink.EventNetDown:
				r.up = false
			}
		})
		r.notified = true
	}
	if err := r.nl.NetConnect(p); err != nil {
		return err
	}
	r.up = true
	return nil
}

func (r *radioLink) Disconnect() {
	r.nl.NetDisconnect()
	r.up = false
}

func (r *radioLink) NetConnected() bool { return r.up }
