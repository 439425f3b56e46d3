//go:build rp2040 || rp2350

// services/display/oled.go
package display

import (
	"image/color"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
)

// OLED renders frames on an SSD1306 over I2C.
type OLED struct {
	dev *ssd1306.Device
}

func NewOLED(dev *ssd1306.Device) *OLED {
	dev.ClearBuffer()
	dev.ClearDisplay()
	return &OLED{dev: dev}
}

func (o *OLED) Render(lines []string) error {
	o.dev.ClearBuffer()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	y := int16(10)
	for _, ln := range lines {
		tinyfont.WriteLine(o.dev, &tinyfont.Org01, 2, y, ln, white)
		y += 14
	}
	return o.dev.Display()
}
