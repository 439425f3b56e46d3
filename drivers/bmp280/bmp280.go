// Package bmp280 provides a driver for the BMP280 pressure/temperature
// sensor in normal (continuous) mode. Read() fetches one burst of raw data
// and runs the datasheet's fixed-point compensation; accessors return the
// last compensated values.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package bmp280

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C address (SDO low). Use AddressHigh with SDO pulled up.
const (
	Address     = 0x76
	AddressHigh = 0x77
)

// Registers.
const (
	regCalib    = 0x88
	regID       = 0xD0
	regCtrlMeas = 0xF4
	regConfig   = 0xF5
	regData     = 0xF7

	chipID = 0x58
)

// Errors returned by the driver.
var (
	ErrBadChip  = errors.New("bmp280: unexpected chip id")
	ErrNotReady = errors.New("bmp280: no sample yet")
)

type calibration struct {
	t1         uint16
	t2, t3     int16
	p1         uint16
	p2, p3, p4 int16
	p5, p6, p7 int16
	p8, p9     int16
}

// Device wraps an I2C connection to a BMP280.
type Device struct {
	bus  drivers.I2C
	addr uint16

	cal   calibration
	buf   [24]byte
	press float64 // hPa
	temp  float64 // °C
}

// New creates a new BMP280 connection. The I2C bus must already be
// configured; New does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, addr: Address}
}

// Configure verifies the chip id, loads the factory calibration and starts
// normal mode with x4/x4 oversampling.
func (d *Device) Configure() error {
	id := []byte{0}
	if err := d.bus.Tx(d.addr, []byte{regID}, id); err != nil {
		return err
	}
	if id[0] != chipID {
		return ErrBadChip
	}

	cal := d.buf[:24]
	if err := d.bus.Tx(d.addr, []byte{regCalib}, cal); err != nil {
		return err
	}
	u16 := func(i int) uint16 { return uint16(cal[i]) | uint16(cal[i+1])<<8 }
	d.cal = calibration{
		t1: u16(0), t2: int16(u16(2)), t3: int16(u16(4)),
		p1: u16(6), p2: int16(u16(8)), p3: int16(u16(10)), p4: int16(u16(12)),
		p5: int16(u16(14)), p6: int16(u16(16)), p7: int16(u16(18)),
		p8: int16(u16(20)), p9: int16(u16(22)),
	}

	// osrs_t=x4 (011), osrs_p=x4 (011), mode=normal (11).
	if err := d.bus.Tx(d.addr, []byte{regCtrlMeas, 0x6F}, nil); err != nil {
		return err
	}
	// standby 250 ms, IIR filter x4.
	return d.bus.Tx(d.addr, []byte{regConfig, 0x4C}, nil)
}

// Read fetches one raw burst and compensates it.
func (d *Device) Read() error {
	data := d.buf[:6]
	if err := d.bus.Tx(d.addr, []byte{regData}, data); err != nil {
		return err
	}
	rawP := int32(data[0])<<12 | int32(data[1])<<4 | int32(data[2])>>4
	rawT := int32(data[3])<<12 | int32(data[4])<<4 | int32(data[5])>>4
	if rawP == 0 || rawP == 0x80000 {
		// 0x80000 is the power-on reset value before the first conversion.
		return ErrNotReady
	}
	d.temp, d.press = d.cal.compensate(rawT, rawP)
	return nil
}

// Celsius returns the last compensated temperature in °C.
func (d *Device) Celsius() float64 { return d.temp }

// Pressure returns the last compensated pressure in hPa.
func (d *Device) Pressure() float64 { return d.press }

// compensate implements the datasheet's 32/64-bit integer compensation.
// Returns °C and hPa.
func (c *calibration) compensate(rawT, rawP int32) (float64, float64) {
	// Temperature, 0.01 °C resolution.
	v1 := ((int32(rawT>>3) - int32(c.t1)<<1) * int32(c.t2)) >> 11
	v2 := (((int32(rawT>>4) - int32(c.t1)) * (int32(rawT>>4) - int32(c.t1)) >> 12) * int32(c.t3)) >> 14
	tFine := v1 + v2
	tC := float64((tFine*5+128)>>8) / 100

	// Pressure, Q24.8 Pa.
	p1 := int64(tFine) - 128000
	p2 := p1 * p1 * int64(c.p6)
	p2 += (p1 * int64(c.p5)) << 17
	p2 += int64(c.p4) << 35
	p1 = (p1*p1*int64(c.p3))>>8 + (p1*int64(c.p2))<<12
	p1 = ((int64(1)<<47 + p1) * int64(c.p1)) >> 33
	if p1 == 0 {
		return tC, 0 // avoid division by zero
	}
	p := int64(1048576 - rawP)
	p = ((p<<31 - p2) * 3125) / p1
	v1p := (int64(c.p9) * (p >> 13) * (p >> 13)) >> 25
	v2p := (int64(c.p8) * p) >> 19
	p = ((p + v1p + v2p) >> 8) + int64(c.p7)<<4

	return tC, float64(p) / 256 / 100 // Pa/256 → hPa
}
