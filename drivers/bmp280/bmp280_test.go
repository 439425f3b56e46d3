package bmp280

import (
	"math"
	"testing"
)

// Worked example from the Bosch datasheet (section 3.12): these calibration
// words and raw readings must compensate to 25.08 °C and 96386.2 Pa.
func TestCompensateDatasheetExample(t *testing.T) {
	cal := calibration{
		t1: 27504, t2: 26435, t3: -1000,
		p1: 36477, p2: -10685, p3: 3024, p4: 2855,
		p5: 140, p6: -7, p7: 15500, p8: -14600, p9: 6000,
	}
	tC, hPa := cal.compensate(519888, 415148)
	if math.Abs(tC-25.08) > 0.01 {
		t.Fatalf("temperature = %v, want 25.08", tC)
	}
	if math.Abs(hPa-963.862) > 0.01 {
		t.Fatalf("pressure = %v hPa, want ~963.862", hPa)
	}
}

func TestCompensateZeroP1(t *testing.T) {
	cal := calibration{t1: 27504, t2: 26435, t3: -1000}
	_, hPa := cal.compensate(519888, 415148)
	if hPa != 0 {
		t.Fatalf("expected 0 pressure with p1=0, got %v", hPa)
	}
}
