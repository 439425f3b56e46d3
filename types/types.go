// types/types.go
package types

// -----------------------------------------------------------------------------
// Sensor snapshot
// -----------------------------------------------------------------------------

// Snapshot is the most recently published consistent set of readings. It is
// replaced wholesale on every sampling cycle; readers never see a partial
// update.
type Snapshot struct {
	Temp  float64 // °C
	Hum   float64 // %RH
	Press float64 // hPa
}

// -----------------------------------------------------------------------------
// Configuration limits
//
// Invariant per dimension: Min < Max strictly. A write that would violate it
// is rejected, never clamped. Offsets are independent of each other.
// -----------------------------------------------------------------------------

type Limits struct {
	TempMin, TempMax   float64
	HumMin, HumMax     float64
	PressMin, PressMax float64

	TempOffset, HumOffset, PressOffset float64
}

// Factory defaults, applied at boot and on a device reset.
const (
	DefaultTempMin  = 15.0
	DefaultTempMax  = 30.0
	DefaultHumMin   = 30.0
	DefaultHumMax   = 70.0
	DefaultPressMin = 950.0
	DefaultPressMax = 1050.0
)

func DefaultLimits() Limits {
	return Limits{
		TempMin: DefaultTempMin, TempMax: DefaultTempMax,
		HumMin: DefaultHumMin, HumMax: DefaultHumMax,
		PressMin: DefaultPressMin, PressMax: DefaultPressMax,
	}
}

// -----------------------------------------------------------------------------
// Field table
// -----------------------------------------------------------------------------

// Web-facing field names for the nine configurable values.
const (
	FieldTempMin     = "temp_min"
	FieldTempMax     = "temp_max"
	FieldHumMin      = "hum_min"
	FieldHumMax      = "hum_max"
	FieldPressMin    = "press_min"
	FieldPressMax    = "press_max"
	FieldTempOffset  = "temp_offset"
	FieldHumOffset   = "hum_offset"
	FieldPressOffset = "press_offset"
)

// FieldSpec describes the static validation rules for one field: the fixed
// sanity range, and for bound fields the opposite bound it must not cross.
type FieldSpec struct {
	Lo, Hi   float64
	Opposite string // "" for offsets
	IsMin    bool   // valid only when Opposite != ""
}

var fieldSpecs = map[string]FieldSpec{
	FieldTempMin:     {Lo: -50, Hi: 50, Opposite: FieldTempMax, IsMin: true},
	FieldTempMax:     {Lo: -50, Hi: 50, Opposite: FieldTempMin},
	FieldHumMin:      {Lo: 0, Hi: 100, Opposite: FieldHumMax, IsMin: true},
	FieldHumMax:      {Lo: 0, Hi: 100, Opposite: FieldHumMin},
	FieldPressMin:    {Lo: 300, Hi: 1100, Opposite: FieldPressMax, IsMin: true},
	FieldPressMax:    {Lo: 300, Hi: 1100, Opposite: FieldPressMin},
	FieldTempOffset:  {Lo: -10, Hi: 10},
	FieldHumOffset:   {Lo: -10, Hi: 10},
	FieldPressOffset: {Lo: -50, Hi: 50},
}

// Spec returns the validation rules for a field name.
func Spec(field string) (FieldSpec, bool) {
	fs, ok := fieldSpecs[field]
	return fs, ok
}

// Field returns a pointer to the named field within l, or nil for an unknown
// name.
func (l *Limits) Field(name string) *float64 {
	switch name {
	case FieldTempMin:
		return &l.TempMin
	case FieldTempMax:
		return &l.TempMax
	case FieldHumMin:
		return &l.HumMin
	case FieldHumMax:
		return &l.HumMax
	case FieldPressMin:
		return &l.PressMin
	case FieldPressMax:
		return &l.PressMax
	case FieldTempOffset:
		return &l.TempOffset
	case FieldHumOffset:
		return &l.HumOffset
	case FieldPressOffset:
		return &l.PressOffset
	}
	return nil
}

// FieldOrder lists the nine fields in reporting order (GET /config).
var FieldOrder = []string{
	FieldTempMin, FieldTempMax,
	FieldHumMin, FieldHumMax,
	FieldPressMin, FieldPressMax,
	FieldTempOffset, FieldHumOffset, FieldPressOffset,
}
