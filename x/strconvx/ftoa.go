package strconvx

// Ftoa1 formats a float with exactly one decimal place, the fixed web/display
// formatting used throughout the station.
func Ftoa1(v float64) string { return FormatFloat(v, 'f', 1, 64) }
