//go:build rp2040 || rp2350

package strconvx

// Minimal, allocation-aware helpers with identical signatures to the host
// variant. FormatFloat/ParseFloat cover the plain decimal forms this firmware
// exchanges; no exponent notation, not IEEE-round-trip exact.

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func Atoi(s string) (int, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 {
		return 0, parseError{}
	}
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, parseError{}
		}
		v = v*10 + int(c-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}

func FormatInt(i int64, base int) string {
	if i < 0 {
		return "-" + FormatUint(uint64(-i), base)
	}
	return FormatUint(uint64(i), base)
}

func FormatUint(u uint64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	if u == 0 {
		return "0"
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for u > 0 {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	return string(buf[i:])
}

type parseError struct{}

func (parseError) Error() string { return "invalid syntax" }

// FormatFloat supports fmt 'f' with a non-negative precision; other verbs
// fall back to 'f'. Rounds half away from zero.
func FormatFloat(f float64, _ byte, prec, _ int) string {
	if prec < 0 {
		prec = 6
	}
	neg := f < 0
	if neg {
		f = -f
	}
	scale := 1.0
	for i := 0; i < prec; i++ {
		scale *= 10
	}
	scaled := uint64(f*scale + 0.5)
	ip := scaled
	var frac uint64
	if prec > 0 {
		div := uint64(scale)
		ip = scaled / div
		frac = scaled % div
	}
	s := FormatUint(ip, 10)
	if prec > 0 {
		fs := FormatUint(frac, 10)
		for len(fs) < prec {
			fs = "0" + fs
		}
		s += "." + fs
	}
	if neg {
		return "-" + s
	}
	return s
}

// ParseFloat accepts [+-]digits[.digits] only.
func ParseFloat(s string, _ int) (float64, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 {
		return 0, parseError{}
	}
	var v float64
	i := 0
	sawDigit := false
	for ; i < len(s) && s[i] != '.'; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, parseError{}
		}
		v = v*10 + float64(c-'0')
		sawDigit = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		div := 1.0
		for ; i < len(s); i++ {
			c := s[i]
			if c < '0' || c > '9' {
				return 0, parseError{}
			}
			div *= 10
			v += float64(c-'0') / div
			sawDigit = true
		}
	}
	if !sawDigit {
		return 0, parseError{}
	}
	if neg {
		v = -v
	}
	return v, nil
}
