//go:build rp2040 || rp2350

package fmtx

import (
	"io"

	"weatherstation-go/x/strconvx"
)

// DefaultOutput is used by Printf on MCU builds. Set this from the board
// bootstrap (e.g. a UART console writer).
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// --- Public API (signatures match the host variant) ---

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a...)
	return string(b.buf)
}

func Printf(format string, a ...any) (int, error) {
	return io.WriteString(DefaultOutput, Sprintf(format, a...))
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return io.WriteString(w, Sprintf(format, a...))
}

func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

// --- Internals: tiny formatter subset ---
// Supports %s %d %t %v %% and %.Nf floats; no widths or flags. That is all
// this firmware formats.

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

type builder struct{ buf []byte }

func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) any(v any, prec int) {
	switch x := v.(type) {
	case string:
		b.str(x)
	case []byte:
		b.buf = append(b.buf, x...)
	case int:
		b.str(strconvx.Itoa(x))
	case int32:
		b.str(strconvx.FormatInt(int64(x), 10))
	case int64:
		b.str(strconvx.FormatInt(x, 10))
	case uint32:
		b.str(strconvx.FormatUint(uint64(x), 10))
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	case float32:
		b.str(strconvx.FormatFloat(float64(x), 'f', prec, 32))
	case float64:
		b.str(strconvx.FormatFloat(x, 'f', prec, 64))
	case error:
		b.str(x.Error())
	default:
		b.str("<unk>")
	}
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); {
		c := format[i]
		if c != '%' {
			b.buf = append(b.buf, c)
			i++
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			b.buf = append(b.buf, '%')
			i += 2
			continue
		}
		i++
		prec := 6
		if i < len(format) && format[i] == '.' {
			i++
			prec = 0
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				prec = prec*10 + int(format[i]-'0')
				i++
			}
		}
		if i >= len(format) || ai >= len(args) {
			return
		}
		verb := format[i]
		arg := args[ai]
		ai++
		i++
		switch verb {
		case 's', 'd', 't', 'v', 'f':
			b.any(arg, prec)
		default:
			b.str("%!")
			b.buf = append(b.buf, verb)
		}
	}
}
