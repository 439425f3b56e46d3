// services/httpd/validate.go
package httpd

import (
	"strings"

	"weatherstation-go/errcode"
	"weatherstation-go/state"
	"weatherstation-go/x/strconvx"
)

// Update is one applied config field.
type Update struct {
	Field string
	Value float64
}

// FieldError is one rejected pair. Field may be decorated with the conflict
// detail ("temp_min >= temp_max (30.0)") or an unknown-key marker.
type FieldError struct {
	Field  string
	Reason string
}

// Result of applying one form body: parallel lists of applied fields and
// rejections. The request is a success when at least one field applied.
type Result struct {
	Applied []Update
	Errors  []FieldError
}

func (r Result) OK() bool { return len(r.Applied) > 0 }

// ApplyForm processes a form-encoded body pair by pair, in order. Each valid
// field is applied to the store immediately, so later pairs are validated
// against earlier pairs' effects. Invalid pairs are recorded and skipped;
// they never abort the request.
func ApplyForm(st *state.Store, body string) Result {
	var res Result
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" || value == "" {
			res.Errors = append(res.Errors, FieldError{Field: pair, Reason: "Empty field"})
			continue
		}
		val, err := strconvx.ParseFloat(value, 64)
		if err != nil {
			res.Errors = append(res.Errors, FieldError{Field: key, Reason: "Invalid value: " + value})
			continue
		}

		if err := st.TryUpdateField(key, val); err != nil {
			res.Errors = append(res.Errors, describe(key, val, err))
			continue
		}
		res.Applied = append(res.Applied, Update{Field: key, Value: val})
	}
	return res
}

// describe maps a store rejection to the client-facing field/reason pair.
func describe(key string, val float64, err error) FieldError {
	rej, ok := err.(*state.Reject)
	if !ok {
		return FieldError{Field: key, Reason: err.Error()}
	}
	switch rej.Code {
	case errcode.UnknownParam:
		return FieldError{Field: key + " (unknown)", Reason: "Unknown parameter"}
	case errcode.BoundsConflict:
		op := " <= "
		if rej.IsMin {
			op = " >= "
		}
		return FieldError{
			Field:  key + op + rej.Opposite + " (" + strconvx.Ftoa1(rej.Bound) + ")",
			Reason: "Value out of range: " + strconvx.Ftoa1(val),
		}
	case errcode.OutOfRange:
		return FieldError{Field: key, Reason: "Value out of range: " + strconvx.Ftoa1(val)}
	case errcode.LockTimeout:
		return FieldError{Field: key, Reason: "Configuration busy"}
	}
	return FieldError{Field: key, Reason: string(rej.Code)}
}
