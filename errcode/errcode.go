package errcode

// Code is a stable error identifier used across services and in structured
// HTTP results. It is a string newtype, comparable, allocation-free, and
// implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Configuration field validation
	EmptyField     Code = "empty_field"
	InvalidValue   Code = "invalid_value"
	OutOfRange     Code = "out_of_range"
	BoundsConflict Code = "bounds_conflict"
	UnknownParam   Code = "unknown_param"

	// Shared state
	LockTimeout Code = "lock_timeout"

	// Web server
	PoolFull        Code = "pool_full"
	PayloadTooLarge Code = "payload_too_large"
	Overflow        Code = "overflow"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
