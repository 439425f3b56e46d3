// state/state.go
//
// Shared mutable state for the station: the sensor snapshot and the
// configuration limits, each behind its own bounded-timeout exclusive lock.
// Tasks that lose the race proceed without the data rather than stalling a
// period; callers must treat errcode.LockTimeout as "run one cycle behind".
package state

import (
	"sync/atomic"
	"time"

	"weatherstation-go/errcode"
	"weatherstation-go/types"
	"weatherstation-go/x/mathx"
	"weatherstation-go/x/syncx"
)

// DefaultLockWait bounds every lock acquisition.
const DefaultLockWait = 100 * time.Millisecond

type Store struct {
	// LockWait may be shortened in tests; set before the tasks start.
	LockWait time.Duration

	sensorMu *syncx.TimedMutex
	configMu *syncx.TimedMutex

	snap   types.Snapshot
	limits types.Limits

	logging uint32 // atomic bool; measurement log toggle
}

func New() *Store {
	s := &Store{
		LockWait: DefaultLockWait,
		sensorMu: syncx.NewTimedMutex(),
		configMu: syncx.NewTimedMutex(),
		limits:   types.DefaultLimits(),
	}
	s.SetLogging(true)
	return s
}

// -----------------------------------------------------------------------------
// Snapshot region
// -----------------------------------------------------------------------------

// Snapshot returns the current readings. The whole value is copied under one
// lock acquisition, so a caller never observes a partial update.
func (s *Store) Snapshot() (types.Snapshot, error) {
	if !s.sensorMu.TryLock(s.LockWait) {
		return types.Snapshot{}, errcode.LockTimeout
	}
	v := s.snap
	s.sensorMu.Unlock()
	return v, nil
}

// PublishSnapshot replaces the snapshot wholesale.
func (s *Store) PublishSnapshot(v types.Snapshot) error {
	if !s.sensorMu.TryLock(s.LockWait) {
		return errcode.LockTimeout
	}
	s.snap = v
	s.sensorMu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// Config region
// -----------------------------------------------------------------------------

func (s *Store) Limits() (types.Limits, error) {
	if !s.configMu.TryLock(s.LockWait) {
		return types.Limits{}, errcode.LockTimeout
	}
	v := s.limits
	s.configMu.Unlock()
	return v, nil
}

// ResetDefaults restores the factory limits and zero offsets atomically.
func (s *Store) ResetDefaults() error {
	if !s.configMu.TryLock(s.LockWait) {
		return errcode.LockTimeout
	}
	s.limits = types.DefaultLimits()
	s.configMu.Unlock()
	return nil
}

// SetLimits replaces the whole config. Used by the boot-config path; web
// updates go through TryUpdateField.
func (s *Store) SetLimits(l types.Limits) error {
	if !s.configMu.TryLock(s.LockWait) {
		return errcode.LockTimeout
	}
	s.limits = l
	s.configMu.Unlock()
	return nil
}

// Reject reports why a field update was refused. For bound conflicts it
// carries the opposite bound's name and value at the time of the check, so
// the web layer can report "temp_min >= temp_max (30.0)".
type Reject struct {
	Code     errcode.Code
	Opposite string
	Bound    float64
	IsMin    bool
}

func (r *Reject) Error() string { return string(r.Code) }

// TryUpdateField validates value against the field's fixed sanity range and,
// for bound fields, against the currently stored opposite bound (strict
// inequality). A valid value is applied immediately; an invalid one leaves
// the stored value untouched. Within a multi-field request, later fields see
// earlier fields' effects because each call re-reads current state.
func (s *Store) TryUpdateField(field string, value float64) error {
	spec, ok := types.Spec(field)
	if !ok {
		return &Reject{Code: errcode.UnknownParam}
	}
	if !mathx.Between(value, spec.Lo, spec.Hi) {
		return &Reject{Code: errcode.OutOfRange}
	}

	if !s.configMu.TryLock(s.LockWait) {
		return &Reject{Code: errcode.LockTimeout}
	}
	defer s.configMu.Unlock()

	if spec.Opposite != "" {
		opp := *s.limits.Field(spec.Opposite)
		crossed := false
		if spec.IsMin {
			crossed = value >= opp // min must stay strictly below max
		} else {
			crossed = value <= opp
		}
		if crossed {
			return &Reject{
				Code:     errcode.BoundsConflict,
				Opposite: spec.Opposite,
				Bound:    opp,
				IsMin:    spec.IsMin,
			}
		}
	}

	*s.limits.Field(field) = value
	return nil
}

// -----------------------------------------------------------------------------
// Measurement log toggle
// -----------------------------------------------------------------------------

func (s *Store) LoggingEnabled() bool { return atomic.LoadUint32(&s.logging) == 1 }

func (s *Store) SetLogging(on bool) {
	var v uint32
	if on {
		v = 1
	}
	atomic.StoreUint32(&s.logging, v)
}

// ToggleLogging flips the flag and returns the new value.
func (s *Store) ToggleLogging() bool {
	for {
		old := atomic.LoadUint32(&s.logging)
		if atomic.CompareAndSwapUint32(&s.logging, old, 1-old) {
			return old == 0
		}
	}
}
