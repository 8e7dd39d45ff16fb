package onceler

import (
	"sync"

	"github.com/joeycumines/go-pipeline/multiindex"
)

const (
	resultsIndex = "results"
	locksIndex   = "locks"
)

// completedSentinel is substituted for a thunk that returns a nil value, so
// that "no value" can still be distinguished from "not yet computed".
type completedSentinel struct{}

func (completedSentinel) String() string { return "COMPLETED" }

// Completed is the value StoreOnce returns when thunk succeeds with a nil
// value.
var Completed any = completedSentinel{}

// outcome is the tagged variant stored per (scope, key): exactly one of
// value or err is meaningful, distinguished by whether err is nil.
type outcome struct {
	value any
	err   error
}

// Onceler is a keyed once-only execution gate. The zero value is not
// usable; construct one with New.
type Onceler struct {
	index *multiindex.Index[any]
}

// New constructs an Onceler.
func New() *Onceler {
	idx := multiindex.New[any]()
	idx.Create(resultsIndex)
	idx.Create(locksIndex)
	return &Onceler{index: idx}
}

// StoreOnce ensures thunk runs at most once for the given (scope, key) pair,
// across the lifetime of the Onceler. Every call, concurrent or not,
// observes the same outcome: the value thunk returned (with a nil value
// replaced by Completed), or the error thunk returned, re-raised verbatim.
func (o *Onceler) StoreOnce(scope, key string, thunk func() (any, error)) (any, error) {
	fullKey := scope + ":" + key

	lockAny, _ := o.index.LoadOrStore(locksIndex, fullKey, any(new(sync.Mutex)))
	lock := lockAny.(*sync.Mutex)

	// fast path: no lock held, probe for an already-computed outcome.
	if v, ok, _ := o.index.Load(resultsIndex, fullKey); ok {
		return unwrap(v)
	}

	lock.Lock()
	defer lock.Unlock()

	// slow path: double-checked, in case a concurrent caller won the race.
	if v, ok, _ := o.index.Load(resultsIndex, fullKey); ok {
		return unwrap(v)
	}

	value, err := thunk()
	if err != nil {
		o.index.Store(resultsIndex, fullKey, outcome{err: err})
		return nil, err
	}
	if value == nil {
		value = Completed
	}
	o.index.Store(resultsIndex, fullKey, outcome{value: value})
	return value, nil
}

// StoreOnceT is a generically-typed convenience wrapper around StoreOnce,
// for call sites that know the concrete value type, in the spirit of
// logiface.LoggerFactory wrapping an untyped core with a typed facade.
func StoreOnceT[T any](o *Onceler, scope, key string, thunk func() (T, error)) (T, error) {
	v, err := o.StoreOnce(scope, key, func() (any, error) {
		return thunk()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := v.(T)
	return typed, nil
}

func unwrap(v any) (any, error) {
	o := v.(outcome)
	if o.err != nil {
		return nil, o.err
	}
	return o.value, nil
}
