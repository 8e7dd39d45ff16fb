package workitem

import (
	"errors"

	"github.com/google/uuid"

	"github.com/joeycumines/go-pipeline/multiindex"
	"github.com/joeycumines/go-pipeline/tslist"
)

// DefaultDerivative is the origin's default attribute namespace.
const DefaultDerivative = ""

// errorAttr is the reserved attribute key used by SetError.
const errorAttr = "error"

// Item is a traced, shared-state envelope carrying keyed attributes and an
// ordered trace of the node identities it has visited.
//
// Item is not safe to mutate the Derivative of in place; DerivativeCopy
// produces a new Item, sharing the same underlying attribute store, for
// that purpose. All other operations are safe for concurrent use, since
// they delegate to the thread-safe multiindex.Index and tslist.Sequence.
type Item struct {
	id         uuid.UUID
	index      *multiindex.Index[any]
	derivative string
	trace      *tslist.Sequence[string]
}

// New constructs a fresh Item, with a new identity, a new attribute store
// (its default "" derivative implicitly created), and an empty trace.
func New() *Item {
	idx := multiindex.New[any]()
	idx.Create(DefaultDerivative)
	return &Item{
		id:         uuid.New(),
		index:      idx,
		derivative: DefaultDerivative,
		trace:      tslist.New[string](),
	}
}

// ID returns the Item's unique identity.
func (it *Item) ID() uuid.UUID {
	return it.id
}

// Derivative returns the Item's current derivative label.
func (it *Item) Derivative() string {
	return it.derivative
}

// Set writes an attribute under the current derivative.
func (it *Item) Set(key string, value any) {
	it.index.Store(it.derivative, key, value)
}

// Get reads an attribute under the current derivative. ok is false if the
// attribute was never set.
func (it *Item) Get(key string) (value any, ok bool) {
	return it.GetIn(it.derivative, key)
}

// GetIn reads an attribute under an arbitrary derivative, which need not be
// the current one. ok is false if the attribute was never set, including
// when the derivative itself was never written to.
func (it *Item) GetIn(derivative, key string) (value any, ok bool) {
	value, ok, err := it.index.Load(derivative, key)
	if errors.Is(err, multiindex.ErrUnknownIndex) {
		return nil, false
	}
	return value, ok
}

// SetError stashes a terminal failure under the reserved "error" attribute
// of the current derivative.
func (it *Item) SetError(err error) {
	it.Set(errorAttr, err)
}

// AppendTrace appends identity to the Item's trace.
func (it *Item) AppendTrace(identity string) {
	it.trace.Add(identity)
}

// Trace returns a snapshot of the node identities the Item has visited, in
// visitation order.
func (it *Item) Trace() []string {
	return it.trace.Snapshot()
}

// SnapshotAll flattens attributes across every derivative into a single
// mapping, for diagnostics only. Duplicate keys across derivatives collide
// in an unspecified but deterministic-per-call order.
func (it *Item) SnapshotAll() map[string]any {
	out := map[string]any{}
	for _, name := range it.index.ListNames() {
		entries, err := it.index.Range(name)
		if err != nil {
			continue // index was concurrently dropped; nothing to flatten
		}
		for _, e := range entries {
			out[e.Key] = e.Value
		}
	}
	return out
}

// DerivativeCopy returns a new Item sharing the origin's underlying
// attribute store but carrying newLabel as its derivative, and a trace
// seeded from the origin's current trace snapshot. Broadcast siblings use
// this to read the origin's state while writing into their own namespace,
// without racing on the same keys.
func (it *Item) DerivativeCopy(newLabel string) *Item {
	return &Item{
		id:         uuid.New(),
		index:      it.index,
		derivative: newLabel,
		trace:      tslist.New(it.trace.Snapshot()...),
	}
}
