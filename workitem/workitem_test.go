package workitem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem_SetGet(t *testing.T) {
	it := New()

	it.Set("k", 1)
	v, ok := it.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = it.Get("missing")
	assert.False(t, ok)
}

func TestItem_SetError(t *testing.T) {
	it := New()
	boom := errors.New("boom")
	it.SetError(boom)

	v, ok := it.Get("error")
	assert.True(t, ok)
	assert.Equal(t, boom, v)
}

func TestItem_AppendTraceMonotonic(t *testing.T) {
	it := New()
	it.AppendTrace("n1")
	it.AppendTrace("n2")
	it.AppendTrace("n3")

	assert.Equal(t, []string{"n1", "n2", "n3"}, it.Trace())
}

func TestItem_DerivativeIsolation(t *testing.T) {
	origin := New()
	origin.Set("K", "origin-value")

	d1 := origin.DerivativeCopy("D1")
	d2 := origin.DerivativeCopy("D2")

	d1.Set("K", "d1-value")

	v1, _ := d1.Get("K")
	assert.Equal(t, "d1-value", v1)

	// writing under D1 must not change what's read for K under D2
	v2, ok := d2.Get("K")
	assert.False(t, ok)
	assert.Nil(t, v2)

	// and must not change the origin's own namespace
	vOrigin, _ := origin.Get("K")
	assert.Equal(t, "origin-value", vOrigin)
}

func TestItem_DerivativeSharing(t *testing.T) {
	origin := New()
	origin.Set("K", "origin-value")

	d1 := origin.DerivativeCopy("D1")

	// a derivative copy can read the origin's namespace when explicitly
	// addressed via cross-derivative read
	v, ok := d1.GetIn(DefaultDerivative, "K")
	assert.True(t, ok)
	assert.Equal(t, "origin-value", v)
}

func TestItem_DerivativeCopySeedsTrace(t *testing.T) {
	origin := New()
	origin.AppendTrace("n1")
	origin.AppendTrace("n2")

	copy1 := origin.DerivativeCopy("D1")
	assert.Equal(t, []string{"n1", "n2"}, copy1.Trace())

	// further appends to the origin must not leak into the copy
	origin.AppendTrace("n3")
	assert.Equal(t, []string{"n1", "n2"}, copy1.Trace())

	copy1.AppendTrace("n4")
	assert.Equal(t, []string{"n1", "n2", "n3"}, origin.Trace())
}

func TestItem_DerivativeCopyDistinctIdentity(t *testing.T) {
	origin := New()
	cp := origin.DerivativeCopy("D1")

	assert.NotEqual(t, origin.ID(), cp.ID())
}

func TestItem_SnapshotAll(t *testing.T) {
	origin := New()
	origin.Set("a", 1)

	d1 := origin.DerivativeCopy("D1")
	d1.Set("b", 2)

	all := origin.SnapshotAll()
	assert.Equal(t, 1, all["a"])
	assert.Equal(t, 2, all["b"])
}
