package onceler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnceler_RunsOnce(t *testing.T) {
	o := New()

	var calls int32
	thunk := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return "hello", nil
	}

	for i := 0; i < 5; i++ {
		v, err := o.StoreOnce("S", "K", thunk)
		assert.NoError(t, err)
		assert.Equal(t, "hello", v)
	}

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestOnceler_NilValueBecomesCompleted(t *testing.T) {
	o := New()

	v, err := o.StoreOnce("S", "K", func() (any, error) {
		return nil, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, Completed, v)
}

func TestOnceler_DistinctScopesAndKeysIndependent(t *testing.T) {
	o := New()

	var calls int32
	thunk := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}

	_, _ = o.StoreOnce("A", "K", thunk)
	_, _ = o.StoreOnce("B", "K", thunk)
	_, _ = o.StoreOnce("A", "J", thunk)

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

var errBoom = errors.New("BOOM")

func TestOnceler_CachedFailureConcurrent(t *testing.T) {
	o := New()

	var calls int32
	thunk := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errBoom
	}

	const callers = 10
	var wg sync.WaitGroup
	wg.Add(callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, err := o.StoreOnce("S", "K", thunk)
			errs[i] = err
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, err := range errs {
		assert.ErrorIs(t, err, errBoom)
	}
}

func TestStoreOnceT(t *testing.T) {
	o := New()

	type widget struct{ n int }

	var calls int32
	v, err := StoreOnceT(o, "W", "only", func() (*widget, error) {
		atomic.AddInt32(&calls, 1)
		return &widget{n: 7}, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 7, v.n)

	v2, err := StoreOnceT(o, "W", "only", func() (*widget, error) {
		atomic.AddInt32(&calls, 1)
		return &widget{n: 999}, nil
	})
	assert.NoError(t, err)
	assert.Same(t, v, v2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
