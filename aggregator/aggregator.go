package aggregator

import (
	"sync"
	"time"

	"github.com/joeycumines/go-pipeline/onceler"
	"github.com/joeycumines/go-pipeline/pipelog"
)

// SuperlativeTimes tracks the earliest (FirstTime) and latest (LastTime)
// instant it has been told about. Both fields are guarded by mu; readers
// get a defensive copy.
type SuperlativeTimes struct {
	mu        sync.Mutex
	firstTime time.Time
	lastTime  time.Time
}

// Observe records t as a new data point: firstTime shrinks to the minimum
// ever seen, lastTime grows to the maximum ever seen.
func (s *SuperlativeTimes) Observe(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstTime.IsZero() || t.Before(s.firstTime) {
		s.firstTime = t
	}
	if t.After(s.lastTime) {
		s.lastTime = t
	}
}

// FirstTime returns the earliest instant observed so far.
func (s *SuperlativeTimes) FirstTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstTime
}

// LastTime returns the latest instant observed so far.
func (s *SuperlativeTimes) LastTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTime
}

// Stats is the shared record the aggregator action maintains: a
// SuperlativeTimes pair and a running item count.
type Stats struct {
	Times *SuperlativeTimes

	mu    sync.Mutex
	count int
}

// NewStats constructs an empty Stats record.
func NewStats() *Stats {
	return &Stats{Times: &SuperlativeTimes{}}
}

// increment bumps the counter and returns its new value.
func (s *Stats) increment() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return s.count
}

// Count returns the number of items seen so far.
func (s *Stats) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// scope/key identify the single shared Stats record created through
// onceler, mirroring the "STATS"/"CREATE" coordinates named by the system
// this package ports.
const (
	scope = "STATS"
	key   = "CREATE"
)

// progressEvery controls how often a progress line is logged. The count is
// taken under the counter's lock as it is incremented, so each multiple of
// progressEvery is logged exactly once; the times logged beside it are read
// afterwards and may already include later items from other goroutines
// sharing the same Stats — it's diagnostic only.
const progressEvery = 50

// EnsureStats lazily creates the single shared Stats record behind o,
// identical for every caller regardless of which node or goroutine asks
// first.
func EnsureStats(o *onceler.Onceler) (*Stats, error) {
	return onceler.StoreOnceT(o, scope, key, func() (*Stats, error) {
		return NewStats(), nil
	})
}
