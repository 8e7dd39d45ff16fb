package aggregator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-pipeline/node"
	"github.com/joeycumines/go-pipeline/onceler"
	"github.com/joeycumines/go-pipeline/pipelog"
	"github.com/joeycumines/go-pipeline/workitem"
)

func TestSuperlativeTimes_FirstIsMinLastIsMax(t *testing.T) {
	s := &SuperlativeTimes{}
	t1 := time.Unix(100, 0)
	t2 := time.Unix(200, 0)
	t3 := time.Unix(300, 0)

	s.Observe(t2)
	s.Observe(t1)
	s.Observe(t3)

	assert.True(t, s.FirstTime().Equal(t1))
	assert.True(t, s.LastTime().Equal(t3))
}

func TestEnsureStats_SharedAcrossCallers(t *testing.T) {
	o := onceler.New()

	var wg sync.WaitGroup
	results := make([]*Stats, 20)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := EnsureStats(o)
			require.NoError(t, err)
			results[i] = s
		}()
	}
	wg.Wait()

	for _, s := range results[1:] {
		assert.Same(t, results[0], s)
	}
}

// runThroughNode drives n copies of a fresh WorkItem through a single-node
// pipeline built around action, and waits for every item to be processed.
func runThroughNode(t *testing.T, action node.Action, n int) {
	t.Helper()
	nd, err := node.New("aggregator-under-test", action)
	require.NoError(t, err)

	ctx := context.Background()
	go func() { _ = nd.Run(ctx) }()

	for i := 0; i < n; i++ {
		require.NoError(t, nd.Enqueue(ctx, workitem.New()))
	}
	require.NoError(t, nd.Close(ctx))
}

func TestAction_CountsAndTracksSuperlatives(t *testing.T) {
	stats := NewStats()
	action := Action(stats, pipelog.Noop())

	runThroughNode(t, action, 3)

	assert.Equal(t, 3, stats.Count())
	assert.False(t, stats.Times.FirstTime().After(stats.Times.LastTime()))
}

func TestAction_DefaultsToNoopLogger(t *testing.T) {
	stats := NewStats()
	action := Action(stats, nil)

	runThroughNode(t, action, 1)

	assert.Equal(t, 1, stats.Count())
}

func TestAction_ProgressLineEveryFiftyItems(t *testing.T) {
	stats := NewStats()
	var infoCalls int
	logger := &countingLogger{onInfo: func(map[string]any) { infoCalls++ }}
	action := Action(stats, logger)

	runThroughNode(t, action, 125)

	assert.Equal(t, 125, stats.Count())
	// items 50 and 100 cross the threshold; item 125 doesn't.
	assert.Equal(t, 2, infoCalls)
}

type countingLogger struct {
	onInfo func(map[string]any)
}

func (l *countingLogger) Error(string, error, map[string]any) {}
func (l *countingLogger) Info(_ string, fields map[string]any) {
	l.onInfo(fields)
}
