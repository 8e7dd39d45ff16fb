package aggregator

import (
	"context"
	"time"

	"github.com/joeycumines/go-pipeline/node"
	"github.com/joeycumines/go-pipeline/pipelog"
	"github.com/joeycumines/go-pipeline/workitem"
)

// Action builds a node.Action that observes "now" against stats on every
// item, incrementing its counter and logging a progress line every
// progressEvery items through logger.
func Action(stats *Stats, logger pipelog.Logger) node.Action {
	if logger == nil {
		logger = pipelog.Noop()
	}
	return node.Sync(func(ctx context.Context, item *workitem.Item) error {
		now := time.Now()
		stats.Times.Observe(now)
		count := stats.increment()

		if count%progressEvery == 0 {
			logger.Info("aggregator progress", map[string]any{
				"count":      count,
				"first_time": stats.Times.FirstTime(),
				"last_time":  stats.Times.LastTime(),
			})
		}

		return nil
	})
}
