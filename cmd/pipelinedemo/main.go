// Command pipelinedemo wires the pipeline substrate into two small
// topologies and drives a batch of work items through each: a linear
// 18-node chain feeding an aggregator, and a broadcast fan-out feeding a
// second aggregator, with its own Stats, through one of its branches.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joeycumines/go-pipeline/aggregator"
	"github.com/joeycumines/go-pipeline/node"
	"github.com/joeycumines/go-pipeline/pipelog"
	"github.com/joeycumines/go-pipeline/pipeline"
	"github.com/joeycumines/go-pipeline/workitem"
)

func main() {
	items := flag.Int("items", 600, "number of work items to feed the linear pipeline")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := pipelog.NewStumpy(os.Stdout)

	if err := runLinear(ctx, logger, *items); err != nil {
		log.Fatalf("linear pipeline: %v", err)
	}
	if err := runBroadcast(ctx, logger); err != nil {
		log.Fatalf("broadcast pipeline: %v", err)
	}
}

// runLinear reproduces scenario 1: n0..n17 linked end-to-end, feeding a
// terminal aggregator.
func runLinear(ctx context.Context, logger pipelog.Logger, count int) error {
	const chainLen = 18

	stats := aggregator.NewStats()

	nodes := make([]*node.Node, 0, chainLen+1)
	for i := 0; i < chainLen; i++ {
		identity := "n" + strconv.Itoa(i)
		n, err := node.New(identity, node.Sync(func(ctx context.Context, item *workitem.Item) error {
			return nil
		}), node.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("building %s: %w", identity, err)
		}
		nodes = append(nodes, n)
	}

	agg, err := node.New("aggregator", aggregator.Action(stats, logger), node.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("building aggregator node: %w", err)
	}
	nodes = append(nodes, agg)

	pipeline.Link(nodes...)
	handle := pipeline.Start(ctx, nodes...)

	for i := 0; i < count; i++ {
		if err := nodes[0].Enqueue(ctx, workitem.New()); err != nil {
			return fmt.Errorf("enqueue item %d: %w", i, err)
		}
	}

	if err := pipeline.Stop(ctx, nodes...); err != nil {
		return fmt.Errorf("stopping linear pipeline: %w", err)
	}
	if err := handle.Gather(); err != nil {
		return fmt.Errorf("linear pipeline worker failed: %w", err)
	}

	logger.Info("linear pipeline complete", map[string]any{
		"count":      stats.Count(),
		"first_time": stats.Times.FirstTime(),
		"last_time":  stats.Times.LastTime(),
	})
	return nil
}

// runBroadcast reproduces scenario 2: m1 broadcasts to m4/m5/m6 under
// labels D_0/D_1/D_2, and only m6 forwards on to the aggregator.
func runBroadcast(ctx context.Context, logger pipelog.Logger) error {
	stats := aggregator.NewStats()

	passthrough := func(ctx context.Context, item *workitem.Item) error { return nil }

	m1, err := node.New("m1", node.Sync(passthrough), node.WithLogger(logger))
	if err != nil {
		return err
	}
	m4, err := node.New("m4", node.Sync(passthrough), node.WithLogger(logger))
	if err != nil {
		return err
	}
	m5, err := node.New("m5", node.Sync(passthrough), node.WithLogger(logger))
	if err != nil {
		return err
	}
	m6, err := node.New("m6", node.Sync(passthrough), node.WithLogger(logger))
	if err != nil {
		return err
	}
	agg, err := node.New("agg", aggregator.Action(stats, logger), node.WithLogger(logger))
	if err != nil {
		return err
	}

	m1.AddBroadcast("D_0", m4)
	m1.AddBroadcast("D_1", m5)
	m1.AddBroadcast("D_2", m6)
	m6.SetNext(agg)

	nodes := []*node.Node{m1, m4, m5, m6, agg}
	handle := pipeline.Start(ctx, nodes...)

	for i := 0; i < 3; i++ {
		if err := m1.Enqueue(ctx, workitem.New()); err != nil {
			return fmt.Errorf("enqueue item %d: %w", i, err)
		}
	}

	if err := pipeline.Stop(ctx, nodes...); err != nil {
		return fmt.Errorf("stopping broadcast pipeline: %w", err)
	}
	if err := handle.Gather(); err != nil {
		return fmt.Errorf("broadcast pipeline worker failed: %w", err)
	}

	logger.Info("broadcast pipeline complete", map[string]any{"count": stats.Count()})
	return nil
}
