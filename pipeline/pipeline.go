package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/joeycumines/go-pipeline/node"
)

// Link wires nodes into a linear chain: nodes[i]'s successor is
// nodes[i+1]. It must be called before Start. Broadcast edges are wired
// directly via (*node.Node).AddBroadcast, since they fan out to more than
// one successor.
func Link(nodes ...*node.Node) {
	for i := 0; i+1 < len(nodes); i++ {
		nodes[i].SetNext(nodes[i+1])
	}
}

// Handle is the running topology returned by Start.
type Handle struct {
	group *errgroup.Group
}

// Start launches every Node's worker loop on its own goroutine. If any
// Node's Run returns a non-nil error, ctx is canceled for the rest, so a
// single failing Node brings the whole topology down rather than silently
// wedging on a queue no one is draining anymore.
func Start(ctx context.Context, nodes ...*node.Node) *Handle {
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range nodes {
		n := n
		g.Go(func() error { return n.Run(gctx) })
	}
	return &Handle{group: g}
}

// Gather blocks until every Node launched by Start has returned, and
// returns the first non-nil error among them, if any.
func (h *Handle) Gather() error {
	return h.group.Wait()
}

// Stop closes every node, draining its queue, in the order given. Each
// Node's Close is attempted even if an earlier one fails; every error is
// joined into the result.
func Stop(ctx context.Context, nodes ...*node.Node) error {
	var errs []error
	for _, n := range nodes {
		if err := n.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
