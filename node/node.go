package node

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-eventloop"

	"github.com/joeycumines/go-pipeline/workitem"
)

// Action is the unit of work a Node applies to every item it dequeues. Build
// one with Sync or Async.
type Action interface {
	run(ctx context.Context, n *Node, item *workitem.Item) error
	needsLoop() bool
}

// SyncFunc is a blocking action: it runs to completion (or honors ctx) on a
// dedicated goroutine and returns its own error directly.
type SyncFunc func(ctx context.Context, item *workitem.Item) error

// Sync builds an Action around a SyncFunc.
func Sync(fn SyncFunc) Action { return syncAction{fn: fn} }

type syncAction struct{ fn SyncFunc }

func (a syncAction) needsLoop() bool { return false }

func (a syncAction) run(ctx context.Context, n *Node, item *workitem.Item) error {
	return n.runSync(ctx, a.fn, item)
}

// AsyncFunc is a non-blocking action, run on the Node's own eventloop.Loop:
// it is handed the Loop's JS handle (for timers, microtasks, further
// chaining) and must return a ChainedPromise standing in for its result.
type AsyncFunc func(ctx context.Context, js *eventloop.JS, item *workitem.Item) *eventloop.ChainedPromise

// Async builds an Action around an AsyncFunc. A Node constructed with an
// Async action owns and drives its own eventloop.Loop for the lifetime of
// the worker.
func Async(fn AsyncFunc) Action { return asyncAction{fn: fn} }

type asyncAction struct{ fn AsyncFunc }

func (a asyncAction) needsLoop() bool { return true }

func (a asyncAction) run(ctx context.Context, n *Node, item *workitem.Item) error {
	return n.runAsync(ctx, a.fn, item)
}

type state int32

const (
	stateCreated state = iota
	stateRunning
	stateDraining
	stateStopped
)

// Node is a worker owning a bounded inbound queue. It runs its Action
// against every item it dequeues, broadcasts the item (as per-target
// derivative copies) to every named broadcast target, and — provided the
// action and every broadcast enqueue succeeded — forwards the original item
// to its linear successor, if any.
//
// A Node's topology (SetNext, AddBroadcast) is wired after construction
// and before Run; it is not safe to rewire after Run has been called.
type Node struct {
	identity   string
	action     Action
	queue      chan *workitem.Item
	next       *Node
	broadcast  map[string]*Node
	errHandler ErrorHandler

	loop *eventloop.Loop
	js   *eventloop.JS

	state   atomic.Int32
	stopped chan struct{}
	once    sync.Once
}

// New constructs a Node identified by identity, running action against
// every item it dequeues. next is set via Link (in the pipeline package) or
// SetNext, and broadcast targets via AddBroadcast, before the pipeline is
// started.
func New(identity string, action Action, opts ...Option) (*Node, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	n := &Node{
		identity:   identity,
		action:     action,
		queue:      make(chan *workitem.Item, cfg.queueCapacity),
		broadcast:  map[string]*Node{},
		errHandler: cfg.buildErrorHandler(identity),
		stopped:    make(chan struct{}),
	}

	if action.needsLoop() {
		loop, err := eventloop.New()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", identity, err)
		}
		js, err := eventloop.NewJS(loop)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", identity, err)
		}
		n.loop, n.js = loop, js
	}

	return n, nil
}

// Identity returns the Node's identifier, used in item traces and error
// reporting.
func (n *Node) Identity() string { return n.identity }

// SetNext sets the linear successor an item is forwarded to once the action
// and every broadcast succeed. Must be called before Run.
func (n *Node) SetNext(next *Node) { n.next = next }

// AddBroadcast registers a broadcast target under label. Each broadcast
// target receives a DerivativeCopy of the item, labeled with label, once
// the action completes. Must be called before Run.
func (n *Node) AddBroadcast(label string, target *Node) { n.broadcast[label] = target }

// Enqueue adds item to the Node's inbound queue, blocking until there is
// room or ctx is done.
func (n *Node) Enqueue(ctx context.Context, item *workitem.Item) error {
	select {
	case n.queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the Node's worker loop: dequeue, trace, act, broadcast,
// forward, repeat, until Close is called or ctx is done. It returns when
// the loop exits, nil on a clean Close, or the error that stopped it.
func (n *Node) Run(ctx context.Context) error {
	n.state.Store(int32(stateRunning))
	defer n.state.Store(int32(stateStopped))
	defer n.once.Do(func() { close(n.stopped) })

	if n.loop != nil {
		go func() { _ = n.loop.Run(ctx) }()
		defer func() { _ = n.loop.Shutdown(context.Background()) }()
	}

	for {
		var item *workitem.Item
		select {
		case item = <-n.queue:
		case <-ctx.Done():
			return ctx.Err()
		}

		if item == nil {
			// drain sentinel
			return nil
		}

		if err := n.process(ctx, item); err != nil {
			return err
		}
	}
}

// process runs the action, broadcasts, and forwards a single item,
// dispatching to errHandler on any failure. It returns non-nil only when
// errHandler signals the worker loop should stop.
func (n *Node) process(ctx context.Context, item *workitem.Item) error {
	item.AppendTrace(n.identity)

	err := n.action.run(ctx, n, item)

	if berr := n.runBroadcast(ctx, item); err == nil {
		err = berr
	}

	if err != nil {
		aerr := &ActionError{Identity: n.identity, Cause: err, Trace: item.Trace(), Attributes: item.SnapshotAll()}
		if !n.errHandler(aerr) {
			return aerr
		}
		return nil
	}

	if n.next != nil {
		if ferr := n.next.Enqueue(ctx, item); ferr != nil {
			aerr := &ActionError{Identity: n.identity, Cause: fmt.Errorf("forwarding to %q: %w", n.next.identity, ferr), Trace: item.Trace(), Attributes: item.SnapshotAll()}
			if !n.errHandler(aerr) {
				return aerr
			}
		}
	}

	return nil
}

// runBroadcast fans item out to every broadcast target, as a
// DerivativeCopy labeled with the target's registered label. The first
// enqueue failure is returned after every target has been attempted.
func (n *Node) runBroadcast(ctx context.Context, item *workitem.Item) error {
	var first error
	for label, target := range n.broadcast {
		dcopy := item.DerivativeCopy(label)
		if err := target.Enqueue(ctx, dcopy); err != nil && first == nil {
			first = fmt.Errorf("broadcast to %q: %w", label, err)
		}
	}
	return first
}

// Close enqueues the drain sentinel and blocks until the worker loop has
// processed every item enqueued before it and returned, or ctx expires.
func (n *Node) Close(ctx context.Context) error {
	n.state.Store(int32(stateDraining))
	if err := n.Enqueue(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrDrainTimeout, err)
	}
	select {
	case <-n.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDrainTimeout, ctx.Err())
	}
}

// runSync executes fn on a dedicated goroutine, so a panic can be recovered
// into an error and ctx cancellation can preempt a hung call, without
// either wedging the worker loop.
func (n *Node) runSync(ctx context.Context, fn SyncFunc, item *workitem.Item) error {
	resultCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- fmt.Errorf("node: action panicked: %v", r)
			}
		}()
		resultCh <- fn(ctx, item)
	}()
	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runAsync submits fn's invocation to the Node's eventloop.Loop and blocks
// until its ChainedPromise settles, or ctx is done.
func (n *Node) runAsync(ctx context.Context, fn AsyncFunc, item *workitem.Item) error {
	promiseCh := make(chan *eventloop.ChainedPromise, 1)
	if err := n.loop.Submit(func() {
		promiseCh <- fn(ctx, n.js, item)
	}); err != nil {
		return fmt.Errorf("node: submit to loop: %w", err)
	}

	var promise *eventloop.ChainedPromise
	select {
	case promise = <-promiseCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-promise.ToChannel():
		if promise.State() == eventloop.Rejected {
			reason := promise.Reason()
			if err, ok := reason.(error); ok {
				return err
			}
			return fmt.Errorf("node: action rejected: %v", reason)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
