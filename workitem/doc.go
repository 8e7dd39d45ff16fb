// Package workitem provides WorkItem, the traced, shared-state envelope
// that flows through a pipeline: a unique identity, a mutable per-derivative
// attribute store, and an append-only trace of the node identities it has
// visited.
package workitem
