// Package pipeline wires Node instances into a running topology: Link sets
// up the linear next edges (broadcast edges are added per Node with
// AddBroadcast), Start launches every Node's worker loop concurrently (via
// golang.org/x/sync/errgroup, so the first Node failure is observable
// without the caller polling each one), and Stop drains every Node in the
// order given.
package pipeline
