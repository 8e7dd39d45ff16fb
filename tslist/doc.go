// Package tslist provides a thread-safe, append-only ordered sequence,
// used to record monotonic history such as a WorkItem's trace.
package tslist
