// Package pipelog is the module's ambient logging seam: a small Logger
// interface, a default implementation backed by
// github.com/joeycumines/logiface and github.com/joeycumines/stumpy (a
// dependency-free structured JSON encoder), and a no-op implementation for
// tests and callers that don't want output.
package pipelog
