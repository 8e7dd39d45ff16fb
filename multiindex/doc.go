// Package multiindex provides a thread-safe registry of named mappings
// (indexes), each individually lock-protected. A single top-level mutex
// guards the name-to-index registry itself; operations on the contents of
// one named index never block operations on another.
package multiindex
