// Package aggregator is a demonstrator terminal action: it records the
// earliest and latest instant any item was seen, plus a running count, in
// the Stats record it is given. EnsureStats creates a single shared Stats
// record exactly once via onceler; Action itself does not call onceler and
// updates whichever Stats is passed to it.
package aggregator
