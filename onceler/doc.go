// Package onceler provides keyed once-only execution: for any (scope, key)
// pair, a thunk runs at most once across the process lifetime, and every
// caller — concurrent or not — observes the same outcome, whether that's a
// value or a re-raised failure.
package onceler
