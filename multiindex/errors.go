package multiindex

import "errors"

// ErrUnknownIndex is returned by Load, Range, and Delete when the given
// index name was never registered via Create or Store.
var ErrUnknownIndex = errors.New("multiindex: unknown index")
