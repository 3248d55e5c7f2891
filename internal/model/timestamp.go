package model

import "time"

// NextUpdatedAt returns at, or one millisecond past prev when at does not
// move past it. Stored timestamps carry millisecond precision.
func NextUpdatedAt(at, prev time.Time) time.Time {
	at = at.UTC().Truncate(time.Millisecond)
	if !at.After(prev) {
		at = prev.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return at
}
