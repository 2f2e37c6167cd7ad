// Package testutil provides deterministic collaborators and shared
// fixtures for tests across the module.
package testutil

import "time"

// FixedInstant is the wall-clock instant used by deterministic tests.
// Response dates and default date bounds derived from it never drift,
// so golden snapshots stay byte-identical.
var FixedInstant = time.Date(2025, time.June, 15, 12, 30, 45, 0, time.UTC)

// FixedClock returns a clock frozen at FixedInstant.
//
// The same scenario with the same FixedClock produces byte-identical
// response documents.
func FixedClock() func() time.Time {
	return func() time.Time { return FixedInstant }
}

// ClockAt returns a clock frozen at an arbitrary instant.
func ClockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
