package utils

import "time"

// Overlaps reports whether two half-open time intervals [aStart, aEnd)
// and [bStart, bEnd) share at least one instant.  A single predicate
// covers every overlap shape, partial overlap from either side as well
// as full containment.  Back-to-back intervals (one ending exactly
// when the other starts) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ToUTC normalizes a timestamp to UTC semantics.  Every timestamp the
// service persists or compares goes through this: request payloads may
// carry any offset and the database driver strips location info on
// scan, so values are re-tagged here before use.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}
