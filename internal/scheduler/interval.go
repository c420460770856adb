package scheduler

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Intervals that only touch at a
// boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Shift moves the interval so that it begins at start while keeping its length.
func Shift(start, end, newStart time.Time) (time.Time, time.Time) {
	return newStart, newStart.Add(end.Sub(start))
}
