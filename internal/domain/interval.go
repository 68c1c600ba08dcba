package domain

import "github.com/m04kA/SMC-ReservationValidator/pkg/types"

// Interval half-open range of minutes since midnight [Start, End)
type Interval struct {
	Start int
	End   int
}

// IsEmpty returns true for zero-length intervals
func (i Interval) IsEmpty() bool {
	return i.End <= i.Start
}

// Overlaps reports whether two intervals share at least one minute
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// ToMinutes converts "HH:MM" into minutes since midnight
// The caller must pass a valid value, see TimeString.Validate
func ToMinutes(t types.TimeString) int {
	m, err := t.Minutes()
	if err != nil {
		panic("domain: ToMinutes called with invalid time " + string(t))
	}
	return m
}

// Overlaps strict overlap of [startA, endA) and [startB, endB)
// Touching intervals and zero-length intervals do not overlap
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}
