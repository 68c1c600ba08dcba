package domain

// Verdict outcome of validating one reservation
type Verdict struct {
	Status ReservationStatus
	Reason *string

	// NoOp is true when the stored record must not be written
	NoOp bool
}

// IsInvalid returns true if the verdict invalidates the reservation
func (v Verdict) IsInvalid() bool {
	return v.Status == StatusInvalid
}

// Keep verdict for a reservation that survived the check
func Keep() Verdict {
	return Verdict{Status: StatusActive}
}

// Invalidate verdict for a reservation that must give up its slot
func Invalidate(reason string) Verdict {
	return Verdict{Status: StatusInvalid, Reason: &reason}
}
