package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationValidator/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusInvalid   ReservationStatus = "invalid"
	StatusCancelled ReservationStatus = "cancelled"
)

// Key identifies a reservation: club -> resource (court) -> reservation
type Key struct {
	ClubID        string
	ResourceID    string
	ReservationID string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ClubID, k.ResourceID, k.ReservationID)
}

// IsZero returns true if any part of the key is missing
func (k Key) IsZero() bool {
	return k.ClubID == "" || k.ResourceID == "" || k.ReservationID == ""
}

// Partition is the set of reservations that compete for the same time slots
type Partition struct {
	ClubID     string
	ResourceID string
	Date       string // YYYY-MM-DD
}

// Reservation represents a court booking as stored by the platform
type Reservation struct {
	Key
	Date            string // YYYY-MM-DD
	StartTime       types.TimeString
	DurationMinutes int
	Status          ReservationStatus
	InvalidReason   *string

	// ValidatedAt is set once the reservation survived a conflict check
	ValidatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Partition returns the competing set this reservation belongs to
func (r *Reservation) Partition() Partition {
	return Partition{ClubID: r.ClubID, ResourceID: r.ResourceID, Date: r.Date}
}

// IsActive returns true if the reservation currently holds its slot
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// IsValidated returns true if the reservation already survived validation
func (r *Reservation) IsValidated() bool {
	return r.ValidatedAt != nil
}

// CreatedBefore orders reservations by creation time, then by id
func (r *Reservation) CreatedBefore(other *Reservation) bool {
	if !r.CreatedAt.Equal(other.CreatedAt) {
		return r.CreatedAt.Before(other.CreatedAt)
	}
	return r.ReservationID < other.ReservationID
}

// Interval returns the occupied minutes of the day
// Returns ErrInvalidReservationData if the time fields are malformed
func (r *Reservation) Interval() (Interval, error) {
	start, err := r.StartTime.Minutes()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: startTime %q", ErrInvalidReservationData, r.StartTime)
	}
	if r.DurationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: durationMinutes %d must be positive", ErrInvalidReservationData, r.DurationMinutes)
	}
	end := start + r.DurationMinutes
	if end > MinutesPerDay {
		return Interval{}, fmt.Errorf("%w: reservation ends after midnight (%d)", ErrInvalidReservationData, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Validate checks the shape of the fields the conflict check depends on
func (r *Reservation) Validate() error {
	if r.Key.IsZero() {
		return fmt.Errorf("%w: incomplete key %q", ErrInvalidReservationData, r.Key.String())
	}
	if _, err := time.Parse(DateFormat, r.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidReservationData, r.Date)
	}
	_, err := r.Interval()
	return err
}
