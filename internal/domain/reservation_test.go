package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservation() *Reservation {
	return &Reservation{
		Key:             Key{ClubID: "club-1", ResourceID: "court-1", ReservationID: "r-1"},
		Date:            "2026-05-01",
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          StatusActive,
	}
}

func TestReservation_Interval(t *testing.T) {
	r := newReservation()

	iv, err := r.Interval()
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 600, End: 660}, iv)

	r.StartTime = "23:00"
	iv, err = r.Interval()
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, iv.End, "a reservation may end exactly at midnight")
}

func TestReservation_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Reservation)
	}{
		{"missing club", func(r *Reservation) { r.ClubID = "" }},
		{"bad date", func(r *Reservation) { r.Date = "01/05/2026" }},
		{"bad start time", func(r *Reservation) { r.StartTime = "10h00" }},
		{"zero duration", func(r *Reservation) { r.DurationMinutes = 0 }},
		{"negative duration", func(r *Reservation) { r.DurationMinutes = -30 }},
		{"past midnight", func(r *Reservation) { r.StartTime = "23:30"; r.DurationMinutes = 60 }},
	}

	require.NoError(t, newReservation().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReservation()
			tt.mutate(r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidReservationData)
		})
	}
}

func TestReservation_CreatedBefore(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	a := newReservation()
	a.CreatedAt = now
	b := newReservation()
	b.ReservationID = "r-2"
	b.CreatedAt = now.Add(time.Second)

	assert.True(t, a.CreatedBefore(b))
	assert.False(t, b.CreatedBefore(a))

	b.CreatedAt = now
	assert.True(t, a.CreatedBefore(b), "ties are broken by id")
	assert.False(t, b.CreatedBefore(a))
}

func TestReservation_StatusHelpers(t *testing.T) {
	r := newReservation()
	assert.True(t, r.IsActive())
	assert.False(t, r.IsValidated())

	now := time.Now()
	r.ValidatedAt = &now
	assert.True(t, r.IsValidated())

	r.Status = "pending"
	assert.False(t, r.IsActive(), "unknown statuses are not active")

	assert.Equal(t, Partition{ClubID: "club-1", ResourceID: "court-1", Date: "2026-05-01"}, r.Partition())
	assert.Equal(t, "club-1/court-1/r-1", r.Key.String())
}
