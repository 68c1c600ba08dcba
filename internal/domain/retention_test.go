package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetentionPolicy_Cutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", DefaultRetentionPolicy().Cutoff(now))
}

func TestRetentionPolicy_IsExpired(t *testing.T) {
	p := DefaultRetentionPolicy()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	r := &Reservation{Date: "2026-02-28", Status: StatusCancelled}
	assert.True(t, p.IsExpired(r, now))

	r.Status = StatusInvalid
	assert.True(t, p.IsExpired(r, now))

	r.Status = StatusActive
	assert.False(t, p.IsExpired(r, now), "active reservations are never swept")

	r = &Reservation{Date: "2026-03-01", Status: StatusCancelled}
	assert.False(t, p.IsExpired(r, now), "the cutoff day itself is kept")
}

func TestRetentionPolicy_Filter(t *testing.T) {
	p := RetentionPolicy{Days: 7, Statuses: []ReservationStatus{StatusCancelled}, BatchSize: 10}
	f := p.Filter(time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, ExpiredFilter{Before: "2026-01-01", Statuses: []ReservationStatus{StatusCancelled}, Limit: 10}, f)
}
