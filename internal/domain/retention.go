package domain

import "time"

// RetentionPolicy decides which reservations the sweeper may delete
type RetentionPolicy struct {
	Days      int
	Statuses  []ReservationStatus
	BatchSize int
}

// DefaultRetentionPolicy deletes cancelled and invalid reservations older than 30 days
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		Days:      DefaultRetentionDays,
		Statuses:  []ReservationStatus{StatusCancelled, StatusInvalid},
		BatchSize: DefaultRetentionBatchSize,
	}
}

// Cutoff returns the first date that is kept; reservations dated strictly before it are expired
func (p RetentionPolicy) Cutoff(now time.Time) string {
	return now.UTC().AddDate(0, 0, -p.Days).Format(DateFormat)
}

// IsExpired reports whether the reservation is eligible for deletion at now
func (p RetentionPolicy) IsExpired(r *Reservation, now time.Time) bool {
	if r.Date >= p.Cutoff(now) {
		return false
	}
	for _, s := range p.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// ExpiredFilter selects a batch of expired reservations
type ExpiredFilter struct {
	Before   string // YYYY-MM-DD, exclusive
	Statuses []ReservationStatus
	Limit    int
}

// Filter returns the storage filter for the policy at now
func (p RetentionPolicy) Filter(now time.Time) ExpiredFilter {
	return ExpiredFilter{
		Before:   p.Cutoff(now),
		Statuses: p.Statuses,
		Limit:    p.BatchSize,
	}
}
