package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// ReservationResponse ответ с данными бронирования и результатом проверки
type ReservationResponse struct {
	ClubID          string `json:"clubId"`
	ResourceID      string `json:"resourceId"`
	ReservationID   string `json:"reservationId"`
	Date            string `json:"date"`      // "2024-06-01"
	StartTime       string `json:"startTime"` // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	InvalidReason *string    `json:"invalidReason,omitempty"`
	ValidatedAt   *time.Time `json:"validatedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ClubID:          r.ClubID,
		ResourceID:      r.ResourceID,
		ReservationID:   r.ReservationID,
		Date:            r.Date,
		StartTime:       r.StartTime.String(),
		DurationMinutes: r.DurationMinutes,
		Status:          string(r.Status),
		InvalidReason:   r.InvalidReason,
		ValidatedAt:     r.ValidatedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromDomainReservations конвертирует список domain моделей в DTO
func FromDomainReservations(list []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{Reservations: make([]ReservationResponse, 0, len(list))}
	for _, r := range list {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}
