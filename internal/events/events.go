package events

import (
	"encoding/json"
	"fmt"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
)

// Routing keys событий, которые слушает сервис
const (
	RKReservationCreated = "reservation.created"
)

// ReservationCreated событие создания бронирования
// Поле reservation повторяет сохраненную запись и нужно только для сверки
type ReservationCreated struct {
	EventID       string               `json:"eventId"`
	ClubID        string               `json:"clubId"`
	ResourceID    string               `json:"resourceId"`
	ReservationID string               `json:"reservationId"`
	Reservation   *ReservationSnapshot `json:"reservation,omitempty"`
}

// ReservationSnapshot временные поля бронирования на момент создания
type ReservationSnapshot struct {
	Date            string `json:"date"`      // "2024-06-01"
	StartTime       string `json:"startTime"` // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
}

// PartitionKey ключ корта, по которому события распределяются между воркерами
// Дата из снимка не используется: снимок может отсутствовать или расходиться с записью
func (e ReservationCreated) PartitionKey() string {
	return e.ClubID + "/" + e.ResourceID
}

// ToRequest конвертирует событие в запрос на проверку бронирования
func (e ReservationCreated) ToRequest() *validate_reservation.Request {
	req := &validate_reservation.Request{
		EventID: e.EventID,
		Key: domain.Key{
			ClubID:        e.ClubID,
			ResourceID:    e.ResourceID,
			ReservationID: e.ReservationID,
		},
	}
	if e.Reservation != nil {
		req.Payload = &validate_reservation.Snapshot{
			Date:            e.Reservation.Date,
			StartTime:       e.Reservation.StartTime,
			DurationMinutes: e.Reservation.DurationMinutes,
			Status:          e.Reservation.Status,
		}
	}
	return req
}

// MustUnmarshal декодирует тело сообщения в событие типа T
func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
