package reservation_created

import (
	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
)

// ValidationResponse HTTP response model
type ValidationResponse struct {
	EventID       string   `json:"eventId"`
	ClubID        string   `json:"clubId"`
	ResourceID    string   `json:"resourceId"`
	ReservationID string   `json:"reservationId"`
	Status        string   `json:"status,omitempty"`
	InvalidReason *string  `json:"invalidReason,omitempty"`
	Outcome       string   `json:"outcome"`
	ConflictWith  *KeyJSON `json:"conflictWith,omitempty"`
}

// KeyJSON ключ бронирования в ответе
type KeyJSON struct {
	ClubID        string `json:"clubId"`
	ResourceID    string `json:"resourceId"`
	ReservationID string `json:"reservationId"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *validate_reservation.Response) *ValidationResponse {
	out := &ValidationResponse{
		EventID:       resp.EventID,
		ClubID:        resp.Key.ClubID,
		ResourceID:    resp.Key.ResourceID,
		ReservationID: resp.Key.ReservationID,
		Status:        string(resp.Status),
		InvalidReason: resp.Reason,
		Outcome:       string(resp.Outcome),
	}
	if resp.ConflictWith != nil {
		out.ConflictWith = &KeyJSON{
			ClubID:        resp.ConflictWith.ClubID,
			ResourceID:    resp.ConflictWith.ResourceID,
			ReservationID: resp.ConflictWith.ReservationID,
		}
	}
	return out
}
