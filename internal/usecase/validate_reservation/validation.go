package validate_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.Key.ClubID == "" {
		return fmt.Errorf("%w: clubId is required", ErrInvalidInput)
	}
	if req.Key.ResourceID == "" {
		return fmt.Errorf("%w: resourceId is required", ErrInvalidInput)
	}
	if req.Key.ReservationID == "" {
		return fmt.Errorf("%w: reservationId is required", ErrInvalidInput)
	}
	return nil
}

// payloadDiffers сообщает, расходятся ли временные поля события с сохраненной записью
// Источником истины остается запись в хранилище
func payloadDiffers(payload *Snapshot, stored *domain.Reservation) bool {
	if payload == nil {
		return false
	}
	if payload.Date != stored.Date || payload.DurationMinutes != stored.DurationMinutes {
		return true
	}
	start, err := types.NewTimeStringFromString(payload.StartTime)
	if err != nil {
		return true
	}
	normalized, err := types.NewTimeStringFromString(stored.StartTime.String())
	if err != nil {
		return true
	}
	return start != normalized
}
