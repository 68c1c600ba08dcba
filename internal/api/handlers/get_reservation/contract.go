package get_reservation

import (
	"context"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/reservations/models"
)

type ReservationService interface {
	Get(ctx context.Context, key domain.Key) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
