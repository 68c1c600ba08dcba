package get_active_reservations

import (
	"context"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/reservations/models"
)

type ReservationService interface {
	ListActive(ctx context.Context, partition domain.Partition) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
