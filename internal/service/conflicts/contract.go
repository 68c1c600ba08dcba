package conflicts

import (
	"context"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// ReservationRepository источник активных бронирований раздела (корт + дата)
type ReservationRepository interface {
	ListActive(ctx context.Context, partition domain.Partition) ([]*domain.Reservation, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
