package reservations

import (
	"context"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByKey(ctx context.Context, key domain.Key) (*domain.Reservation, error)
	ListActive(ctx context.Context, partition domain.Partition) ([]*domain.Reservation, error)
}

// TransactionManager интерфейс для чтения в транзакции
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
