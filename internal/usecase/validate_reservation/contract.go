package validate_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByKey(ctx context.Context, key domain.Key) (*domain.Reservation, error)
	UpdateVerdict(ctx context.Context, key domain.Key, verdict domain.Verdict) error
}

// ConflictScanner интерфейс поиска пересекающихся бронирований
type ConflictScanner interface {
	Scan(ctx context.Context, candidate *domain.Reservation) (*domain.Reservation, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс для записи метрик проверки
type MetricsRecorder interface {
	ObserveValidation(outcome, mode string, elapsed time.Duration)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
