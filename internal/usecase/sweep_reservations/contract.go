package sweep_reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// ReservationRepository интерфейс репозитория для удаления устаревших бронирований
type ReservationRepository interface {
	ListExpired(ctx context.Context, filter domain.ExpiredFilter) ([]domain.Key, error)
	DeleteByKeys(ctx context.Context, keys []domain.Key) (int64, error)
}

// MetricsRecorder интерфейс для записи метрик очистки
type MetricsRecorder interface {
	ObserveSweep(deleted int64, err error)
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
