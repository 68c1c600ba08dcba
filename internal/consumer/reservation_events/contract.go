package reservation_events

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
)

// DeliverySource источник сообщений (*mq.Consumer)
type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

// Validator use case проверки созданного бронирования
type Validator interface {
	Execute(ctx context.Context, req *validate_reservation.Request) (*validate_reservation.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
