package reservation_created

import (
	"context"

	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
)

type ValidateReservationUseCase interface {
	Execute(ctx context.Context, req *validate_reservation.Request) (*validate_reservation.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
