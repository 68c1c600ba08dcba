package run_sweep

import (
	"context"

	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/sweep_reservations"
)

type SweepUseCase interface {
	Execute(ctx context.Context) (*sweep_reservations.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
