package reservation_created

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationValidator/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationValidator/internal/events"
	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidEvent       = "в событии не указаны clubId, resourceId или reservationId"
	msgNotResolved        = "бронирование не удалось проверить, повторите событие позже"

	// Проверка дорабатывается и после обрыва соединения клиента
	processTimeout = 30 * time.Second
)

type Handler struct {
	useCase ValidateReservationUseCase
	logger  Logger
}

func NewHandler(useCase ValidateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/events/reservation-created
// HTTP вариант доставки события для окружений без брокера сообщений
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var ev events.ReservationCreated
	if err := handlers.DecodeJSON(r, &ev); err != nil {
		h.logger.Warn("POST /events/reservation-created - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), processTimeout)
	defer cancel()

	result, err := h.useCase.Execute(ctx, ev.ToRequest())
	if err != nil {
		switch {
		case errors.Is(err, validate_reservation.ErrInvalidInput):
			h.logger.Warn("POST /events/reservation-created - Invalid event: %v", err)
			handlers.RespondBadRequest(w, msgInvalidEvent)

		case errors.Is(err, validate_reservation.ErrFallbackFailed),
			errors.Is(err, validate_reservation.ErrInterrupted):
			h.logger.Error("POST /events/reservation-created - Reservation left unresolved: event_id=%s, error=%v",
				ev.EventID, err)
			handlers.RespondServiceUnavailable(w, msgNotResolved)

		default:
			h.logger.Error("POST /events/reservation-created - Failed to validate: event_id=%s, error=%v", ev.EventID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /events/reservation-created - Processed: event_id=%s, reservation=%s, outcome=%s",
		result.EventID, result.Key, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
