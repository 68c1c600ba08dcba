package get_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationValidator/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/reservations"
)

const (
	msgInvalidKey = "некорректный ключ бронирования"
	msgNotFound   = "бронирование не найдено"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/clubs/{clubId}/resources/{resourceId}/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := domain.Key{
		ClubID:        vars["clubId"],
		ResourceID:    vars["resourceId"],
		ReservationID: vars["reservationId"],
	}

	reservation, err := h.service.Get(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /reservations/{id} - Invalid key: %v", err)
			handlers.RespondBadRequest(w, msgInvalidKey)

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("GET /reservations/{id} - Reservation not found: %s", key)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /reservations/{id} - Failed to get reservation: %s, error=%v", key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /reservations/{id} - Reservation retrieved: %s, status=%s", key, reservation.Status)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
