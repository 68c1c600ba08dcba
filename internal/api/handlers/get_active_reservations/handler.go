package get_active_reservations

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationValidator/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/reservations"
)

const msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"

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

// Handle GET /api/v1/clubs/{clubId}/resources/{resourceId}/reservations?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	partition := domain.Partition{
		ClubID:     vars["clubId"],
		ResourceID: vars["resourceId"],
		Date:       r.URL.Query().Get("date"),
	}

	list, err := h.service.ListActive(r.Context(), partition)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			h.logger.Warn("GET /reservations - Invalid query: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		h.logger.Error("GET /reservations - Failed to list reservations: club=%s, resource=%s, date=%s, error=%v",
			partition.ClubID, partition.ResourceID, partition.Date, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}
