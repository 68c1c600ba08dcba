package run_sweep

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationValidator/internal/api/handlers"
)

// SweepResponse HTTP response model
type SweepResponse struct {
	Cutoff  string `json:"cutoff"`
	Batches int    `json:"batches"`
	Deleted int64  `json:"deleted"`
}

type Handler struct {
	useCase SweepUseCase
	logger  Logger
}

func NewHandler(useCase SweepUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/retention/sweep
// Ручной запуск очистки вне расписания
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("POST /admin/retention/sweep - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/retention/sweep - Deleted %d reservations before %s", result.Deleted, result.Cutoff)
	handlers.RespondJSON(w, http.StatusOK, SweepResponse{
		Cutoff:  result.Cutoff,
		Batches: result.Batches,
		Deleted: result.Deleted,
	})
}
