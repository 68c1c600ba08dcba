package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationValidator/internal/api/handlers"
)

const pingTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc адаптер функции к Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

type Logger interface {
	Warn(format string, v ...interface{})
}

type Handler struct {
	storage Pinger
	logger  Logger
}

func NewHandler(storage Pinger, logger Logger) *Handler {
	return &Handler{storage: storage, logger: logger}
}

// Handle GET /health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.storage.PingContext(ctx); err != nil {
		h.logger.Warn("GET /health - Storage unavailable: %v", err)
		handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
