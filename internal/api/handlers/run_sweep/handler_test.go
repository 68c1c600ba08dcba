package run_sweep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/sweep_reservations"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
)

type stubUseCase struct {
	resp *sweep_reservations.Response
	err  error
}

func (s stubUseCase) Execute(context.Context) (*sweep_reservations.Response, error) {
	return s.resp, s.err
}

func TestHandle(t *testing.T) {
	h := NewHandler(stubUseCase{resp: &sweep_reservations.Response{Cutoff: "2024-06-15", Batches: 1, Deleted: 3}}, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/retention/sweep", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cutoff":"2024-06-15","batches":1,"deleted":3}`, rec.Body.String())
}

func TestHandle_Error(t *testing.T) {
	h := NewHandler(stubUseCase{err: errors.New("down")}, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/retention/sweep", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
