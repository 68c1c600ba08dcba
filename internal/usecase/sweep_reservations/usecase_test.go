package sweep_reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationValidator/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
	"github.com/m04kA/SMC-ReservationValidator/pkg/psqlbuilder"
)

var now = time.Date(2024, 7, 15, 3, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type memoryRepo struct {
	records   []*domain.Reservation
	policy    domain.RetentionPolicy
	listCalls int
	listErr   error
	deleteErr error
}

func (m *memoryRepo) ListExpired(_ context.Context, filter domain.ExpiredFilter) ([]domain.Key, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []domain.Key
	for _, r := range m.records {
		if len(keys) == filter.Limit {
			break
		}
		if m.policy.IsExpired(r, now) {
			keys = append(keys, r.Key)
		}
	}
	return keys, nil
}

func (m *memoryRepo) DeleteByKeys(_ context.Context, keys []domain.Key) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	drop := make(map[domain.Key]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	kept := m.records[:0]
	for _, r := range m.records {
		if !drop[r.Key] {
			kept = append(kept, r)
		}
	}
	deleted := int64(len(m.records) - len(kept))
	m.records = kept
	return deleted, nil
}

type recordedSweeps struct {
	deleted []int64
	errs    []error
}

func (r *recordedSweeps) ObserveSweep(deleted int64, err error) {
	r.deleted = append(r.deleted, deleted)
	r.errs = append(r.errs, err)
}

func record(id, date string, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		Key:             domain.Key{ClubID: "club-1", ResourceID: "R1", ReservationID: id},
		Date:            date,
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          status,
	}
}

func newUseCase(repo ReservationRepository, policy domain.RetentionPolicy, m MetricsRecorder) *UseCase {
	uc := NewUseCase(repo, policy, m, logger.NewNop())
	uc.timeProvider = fixedTime{t: now}
	return uc
}

func TestExecute_DeletesOnlyExpiredTerminalReservations(t *testing.T) {
	policy := domain.DefaultRetentionPolicy()
	repo := &memoryRepo{policy: policy, records: []*domain.Reservation{
		record("old-cancelled", "2024-05-01", domain.StatusCancelled),
		record("old-invalid", "2024-06-14", domain.StatusInvalid),
		record("old-active", "2024-05-01", domain.StatusActive),
		record("fresh-cancelled", "2024-06-15", domain.StatusCancelled),
		record("fresh-invalid", "2024-07-10", domain.StatusInvalid),
	}}
	m := &recordedSweeps{}

	resp, err := newUseCase(repo, policy, m).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", resp.Cutoff)
	assert.Equal(t, int64(2), resp.Deleted)

	var left []string
	for _, r := range repo.records {
		left = append(left, r.ReservationID)
	}
	assert.ElementsMatch(t, []string{"old-active", "fresh-cancelled", "fresh-invalid"}, left)
	assert.Equal(t, []int64{2}, m.deleted)
	assert.Equal(t, []error{nil}, m.errs)
}

func TestExecute_LoopsUntilShortBatch(t *testing.T) {
	policy := domain.DefaultRetentionPolicy()
	policy.BatchSize = 3
	repo := &memoryRepo{policy: policy}
	for i := 0; i < 7; i++ {
		repo.records = append(repo.records, record(fmt.Sprintf("r-%d", i), "2024-01-01", domain.StatusInvalid))
	}

	resp, err := newUseCase(repo, policy, nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Deleted)
	assert.Equal(t, 3, resp.Batches)
	assert.Empty(t, repo.records)
}

func TestExecute_ExactMultipleOfBatchSize(t *testing.T) {
	policy := domain.DefaultRetentionPolicy()
	policy.BatchSize = 2
	repo := &memoryRepo{policy: policy, records: []*domain.Reservation{
		record("a", "2024-01-01", domain.StatusCancelled),
		record("b", "2024-01-01", domain.StatusCancelled),
	}}

	resp, err := newUseCase(repo, policy, nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)
	assert.Equal(t, 1, resp.Batches)
	assert.Equal(t, 2, repo.listCalls, "an empty batch ends the sweep")
}

func TestExecute_NothingToDelete(t *testing.T) {
	policy := domain.DefaultRetentionPolicy()
	repo := &memoryRepo{policy: policy}

	resp, err := newUseCase(repo, policy, nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Zero(t, resp.Deleted)
	assert.Zero(t, resp.Batches)
}

func TestExecute_StorageErrors(t *testing.T) {
	policy := domain.DefaultRetentionPolicy()

	t.Run("list", func(t *testing.T) {
		m := &recordedSweeps{}
		repo := &memoryRepo{policy: policy, listErr: errors.New("unavailable")}

		_, err := newUseCase(repo, policy, m).Execute(context.Background())

		assert.ErrorIs(t, err, ErrInternal)
		require.Len(t, m.errs, 1)
		assert.Error(t, m.errs[0])
	})

	t.Run("delete", func(t *testing.T) {
		repo := &memoryRepo{
			policy:    policy,
			records:   []*domain.Reservation{record("a", "2024-01-01", domain.StatusCancelled)},
			deleteErr: errors.New("unavailable"),
		}

		_, err := newUseCase(repo, policy, nil).Execute(context.Background())

		assert.ErrorIs(t, err, ErrInternal)
		assert.Len(t, repo.records, 1)
	})
}

func TestExecute_CancelledContext(t *testing.T) {
	policy := domain.DefaultRetentionPolicy()
	repo := &memoryRepo{policy: policy}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newUseCase(repo, policy, nil).Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, repo.listCalls)
}

func TestValidatePolicy(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *domain.RetentionPolicy)
		wantErr bool
	}{
		{name: "default", mutate: func(p *domain.RetentionPolicy) {}},
		{name: "active status", mutate: func(p *domain.RetentionPolicy) {
			p.Statuses = append(p.Statuses, domain.StatusActive)
		}, wantErr: true},
		{name: "no statuses", mutate: func(p *domain.RetentionPolicy) { p.Statuses = nil }, wantErr: true},
		{name: "zero days", mutate: func(p *domain.RetentionPolicy) { p.Days = 0 }, wantErr: true},
		{name: "zero batch", mutate: func(p *domain.RetentionPolicy) { p.BatchSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.DefaultRetentionPolicy()
			tt.mutate(&p)

			err := validatePolicy(p)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExecute_SQLiteRepository(t *testing.T) {
	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	repo := reservation.NewRepository(dbmetrics.Plain(raw), psqlbuilder.SQLite)
	ctx := context.Background()
	require.NoError(t, repo.Migrate(ctx))

	fixtures := []*domain.Reservation{
		record("old-cancelled", "2024-05-01", domain.StatusCancelled),
		record("old-invalid", "2024-05-02", domain.StatusInvalid),
		record("old-active", "2024-05-01", domain.StatusActive),
		record("fresh-invalid", "2024-07-01", domain.StatusInvalid),
	}
	for _, r := range fixtures {
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
	}

	policy := domain.DefaultRetentionPolicy()
	policy.BatchSize = 1

	resp, err := newUseCase(repo, policy, nil).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)

	for _, r := range fixtures {
		_, err := repo.GetByKey(ctx, r.Key)
		switch r.ReservationID {
		case "old-cancelled", "old-invalid":
			assert.ErrorIs(t, err, domain.ErrReservationNotFound, r.ReservationID)
		default:
			assert.NoError(t, err, r.ReservationID)
		}
	}
}
