package validate_reservation

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/conflicts"
	"github.com/m04kA/SMC-ReservationValidator/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
	"github.com/m04kA/SMC-ReservationValidator/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationValidator/pkg/txmanager"
)

func newSQLiteUseCase(t *testing.T, policy domain.OrderingPolicy) (*UseCase, *reservation.Repository) {
	t.Helper()

	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	db := dbmetrics.Plain(raw)
	repo := reservation.NewRepository(db, psqlbuilder.SQLite)
	require.NoError(t, repo.Migrate(context.Background()))

	log := logger.NewNop()
	tx := txmanager.NewTransactionManager(db, txmanager.WithSerializableLevel(sql.LevelDefault))
	scanner := conflicts.NewScanner(repo, policy, log)

	return NewUseCase(repo, scanner, tx, domain.ModeSerializable, nil, log), repo
}

func TestExecute_ConcurrentIdenticalReservationsLeaveOneSurvivor(t *testing.T) {
	uc, repo := newSQLiteUseCase(t, domain.PolicyFirstCreated)
	ctx := context.Background()

	const n = 6
	keys := make([]domain.Key, n)
	for i := 0; i < n; i++ {
		r := newReservation(fmt.Sprintf("r-%d", i), "18:00", 90, time.Duration(i)*time.Second)
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
		keys[i] = r.Key
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	// события приходят в обратном порядке создания
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func(key domain.Key) {
			defer wg.Done()
			_, err := uc.Execute(ctx, &Request{Key: key})
			errs <- err
		}(keys[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	survivors := 0
	for i, key := range keys {
		got, err := repo.GetByKey(ctx, key)
		require.NoError(t, err)
		if got.Status == domain.StatusActive {
			survivors++
			assert.Equal(t, 0, i, "the earliest reservation survives")
			assert.NotNil(t, got.ValidatedAt)
			continue
		}
		require.NotNil(t, got.InvalidReason)
		assert.Equal(t, domain.ReasonSlotUnavailable, *got.InvalidReason)
	}
	assert.Equal(t, 1, survivors)
}

func TestExecute_SQLiteOverlapAndAdjacency(t *testing.T) {
	uc, repo := newSQLiteUseCase(t, domain.PolicyLastValidated)
	ctx := context.Background()

	existing := newReservation("existing", "10:00", 60, 0)
	overlapping := newReservation("overlapping", "10:30", 30, time.Minute)
	adjacent := newReservation("adjacent", "11:00", 30, 2*time.Minute)
	for _, r := range []*domain.Reservation{existing, overlapping, adjacent} {
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
	}

	resp, err := uc.Execute(ctx, &Request{Key: overlapping.Key})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalidated, resp.Outcome)

	resp, err = uc.Execute(ctx, &Request{Key: adjacent.Key})
	require.NoError(t, err)
	assert.Equal(t, OutcomeKept, resp.Outcome)

	got, err := repo.GetByKey(ctx, existing.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Nil(t, got.ValidatedAt, "siblings are never written")
}
