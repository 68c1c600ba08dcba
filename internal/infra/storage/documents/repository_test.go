package documents

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/conflicts"
	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
	"github.com/m04kA/SMC-ReservationValidator/pkg/types"
)

// newEmulatorRepo подключается к эмулятору Firestore
// Каждый тест получает собственный проект, чтобы запросы по группе коллекций не пересекались
func newEmulatorRepo(t *testing.T) (*Repository, *TxManager) {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	projectID := "validator-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	client, err := firestore.NewClient(context.Background(), projectID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRepository(client, logger.NewNop()), NewTxManager(client)
}

var createdBase = time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC)

func booking(club, court, id, date string, start types.TimeString, duration int, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		Key:             domain.Key{ClubID: club, ResourceID: court, ReservationID: id},
		Date:            date,
		StartTime:       start,
		DurationMinutes: duration,
		Status:          status,
		CreatedAt:       createdBase,
	}
}

func seed(t *testing.T, repo *Repository, reservations ...*domain.Reservation) {
	t.Helper()
	for i, r := range reservations {
		r.CreatedAt = r.CreatedAt.Add(time.Duration(i) * time.Minute)
		_, err := repo.Create(context.Background(), r)
		require.NoError(t, err)
	}
}

func TestRepository_GetByKey(t *testing.T) {
	repo, _ := newEmulatorRepo(t)
	ctx := context.Background()
	r := booking("club-1", "court-1", "b-1", "2024-06-01", "10:00", 60, domain.StatusActive)
	seed(t, repo, r)

	got, err := repo.GetByKey(ctx, r.Key)
	require.NoError(t, err)
	assert.Equal(t, r.Key, got.Key)
	assert.Equal(t, types.TimeString("10:00"), got.StartTime)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Nil(t, got.ValidatedAt)

	_, err = repo.GetByKey(ctx, domain.Key{ClubID: "club-1", ResourceID: "court-1", ReservationID: "missing"})
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestRepository_ListActive(t *testing.T) {
	repo, _ := newEmulatorRepo(t)
	seed(t, repo,
		booking("club-1", "court-1", "a", "2024-06-01", "10:00", 60, domain.StatusActive),
		booking("club-1", "court-1", "b", "2024-06-01", "12:00", 60, domain.StatusCancelled),
		booking("club-1", "court-1", "c", "2024-06-02", "10:00", 60, domain.StatusActive),
		booking("club-1", "court-2", "d", "2024-06-01", "10:00", 60, domain.StatusActive),
		booking("club-1", "court-1", "e", "2024-06-01", "18:00", 30, domain.StatusActive),
	)

	list, err := repo.ListActive(context.Background(), domain.Partition{ClubID: "club-1", ResourceID: "court-1", Date: "2024-06-01"})

	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.ReservationID)
	}
	assert.ElementsMatch(t, []string{"a", "e"}, ids)
}

func TestRepository_UpdateVerdict_WithoutTransaction(t *testing.T) {
	repo, _ := newEmulatorRepo(t)
	ctx := context.Background()
	loser := booking("club-1", "court-1", "loser", "2024-06-01", "10:00", 60, domain.StatusActive)
	keeper := booking("club-1", "court-1", "keeper", "2024-06-01", "12:00", 60, domain.StatusActive)
	seed(t, repo, loser, keeper)

	require.NoError(t, repo.UpdateVerdict(ctx, loser.Key, domain.Invalidate(domain.ReasonSlotUnavailable)))
	got, err := repo.GetByKey(ctx, loser.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInvalid, got.Status)
	require.NotNil(t, got.InvalidReason)
	assert.Equal(t, domain.ReasonSlotUnavailable, *got.InvalidReason)

	require.NoError(t, repo.UpdateVerdict(ctx, keeper.Key, domain.Keep()))
	got, err = repo.GetByKey(ctx, keeper.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.NotNil(t, got.ValidatedAt)
}

func TestRepository_UpdateVerdict_Guard(t *testing.T) {
	repo, _ := newEmulatorRepo(t)
	ctx := context.Background()
	cancelled := booking("club-1", "court-1", "cancelled", "2024-06-01", "10:00", 60, domain.StatusCancelled)
	validated := booking("club-1", "court-1", "validated", "2024-06-01", "12:00", 60, domain.StatusActive)
	seed(t, repo, cancelled, validated)
	require.NoError(t, repo.UpdateVerdict(ctx, validated.Key, domain.Keep()))

	err := repo.UpdateVerdict(ctx, cancelled.Key, domain.Invalidate(domain.ReasonValidationError))
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	err = repo.UpdateVerdict(ctx, validated.Key, domain.Invalidate(domain.ReasonSlotUnavailable))
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	got, err := repo.GetByKey(ctx, validated.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status, "a validated reservation is never overwritten")

	missing := domain.Key{ClubID: "club-1", ResourceID: "court-1", ReservationID: "missing"}
	assert.ErrorIs(t, repo.UpdateVerdict(ctx, missing, domain.Keep()), domain.ErrReservationNotFound)

	assert.NoError(t, repo.UpdateVerdict(ctx, missing, domain.Verdict{NoOp: true}))
}

func TestRepository_UpdateVerdict_InsideTransaction(t *testing.T) {
	repo, tx := newEmulatorRepo(t)
	ctx := context.Background()
	existing := booking("club-1", "court-1", "existing", "2024-06-01", "10:00", 60, domain.StatusActive)
	candidate := booking("club-1", "court-1", "new", "2024-06-01", "10:30", 30, domain.StatusActive)
	seed(t, repo, existing, candidate)

	err := tx.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := repo.GetByKey(txCtx, candidate.Key)
		if err != nil {
			return err
		}
		siblings, err := repo.ListActive(txCtx, current.Partition())
		if err != nil {
			return err
		}
		assert.Len(t, siblings, 2)
		return repo.UpdateVerdict(txCtx, candidate.Key, domain.Invalidate(domain.ReasonSlotUnavailable))
	})
	require.NoError(t, err)

	got, err := repo.GetByKey(ctx, candidate.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInvalid, got.Status)

	err = tx.DoSerializable(ctx, func(txCtx context.Context) error {
		return repo.UpdateVerdict(txCtx, candidate.Key, domain.Keep())
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestTxManager_DoReadOnly(t *testing.T) {
	repo, tx := newEmulatorRepo(t)
	ctx := context.Background()
	r := booking("club-1", "court-1", "b-1", "2024-06-01", "10:00", 60, domain.StatusActive)
	seed(t, repo, r)

	var list []*domain.Reservation
	err := tx.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = repo.ListActive(txCtx, r.Partition())
		return err
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = tx.DoReadOnly(ctx, func(txCtx context.Context) error {
		return repo.UpdateVerdict(txCtx, r.Key, domain.Keep())
	})
	assert.Error(t, err, "writes are refused in a read-only transaction")

	got, err := repo.GetByKey(ctx, r.Key)
	require.NoError(t, err)
	assert.Nil(t, got.ValidatedAt)
}

func TestRepository_ListExpiredAndDelete(t *testing.T) {
	repo, _ := newEmulatorRepo(t)
	ctx := context.Background()
	seed(t, repo,
		booking("club-1", "court-1", "old-cancelled", "2024-04-01", "10:00", 60, domain.StatusCancelled),
		booking("club-2", "court-9", "old-invalid", "2024-04-02", "10:00", 60, domain.StatusInvalid),
		booking("club-1", "court-1", "old-active", "2024-04-01", "12:00", 60, domain.StatusActive),
		booking("club-1", "court-1", "recent-invalid", "2024-06-20", "10:00", 60, domain.StatusInvalid),
		booking("club-1", "court-1", "cutoff-day", "2024-06-15", "10:00", 60, domain.StatusCancelled),
	)

	policy := domain.DefaultRetentionPolicy()
	filter := policy.Filter(time.Date(2024, 7, 15, 3, 0, 0, 0, time.UTC))
	require.Equal(t, "2024-06-15", filter.Before)

	keys, err := repo.ListExpired(ctx, filter)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Key{
		{ClubID: "club-1", ResourceID: "court-1", ReservationID: "old-cancelled"},
		{ClubID: "club-2", ResourceID: "court-9", ReservationID: "old-invalid"},
	}, keys)

	filter.Limit = 1
	limited, err := repo.ListExpired(ctx, filter)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "old-cancelled", limited[0].ReservationID, "oldest first")

	deleted, err := repo.DeleteByKeys(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	for _, key := range keys {
		_, err := repo.GetByKey(ctx, key)
		assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	}
	_, err = repo.GetByKey(ctx, domain.Key{ClubID: "club-1", ResourceID: "court-1", ReservationID: "old-active"})
	assert.NoError(t, err, "active reservations are never swept")

	deleted, err = repo.DeleteByKeys(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRepository_PingContext(t *testing.T) {
	repo, _ := newEmulatorRepo(t)
	assert.NoError(t, repo.PingContext(context.Background()))
}

func TestValidateReservation_OnFirestore(t *testing.T) {
	repo, tx := newEmulatorRepo(t)
	ctx := context.Background()
	existing := booking("club-1", "court-1", "existing", "2024-06-01", "10:00", 60, domain.StatusActive)
	overlapping := booking("club-1", "court-1", "overlapping", "2024-06-01", "10:30", 30, domain.StatusActive)
	adjacent := booking("club-1", "court-1", "adjacent", "2024-06-01", "11:00", 30, domain.StatusActive)
	seed(t, repo, existing, overlapping, adjacent)

	log := logger.NewNop()
	uc := validate_reservation.NewUseCase(
		repo,
		conflicts.NewScanner(repo, domain.PolicyFirstCreated, log),
		tx,
		domain.ModeSerializable,
		nil,
		log,
	)

	resp, err := uc.Execute(ctx, &validate_reservation.Request{Key: overlapping.Key})
	require.NoError(t, err)
	assert.Equal(t, validate_reservation.OutcomeInvalidated, resp.Outcome)

	resp, err = uc.Execute(ctx, &validate_reservation.Request{Key: adjacent.Key})
	require.NoError(t, err)
	assert.Equal(t, validate_reservation.OutcomeKept, resp.Outcome)

	resp, err = uc.Execute(ctx, &validate_reservation.Request{Key: overlapping.Key})
	require.NoError(t, err)
	assert.Equal(t, validate_reservation.OutcomeSkipped, resp.Outcome, "duplicate delivery is a no-op")

	got, err := repo.GetByKey(ctx, existing.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
}
