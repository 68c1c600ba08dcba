package documents

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
)

func TestFromDoc_FallsBackToCreateTime(t *testing.T) {
	createTime := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	key := domain.Key{ClubID: "club-1", ResourceID: "court-1", ReservationID: "b-1"}

	res := fromDoc(key, bookingDoc{
		Date:            "2024-06-01",
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          "active",
	}, createTime)

	assert.Equal(t, key, res.Key)
	assert.Equal(t, domain.StatusActive, res.Status)
	assert.Equal(t, 60, res.DurationMinutes)
	assert.True(t, createTime.Equal(res.CreatedAt))
	assert.Nil(t, res.ValidatedAt)
	assert.NoError(t, res.Validate())
}

func TestToDoc_KeepsValidationFields(t *testing.T) {
	validatedAt := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	reason := domain.ReasonSlotUnavailable
	res := &domain.Reservation{
		Date:            "2024-06-01",
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          domain.StatusInvalid,
		InvalidReason:   &reason,
		ValidatedAt:     &validatedAt,
		CreatedAt:       validatedAt.Add(-time.Hour),
	}

	doc := toDoc(res)
	back := fromDoc(domain.Key{}, doc, time.Time{})

	assert.Equal(t, "invalid", doc.Status)
	require.NotNil(t, back.InvalidReason)
	assert.Equal(t, reason, *back.InvalidReason)
	require.NotNil(t, back.ValidatedAt)
	assert.True(t, validatedAt.Equal(*back.ValidatedAt))
	assert.True(t, res.CreatedAt.Equal(back.CreatedAt))
}

func TestKeyFromRef(t *testing.T) {
	client, err := firestore.NewClient(context.Background(), "test-project", option.WithoutAuthentication())
	if err != nil {
		t.Skipf("firestore client unavailable: %v", err)
	}
	defer client.Close()

	repo := NewRepository(client, logger.NewNop())
	want := domain.Key{ClubID: "club-1", ResourceID: "court-7", ReservationID: "b-42"}

	got, ok := keyFromRef(repo.doc(want))
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = keyFromRef(client.Collection("bookings").Doc("orphan"))
	assert.False(t, ok)

	_, ok = keyFromRef(client.Collection("users").Doc("u").Collection("bookings").Doc("b"))
	assert.False(t, ok)
}
