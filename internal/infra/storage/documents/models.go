package documents

import (
	"time"

	"cloud.google.com/go/firestore"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/pkg/types"
)

// Коллекции: clubs/{clubId}/courts/{courtId}/bookings/{bookingId}
const (
	clubsCollection    = "clubs"
	courtsCollection   = "courts"
	bookingsCollection = "bookings"
)

// Имена полей документа бронирования
const (
	fieldDate          = "date"
	fieldStatus        = "status"
	fieldInvalidReason = "invalidReason"
	fieldValidatedAt   = "validatedAt"
	fieldUpdatedAt     = "updatedAt"
)

// bookingDoc документ бронирования в Firestore
type bookingDoc struct {
	Date            string     `firestore:"date"`
	StartTime       string     `firestore:"startTime"`
	DurationMinutes int        `firestore:"durationMinutes"`
	Status          string     `firestore:"status"`
	InvalidReason   *string    `firestore:"invalidReason,omitempty"`
	ValidatedAt     *time.Time `firestore:"validatedAt,omitempty"`
	CreatedAt       time.Time  `firestore:"createdAt"`
	UpdatedAt       time.Time  `firestore:"updatedAt"`
}

func toDoc(r *domain.Reservation) bookingDoc {
	return bookingDoc{
		Date:            r.Date,
		StartTime:       string(r.StartTime),
		DurationMinutes: r.DurationMinutes,
		Status:          string(r.Status),
		InvalidReason:   r.InvalidReason,
		ValidatedAt:     r.ValidatedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// fromDoc собирает бронирование; createTime документа подставляется,
// если писатель не заполнил createdAt
func fromDoc(key domain.Key, doc bookingDoc, createTime time.Time) *domain.Reservation {
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = createTime
	}

	res := &domain.Reservation{
		Key:             key,
		Date:            doc.Date,
		StartTime:       types.TimeString(doc.StartTime),
		DurationMinutes: doc.DurationMinutes,
		Status:          domain.ReservationStatus(doc.Status),
		InvalidReason:   doc.InvalidReason,
		CreatedAt:       createdAt.UTC(),
		UpdatedAt:       doc.UpdatedAt.UTC(),
	}
	if doc.ValidatedAt != nil {
		t := doc.ValidatedAt.UTC()
		res.ValidatedAt = &t
	}
	return res
}

// keyFromRef восстанавливает ключ по пути документа
// clubs/{clubId}/courts/{courtId}/bookings/{bookingId}
func keyFromRef(ref *firestore.DocumentRef) (domain.Key, bool) {
	if ref == nil || ref.Parent == nil || ref.Parent.ID != bookingsCollection {
		return domain.Key{}, false
	}
	court := ref.Parent.Parent
	if court == nil || court.Parent == nil || court.Parent.ID != courtsCollection {
		return domain.Key{}, false
	}
	club := court.Parent.Parent
	if club == nil || club.Parent == nil || club.Parent.ID != clubsCollection {
		return domain.Key{}, false
	}
	return domain.Key{ClubID: club.ID, ResourceID: court.ID, ReservationID: ref.ID}, true
}
