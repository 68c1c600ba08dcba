package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// Repository репозиторий бронирований в Firestore
// Раскладка документов: clubs/{clubId}/courts/{courtId}/bookings/{bookingId}
type Repository struct {
	client *firestore.Client
	logger Logger
	now    func() time.Time
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(client *firestore.Client, logger Logger) *Repository {
	return &Repository{
		client: client,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) bookings(clubID, courtID string) *firestore.CollectionRef {
	return r.client.Collection(clubsCollection).Doc(clubID).
		Collection(courtsCollection).Doc(courtID).
		Collection(bookingsCollection)
}

func (r *Repository) doc(key domain.Key) *firestore.DocumentRef {
	return r.bookings(key.ClubID, key.ResourceID).Doc(key.ReservationID)
}

// Create сохраняет новое бронирование
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	now := r.now()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	if _, err := r.doc(res.Key).Create(ctx, toDoc(res)); err != nil {
		return nil, fmt.Errorf("%w: Create - %s: %w", ErrWrite, res.Key, err)
	}
	return res, nil
}

// GetByKey получает бронирование по ключу
// Внутри транзакции чтение идет через нее
func (r *Repository) GetByKey(ctx context.Context, key domain.Key) (*domain.Reservation, error) {
	ref := r.doc(key)

	var (
		snap *firestore.DocumentSnapshot
		err  error
	)
	if tx, ok := getTx(ctx); ok {
		snap, err = tx.Get(ref)
	} else {
		snap, err = ref.Get(ctx)
	}

	if snap != nil && !snap.Exists() {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - %s: %w", ErrQuery, key, err)
	}

	return decode(key, snap)
}

// ListActive получает активные бронирования корта на дату
// Документы, которые не удалось разобрать, пропускаются
func (r *Repository) ListActive(ctx context.Context, partition domain.Partition) ([]*domain.Reservation, error) {
	query := r.bookings(partition.ClubID, partition.ResourceID).
		Where(fieldDate, "==", partition.Date).
		Where(fieldStatus, "==", string(domain.StatusActive))

	var iter *firestore.DocumentIterator
	if tx, ok := getTx(ctx); ok {
		iter = tx.Documents(query)
	} else {
		iter = query.Documents(ctx)
	}

	snaps, err := iter.GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - %s/%s/%s: %w",
			ErrQuery, partition.ClubID, partition.ResourceID, partition.Date, err)
	}

	reservations := make([]*domain.Reservation, 0, len(snaps))
	for _, snap := range snaps {
		key := domain.Key{ClubID: partition.ClubID, ResourceID: partition.ResourceID, ReservationID: snap.Ref.ID}
		res, err := decode(key, snap)
		if err != nil {
			r.logger.Warn("ListActive: skip document %s: %v", snap.Ref.Path, err)
			continue
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

// UpdateVerdict записывает вердикт частичным обновлением документа
// Обновление применяется только к активному и еще не проверенному бронированию;
// вне транзакции проверка и запись выполняются в собственной транзакции
func (r *Repository) UpdateVerdict(ctx context.Context, key domain.Key, verdict domain.Verdict) error {
	if verdict.NoOp {
		return nil
	}

	updates, err := r.verdictUpdates(verdict)
	if err != nil {
		return err
	}

	apply := func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.doc(key)
		snap, err := tx.Get(ref)
		if snap != nil && !snap.Exists() {
			return domain.ErrReservationNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: UpdateVerdict - %s: %w", ErrQuery, key, err)
		}
		// Проверяем только статус: запись с некорректными полями тоже должна помечаться invalid
		if !isUnresolved(snap) {
			return domain.ErrAlreadyResolved
		}
		if err := tx.Update(ref, updates); err != nil {
			return fmt.Errorf("%w: UpdateVerdict - %s: %w", ErrWrite, key, err)
		}
		return nil
	}

	if tx, ok := getTx(ctx); ok {
		return apply(ctx, tx)
	}

	if err := r.client.RunTransaction(ctx, apply); err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) || errors.Is(err, domain.ErrAlreadyResolved) {
			return err
		}
		return fmt.Errorf("%w: UpdateVerdict - %s: %w", ErrWrite, key, err)
	}
	return nil
}

func (r *Repository) verdictUpdates(verdict domain.Verdict) ([]firestore.Update, error) {
	now := r.now()

	switch verdict.Status {
	case domain.StatusInvalid:
		reason := ""
		if verdict.Reason != nil {
			reason = *verdict.Reason
		}
		return []firestore.Update{
			{Path: fieldStatus, Value: string(domain.StatusInvalid)},
			{Path: fieldInvalidReason, Value: reason},
			{Path: fieldUpdatedAt, Value: now},
		}, nil
	case domain.StatusActive:
		return []firestore.Update{
			{Path: fieldValidatedAt, Value: now},
			{Path: fieldUpdatedAt, Value: now},
		}, nil
	default:
		return nil, fmt.Errorf("%w: UpdateVerdict - status %q", ErrInvalidVerdict, verdict.Status)
	}
}

// ListExpired возвращает ключи устаревших бронирований по всем клубам и кортам
func (r *Repository) ListExpired(ctx context.Context, filter domain.ExpiredFilter) ([]domain.Key, error) {
	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = string(s)
	}

	query := r.client.CollectionGroup(bookingsCollection).
		Where(fieldDate, "<", filter.Before).
		Where(fieldStatus, "in", statuses).
		OrderBy(fieldDate, firestore.Asc)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired: %w", ErrQuery, err)
	}

	keys := make([]domain.Key, 0, len(snaps))
	for _, snap := range snaps {
		key, ok := keyFromRef(snap.Ref)
		if !ok {
			r.logger.Warn("ListExpired: skip document outside clubs/courts/bookings: %s", snap.Ref.Path)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// DeleteByKeys удаляет документы через BulkWriter
// Возвращает количество удаленных документов и объединенную ошибку неудачных удалений
func (r *Repository) DeleteByKeys(ctx context.Context, keys []domain.Key) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(keys))
	var errs []error

	for _, key := range keys {
		job, err := bw.Delete(r.doc(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deleted int64
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}

	if len(errs) > 0 {
		return deleted, fmt.Errorf("%w: DeleteByKeys: %w", ErrWrite, errors.Join(errs...))
	}
	return deleted, nil
}

// PingContext проверяет доступность Firestore чтением одного документа
func (r *Repository) PingContext(ctx context.Context) error {
	_, err := r.client.Collection(clubsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("%w: Ping: %w", ErrQuery, err)
	}
	return nil
}

func decode(key domain.Key, snap *firestore.DocumentSnapshot) (*domain.Reservation, error) {
	var doc bookingDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, key, err)
	}
	return fromDoc(key, doc, snap.CreateTime), nil
}

// isUnresolved сообщает, что документ активен и еще не прошел проверку
func isUnresolved(snap *firestore.DocumentSnapshot) bool {
	status, err := snap.DataAt(fieldStatus)
	if err != nil || status != string(domain.StatusActive) {
		return false
	}
	validatedAt, err := snap.DataAt(fieldValidatedAt)
	return err != nil || validatedAt == nil
}
