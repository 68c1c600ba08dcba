package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationValidator/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationValidator/pkg/types"
)

const tableName = "reservations"

var columns = []string{
	"club_id",
	"resource_id",
	"reservation_id",
	"reservation_date",
	"start_time",
	"duration_minutes",
	"status",
	"invalid_reason",
	"validated_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий бронирований в SQL хранилище (PostgreSQL или SQLite)
type Repository struct {
	db      DBExecutor
	dialect psqlbuilder.Dialect
	sb      squirrel.StatementBuilderType
	now     func() time.Time
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, dialect psqlbuilder.Dialect) *Repository {
	return &Repository{
		db:      db,
		dialect: dialect,
		sb:      psqlbuilder.For(dialect),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create сохраняет новое бронирование
// Используется внешним писателем и тестами; валидатор бронирования не создает
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	now := r.now()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	query, args, err := r.sb.Insert(tableName).
		Columns(columns...).
		Values(
			res.ClubID,
			res.ResourceID,
			res.ReservationID,
			res.Date,
			string(res.StartTime),
			res.DurationMinutes,
			string(res.Status),
			res.InvalidReason,
			res.ValidatedAt,
			res.CreatedAt,
			res.UpdatedAt,
		).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return res, nil
}

// GetByKey получает бронирование по ключу
// Внутри пишущей транзакции на PostgreSQL строка блокируется (FOR UPDATE)
func (r *Repository) GetByKey(ctx context.Context, key domain.Key) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.sb.Select(columns...).
		From(tableName).
		Where(keyCondition(key))

	if dbmetrics.CanLockRows(ctx) && r.dialect.SupportsRowLocks() {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - build select query: %w", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// ListActive получает активные бронирования корта на дату в порядке создания
// Внутри пишущей транзакции на PostgreSQL строки блокируются (FOR UPDATE), как при создании бронирования
func (r *Repository) ListActive(ctx context.Context, partition domain.Partition) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.sb.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{
			"club_id":          partition.ClubID,
			"resource_id":      partition.ResourceID,
			"reservation_date": partition.Date,
			"status":           string(domain.StatusActive),
		}).
		OrderBy("created_at ASC", "reservation_id ASC")

	if dbmetrics.CanLockRows(ctx) && r.dialect.SupportsRowLocks() {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateVerdict записывает вердикт проверки частичным обновлением одной записи
//
// Обновление применяется только к активному и еще не проверенному бронированию.
// Если запись не найдена, возвращается domain.ErrReservationNotFound,
// если она уже разрешена (другим вызовом или внешним писателем) - domain.ErrAlreadyResolved.
func (r *Repository) UpdateVerdict(ctx context.Context, key domain.Key, verdict domain.Verdict) error {
	if verdict.NoOp {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	now := r.now()

	updateBuilder := r.sb.Update(tableName).
		Set("updated_at", now).
		Where(keyCondition(key)).
		Where(squirrel.Eq{"status": string(domain.StatusActive), "validated_at": nil})

	switch verdict.Status {
	case domain.StatusInvalid:
		updateBuilder = updateBuilder.
			Set("status", string(domain.StatusInvalid)).
			Set("invalid_reason", verdict.Reason)
	case domain.StatusActive:
		updateBuilder = updateBuilder.Set("validated_at", now)
	default:
		return fmt.Errorf("%w: UpdateVerdict - status %q", ErrInvalidVerdict, verdict.Status)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateVerdict - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateVerdict - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateVerdict - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByKey(ctx, key); err != nil {
			return err
		}
		return domain.ErrAlreadyResolved
	}

	return nil
}

// ListExpired возвращает ключи бронирований старше filter.Before с подходящим статусом
// Не более filter.Limit записей, старые первыми
func (r *Repository) ListExpired(ctx context.Context, filter domain.ExpiredFilter) ([]domain.Key, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = string(s)
	}

	selectBuilder := r.sb.Select("club_id", "resource_id", "reservation_id").
		From(tableName).
		Where(squirrel.Lt{"reservation_date": filter.Before}).
		Where(squirrel.Eq{"status": statuses}).
		OrderBy("reservation_date ASC", "club_id ASC", "resource_id ASC", "reservation_id ASC")

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	keys := make([]domain.Key, 0)
	for rows.Next() {
		var key domain.Key
		if err := rows.Scan(&key.ClubID, &key.ResourceID, &key.ReservationID); err != nil {
			return nil, fmt.Errorf("%w: ListExpired - scan key: %w", ErrScanRow, err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpired - rows error: %w", ErrScanRow, err)
	}

	return keys, nil
}

// DeleteByKeys физически удаляет бронирования по ключам
// Возвращает количество удаленных записей
func (r *Repository) DeleteByKeys(ctx context.Context, keys []domain.Key) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	anyOf := make(squirrel.Or, 0, len(keys))
	for _, key := range keys {
		anyOf = append(anyOf, keyCondition(key))
	}

	query, args, err := r.sb.Delete(tableName).
		Where(anyOf).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByKeys - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByKeys - execute delete: %w", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByKeys - get rows affected: %w", ErrExecQuery, err)
	}

	return deleted, nil
}

func keyCondition(key domain.Key) squirrel.Eq {
	return squirrel.Eq{
		"club_id":        key.ClubID,
		"resource_id":    key.ResourceID,
		"reservation_id": key.ReservationID,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res                  domain.Reservation
		startTime, status    string
		invalidReason        sql.NullString
		validatedAt          sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&res.ClubID,
		&res.ResourceID,
		&res.ReservationID,
		&res.Date,
		&startTime,
		&res.DurationMinutes,
		&status,
		&invalidReason,
		&validatedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.StartTime = types.TimeString(startTime)
	res.Status = domain.ReservationStatus(status)
	if invalidReason.Valid {
		res.InvalidReason = &invalidReason.String
	}
	if validatedAt.Valid {
		t := validatedAt.Time.UTC()
		res.ValidatedAt = &t
	}
	res.CreatedAt = createdAt.Time.UTC()
	res.UpdatedAt = updatedAt.Time.UTC()

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}
