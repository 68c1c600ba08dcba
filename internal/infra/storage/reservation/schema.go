package reservation

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ReservationValidator/pkg/psqlbuilder"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		club_id          TEXT        NOT NULL,
		resource_id      TEXT        NOT NULL,
		reservation_id   TEXT        NOT NULL,
		reservation_date TEXT        NOT NULL,
		start_time       TEXT        NOT NULL,
		duration_minutes INTEGER     NOT NULL,
		status           TEXT        NOT NULL,
		invalid_reason   TEXT,
		validated_at     TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (club_id, resource_id, reservation_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_partition
		ON reservations (club_id, resource_id, reservation_date, status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_retention
		ON reservations (reservation_date, status)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		club_id          TEXT      NOT NULL,
		resource_id      TEXT      NOT NULL,
		reservation_id   TEXT      NOT NULL,
		reservation_date TEXT      NOT NULL,
		start_time       TEXT      NOT NULL,
		duration_minutes INTEGER   NOT NULL,
		status           TEXT      NOT NULL,
		invalid_reason   TEXT,
		validated_at     TIMESTAMP,
		created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (club_id, resource_id, reservation_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_partition
		ON reservations (club_id, resource_id, reservation_date, status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_retention
		ON reservations (reservation_date, status)`,
}

// Migrate создает таблицу и индексы, если их еще нет
func (r *Repository) Migrate(ctx context.Context) error {
	statements := postgresSchema
	if r.dialect == psqlbuilder.SQLite {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %w", ErrMigrate, err)
		}
	}
	return nil
}
