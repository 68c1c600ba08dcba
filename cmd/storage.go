package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m04kA/SMC-ReservationValidator/internal/config"
	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/infra/storage/documents"
	"github.com/m04kA/SMC-ReservationValidator/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationValidator/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
	"github.com/m04kA/SMC-ReservationValidator/pkg/metrics"
	"github.com/m04kA/SMC-ReservationValidator/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationValidator/pkg/txmanager"
)

// reservationStore все операции хранилища, которые нужны use case'ам и сервисам
type reservationStore interface {
	GetByKey(ctx context.Context, key domain.Key) (*domain.Reservation, error)
	ListActive(ctx context.Context, partition domain.Partition) ([]*domain.Reservation, error)
	UpdateVerdict(ctx context.Context, key domain.Key, verdict domain.Verdict) error
	ListExpired(ctx context.Context, filter domain.ExpiredFilter) ([]domain.Key, error)
	DeleteByKeys(ctx context.Context, keys []domain.Key) (int64, error)
	PingContext(ctx context.Context) error
}

// transactor *txmanager.TransactionManager или *documents.TxManager
type transactor interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// sqlExecutor *dbmetrics.DB или *dbmetrics.PlainDB
type sqlExecutor interface {
	dbmetrics.DBExecutor
	txmanager.TxBeginner
	PingContext(ctx context.Context) error
}

type storage struct {
	store     reservationStore
	txManager transactor
	close     func()
}

// sqlStore репозиторий бронирований с проверкой соединения
type sqlStore struct {
	*reservation.Repository
	db sqlExecutor
}

func (s sqlStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// openStorage подключает Firestore или SQL хранилище в зависимости от конфигурации
func openStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Firestore.Enabled {
		client, err := documents.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to Firestore (project=%s)", cfg.Firestore.ProjectID)
		return &storage{
			store:     documents.NewRepository(client, log),
			txManager: documents.NewTxManager(client),
			close:     func() { _ = client.Close() },
		}, nil
	}

	dialect, err := psqlbuilder.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	txOpts := []txmanager.Option{txmanager.WithMaxRetries(cfg.Resolution.MaxRetries)}
	if dialect == psqlbuilder.SQLite {
		// SQLite допускает одного писателя, транзакции сериализуются соединением
		db.SetMaxOpenConns(1)
		txOpts = append(txOpts, txmanager.WithSerializableLevel(sql.LevelDefault))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (driver=%s, host=%s, db=%s)",
		cfg.Database.Driver, cfg.Database.Host, cfg.Database.DBName)

	var executor sqlExecutor
	if m != nil {
		executor = dbmetrics.WrapWithDefault(db, m, cfg.Metrics.ServiceName, stopCh)
		log.Info("Database metrics collection started")
	} else {
		executor = dbmetrics.Plain(db)
	}

	repo := reservation.NewRepository(executor, dialect)
	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("Database schema is up to date")
	}

	return &storage{
		store:     sqlStore{Repository: repo, db: executor},
		txManager: txmanager.NewTransactionManager(executor, txOpts...),
		close:     func() { _ = db.Close() },
	}, nil
}

func retentionPolicy(cfg config.RetentionConfig) domain.RetentionPolicy {
	statuses := make([]domain.ReservationStatus, len(cfg.Statuses))
	for i, s := range cfg.Statuses {
		statuses[i] = domain.ReservationStatus(s)
	}
	return domain.RetentionPolicy{
		Days:      cfg.Days,
		Statuses:  statuses,
		BatchSize: cfg.BatchSize,
	}
}
