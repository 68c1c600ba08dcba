package config

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}

	if !c.Firestore.Enabled {
		switch c.Database.Driver {
		case DriverPostgres:
			if c.Database.Host == "" || c.Database.DBName == "" {
				return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalidConfig)
			}
		case DriverSQLite:
			if c.Database.Path == "" {
				return fmt.Errorf("%w: database.path is required for sqlite", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
		}
	} else if c.Firestore.ProjectID == "" {
		return fmt.Errorf("%w: firestore.project_id is required", ErrInvalidConfig)
	}

	switch c.Resolution.Mode {
	case domain.ModeSerializable, domain.ModeSnapshot:
	default:
		return fmt.Errorf("%w: unknown resolution.mode %q", ErrInvalidConfig, c.Resolution.Mode)
	}

	switch c.Resolution.Policy {
	case domain.PolicyFirstCreated, domain.PolicyLastValidated:
	default:
		return fmt.Errorf("%w: unknown resolution.policy %q", ErrInvalidConfig, c.Resolution.Policy)
	}

	if c.Resolution.MaxRetries < 0 {
		return fmt.Errorf("%w: resolution.max_retries must not be negative", ErrInvalidConfig)
	}

	if c.Retention.Enabled {
		if c.Retention.Schedule == "" {
			return fmt.Errorf("%w: retention.schedule is required", ErrInvalidConfig)
		}
		if c.Retention.Days <= 0 {
			return fmt.Errorf("%w: retention.days must be positive", ErrInvalidConfig)
		}
		if c.Retention.BatchSize <= 0 {
			return fmt.Errorf("%w: retention.batch_size must be positive", ErrInvalidConfig)
		}
		if len(c.Retention.Statuses) == 0 {
			return fmt.Errorf("%w: retention.statuses must not be empty", ErrInvalidConfig)
		}
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.URL == "" || c.RabbitMQ.Queue == "" || c.RabbitMQ.Exchange == "" {
			return fmt.Errorf("%w: rabbitmq.url, rabbitmq.exchange and rabbitmq.queue are required", ErrInvalidConfig)
		}
		if c.RabbitMQ.Workers <= 0 {
			return fmt.Errorf("%w: rabbitmq.workers must be positive", ErrInvalidConfig)
		}
	}

	if c.Tracing.Enabled && (c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1) {
		return fmt.Errorf("%w: tracing.sample_ratio must be in [0, 1]", ErrInvalidConfig)
	}

	return nil
}
