package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// envPrefix префикс переменных окружения, переопределяющих значения файла
// Например: VALIDATOR_DATABASE_HOST, VALIDATOR_RESOLUTION_MODE
const envPrefix = "VALIDATOR"

var (
	// ErrReadConfig возвращается, если файл конфигурации не удалось прочитать
	ErrReadConfig = errors.New("config: failed to read config")

	// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server" split_words:"true"`
	Database   DatabaseConfig   `toml:"database" split_words:"true"`
	Firestore  FirestoreConfig  `toml:"firestore" split_words:"true"`
	RabbitMQ   RabbitMQConfig   `toml:"rabbitmq" envconfig:"RABBITMQ"`
	Resolution ResolutionConfig `toml:"resolution" split_words:"true"`
	Retention  RetentionConfig  `toml:"retention" split_words:"true"`
	Logs       LogsConfig       `toml:"logs" split_words:"true"`
	Metrics    MetricsConfig    `toml:"metrics" split_words:"true"`
	Tracing    TracingConfig    `toml:"tracing" split_words:"true"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

// DatabaseConfig параметры SQL хранилища
type DatabaseConfig struct {
	Driver          string `toml:"driver" split_words:"true"` // postgres | sqlite
	Host            string `toml:"host" split_words:"true"`
	Port            int    `toml:"port" split_words:"true"`
	User            string `toml:"user" split_words:"true"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true"`
	SSLMode         string `toml:"sslmode" split_words:"true"`
	Path            string `toml:"path" split_words:"true"` // файл БД для sqlite
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"`
	AutoMigrate     bool   `toml:"auto_migrate" split_words:"true"`
}

// FirestoreConfig параметры документного хранилища
// Если Enabled, бронирования читаются и пишутся в Firestore вместо SQL
type FirestoreConfig struct {
	Enabled         bool   `toml:"enabled" split_words:"true"`
	ProjectID       string `toml:"project_id" split_words:"true"`
	CredentialsFile string `toml:"credentials_file" split_words:"true"`
}

// RabbitMQConfig параметры потребителя событий
type RabbitMQConfig struct {
	Enabled  bool     `toml:"enabled" split_words:"true"`
	URL      string   `toml:"url" split_words:"true"`
	Exchange string   `toml:"exchange" split_words:"true"`
	Queue    string   `toml:"queue" split_words:"true"`
	Bindings []string `toml:"bindings" split_words:"true"`
	Prefetch int      `toml:"prefetch" split_words:"true"`
	Workers  int      `toml:"workers" split_words:"true"`
	UseDLX   bool     `toml:"use_dlx" split_words:"true"`
	DLXName  string   `toml:"dlx_name" split_words:"true"`
	DLXQueue string   `toml:"dlx_queue" split_words:"true"`
}

// ResolutionConfig параметры разрешения конфликтов
type ResolutionConfig struct {
	Mode       domain.ResolutionMode `toml:"mode" split_words:"true"`   // serializable | snapshot
	Policy     domain.OrderingPolicy `toml:"policy" split_words:"true"` // first_created | last_validated
	MaxRetries int                   `toml:"max_retries" split_words:"true"`
}

// RetentionConfig параметры периодической очистки
type RetentionConfig struct {
	Enabled   bool     `toml:"enabled" split_words:"true"`
	Schedule  string   `toml:"schedule" split_words:"true"` // cron выражение или @every
	Days      int      `toml:"days" split_words:"true"`
	Statuses  []string `toml:"statuses" split_words:"true"`
	BatchSize int      `toml:"batch_size" split_words:"true"`
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level" split_words:"true"`
	File  string `toml:"file" split_words:"true"`
}

// MetricsConfig параметры Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

// TracingConfig параметры OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `toml:"enabled" split_words:"true"`
	Endpoint    string  `toml:"endpoint" split_words:"true"`
	Environment string  `toml:"environment" split_words:"true"`
	SampleRatio float64 `toml:"sample_ratio" split_words:"true"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию
// и переопределения из переменных окружения
// Отсутствующий файл не является ошибкой: используются значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("%w: decode %s: %v", ErrReadConfig, path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: stat %s: %v", ErrReadConfig, path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: env overrides: %v", ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN строка подключения для database/sql
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}
