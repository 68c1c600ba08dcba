package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	getActiveReservationsHandler "github.com/m04kA/SMC-ReservationValidator/internal/api/handlers/get_active_reservations"
	getReservationHandler "github.com/m04kA/SMC-ReservationValidator/internal/api/handlers/get_reservation"
	healthHandler "github.com/m04kA/SMC-ReservationValidator/internal/api/handlers/health"
	reservationCreatedHandler "github.com/m04kA/SMC-ReservationValidator/internal/api/handlers/reservation_created"
	runSweepHandler "github.com/m04kA/SMC-ReservationValidator/internal/api/handlers/run_sweep"
	"github.com/m04kA/SMC-ReservationValidator/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationValidator/internal/config"
	reservationEvents "github.com/m04kA/SMC-ReservationValidator/internal/consumer/reservation_events"
	"github.com/m04kA/SMC-ReservationValidator/internal/scheduler"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/conflicts"
	reservationsService "github.com/m04kA/SMC-ReservationValidator/internal/service/reservations"
	sweepUC "github.com/m04kA/SMC-ReservationValidator/internal/usecase/sweep_reservations"
	validateUC "github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
	"github.com/m04kA/SMC-ReservationValidator/pkg/logger"
	"github.com/m04kA/SMC-ReservationValidator/pkg/metrics"
	"github.com/m04kA/SMC-ReservationValidator/pkg/mq"
	"github.com/m04kA/SMC-ReservationValidator/pkg/tracing"
)

const (
	serviceVersion = "1.0.0"
	configPath     = "config.toml"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ReservationValidator...")
	log.Info("Resolution: mode=%s, policy=%s", cfg.Resolution.Mode, cfg.Resolution.Policy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Трейсинг (если включен)
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, tracing.Config{
			ServiceName:    cfg.Metrics.ServiceName,
			ServiceVersion: serviceVersion,
			Environment:    cfg.Tracing.Environment,
			Endpoint:       cfg.Tracing.Endpoint,
			SampleRatio:    cfg.Tracing.SampleRatio,
		})
		if err != nil {
			log.Fatal("Failed to initialize tracing: %v", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.Error("Failed to flush traces: %v", err)
			}
		}()
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаем хранилище
	store, err := openStorage(ctx, cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open storage: %v", err)
	}
	defer store.close()

	// Интерфейсы use case'ов принимают nil как "без метрик"
	var (
		validationMetrics validateUC.MetricsRecorder
		sweepMetrics      sweepUC.MetricsRecorder
	)
	if metricsCollector != nil {
		validationMetrics = metricsCollector
		sweepMetrics = metricsCollector
	}

	// Инициализируем сервисы и use cases
	scanner := conflicts.NewScanner(store.store, cfg.Resolution.Policy, log)
	reservationSvc := reservationsService.NewService(store.store, store.txManager, log)

	validateUseCase := validateUC.NewUseCase(
		store.store,
		scanner,
		store.txManager,
		cfg.Resolution.Mode,
		validationMetrics,
		log,
	)
	sweepUseCase := sweepUC.NewUseCase(store.store, retentionPolicy(cfg.Retention), sweepMetrics, log)

	// Потребитель событий reservation.created
	consumerDone := make(chan struct{})
	if cfg.RabbitMQ.Enabled {
		source, err := mq.NewConsumer(mq.ConsumerConfig{
			URL:         cfg.RabbitMQ.URL,
			Exchange:    cfg.RabbitMQ.Exchange,
			Queue:       cfg.RabbitMQ.Queue,
			Bindings:    cfg.RabbitMQ.Bindings,
			Prefetch:    cfg.RabbitMQ.Prefetch,
			ConsumerTag: cfg.Metrics.ServiceName,
			UseDLX:      cfg.RabbitMQ.UseDLX,
			DLXName:     cfg.RabbitMQ.DLXName,
			DLXQueue:    cfg.RabbitMQ.DLXQueue,
		})
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer source.Close()

		consumer := reservationEvents.NewConsumer(source, validateUseCase, cfg.RabbitMQ.Workers, log)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				log.Error("Reservation events consumer stopped: %v", err)
			}
		}()
		log.Info("Consuming %v from %s (queue=%s, workers=%d)",
			cfg.RabbitMQ.Bindings, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Workers)
	} else {
		close(consumerDone)
	}

	// Периодическая очистка
	sched := scheduler.New(log)
	if cfg.Retention.Enabled {
		err := sched.Add("retention-sweep", cfg.Retention.Schedule, func(ctx context.Context) error {
			_, err := sweepUseCase.Execute(ctx)
			return err
		})
		if err != nil {
			log.Fatal("Failed to schedule retention sweep: %v", err)
		}
		sched.Start()
		log.Info("Retention sweep scheduled (%s, older than %d days, statuses=%v)",
			cfg.Retention.Schedule, cfg.Retention.Days, cfg.Retention.Statuses)
	}

	// Инициализируем handlers
	reservationCreated := reservationCreatedHandler.NewHandler(validateUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getActiveReservations := getActiveReservationsHandler.NewHandler(reservationSvc, log)
	runSweep := runSweepHandler.NewHandler(sweepUseCase, log)
	health := healthHandler.NewHandler(store.store, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Доставка события по HTTP (альтернатива очереди)
	api.HandleFunc("/events/reservation-created", reservationCreated.Handle).Methods(http.MethodPost)

	// Чтение бронирований и результатов проверки
	api.HandleFunc("/clubs/{clubId}/resources/{resourceId}/reservations",
		getActiveReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/clubs/{clubId}/resources/{resourceId}/reservations/{reservationId}",
		getReservation.Handle).Methods(http.MethodGet)

	// Администрирование
	api.HandleFunc("/admin/retention/sweep", runSweep.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся обработки уже принятых событий
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Warn("Consumer did not stop in time")
	}

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop in time: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Service stopped gracefully")
}
