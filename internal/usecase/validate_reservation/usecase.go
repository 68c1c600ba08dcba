package validate_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/resolution"
)

const (
	tracerName      = "validate_reservation"
	fallbackTimeout = 10 * time.Second
)

// UseCase use case проверки созданного бронирования на пересечения
type UseCase struct {
	repo         ReservationRepository
	scanner      ConflictScanner
	txManager    TransactionManager
	mode         domain.ResolutionMode
	metrics      MetricsRecorder
	timeProvider TimeProvider
	tracer       trace.Tracer
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// metrics может быть nil, если метрики выключены
func NewUseCase(
	repo ReservationRepository,
	scanner ConflictScanner,
	txManager TransactionManager,
	mode domain.ResolutionMode,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		repo:         repo,
		scanner:      scanner,
		txManager:    txManager,
		mode:         mode,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

// Execute проверяет бронирование и записывает вердикт в ту же запись
//
// В режиме serializable поиск пересечений и запись выполняются в одной
// сериализуемой транзакции. Любая ошибка на пути проверки приводит к попытке
// пометить бронирование invalid с причиной "Validation error"; ошибка
// возвращается, только если не удалась и эта запись.
// Исключение - отмена ctx вызывающим: вердикт не пишется, возвращается ErrInterrupted.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ValidateReservation: validation failed: %v", err)
		return nil, err
	}

	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	ctx, span := uc.tracer.Start(ctx, "ValidateReservation", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("reservation.club_id", req.Key.ClubID),
		attribute.String("reservation.resource_id", req.Key.ResourceID),
		attribute.String("reservation.id", req.Key.ReservationID),
		attribute.String("resolution.mode", string(uc.mode)),
	))
	defer span.End()

	start := uc.timeProvider.Now()
	uc.logger.Info("ValidateReservation: event=%s, reservation=%s, mode=%s", eventID, req.Key, uc.mode)

	var resp *Response
	run := func(txCtx context.Context) error {
		result, err := uc.resolve(txCtx, eventID, req)
		if err != nil {
			return err
		}
		resp = result
		return nil
	}

	var err error
	if uc.mode == domain.ModeSerializable {
		err = uc.txManager.DoSerializable(ctx, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		span.RecordError(err)

		if ctx.Err() != nil {
			uc.logger.Warn("ValidateReservation: event=%s, reservation=%s interrupted by caller, left for redelivery: %v",
				eventID, req.Key, err)
			span.SetStatus(codes.Error, "interrupted")
			uc.observe(OutcomeInterrupted, start)
			return nil, fmt.Errorf("%w: %s: %w", ErrInterrupted, req.Key, err)
		}

		resp, err = uc.failClosed(ctx, eventID, req.Key, err)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			uc.observe(OutcomeFailedClosed, start)
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.String("validation.outcome", string(resp.Outcome)),
		attribute.String("reservation.status", string(resp.Status)),
	)
	uc.observe(resp.Outcome, start)

	uc.logger.Info("ValidateReservation: event=%s, reservation=%s, outcome=%s, status=%s",
		eventID, req.Key, resp.Outcome, resp.Status)

	return resp, nil
}

// resolve загружает бронирование, ищет пересечение и записывает вердикт
func (uc *UseCase) resolve(ctx context.Context, eventID string, req *Request) (*Response, error) {
	// 1. Текущее состояние записи: повторная доставка не должна ничего менять
	current, err := uc.repo.GetByKey(ctx, req.Key)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			uc.logger.Warn("ValidateReservation: reservation %s not found, skipping", req.Key)
			return &Response{EventID: eventID, Key: req.Key, Outcome: OutcomeSkipped}, nil
		}
		uc.logger.Error("ValidateReservation: failed to load reservation %s: %v", req.Key, err)
		return nil, fmt.Errorf("%w: load reservation: %w", ErrInternal, err)
	}

	if payloadDiffers(req.Payload, current) {
		uc.logger.Warn("ValidateReservation: event payload for %s differs from stored record, using stored record", req.Key)
	}

	// 2. Поиск пересечения среди активных бронирований корта на ту же дату
	var conflict *domain.Reservation
	if current.IsActive() && !current.IsValidated() {
		conflict, err = uc.scanner.Scan(ctx, current)
		if err != nil {
			uc.logger.Error("ValidateReservation: conflict scan failed for %s: %v", req.Key, err)
			return nil, fmt.Errorf("%w: scan: %w", ErrInternal, err)
		}
	}

	// 3. Вердикт
	verdict := resolution.Resolve(current, conflict)
	if verdict.NoOp {
		uc.logger.Info("ValidateReservation: reservation %s already resolved (status=%s), skipping", req.Key, current.Status)
		return &Response{
			EventID: eventID,
			Key:     req.Key,
			Status:  current.Status,
			Reason:  current.InvalidReason,
			Outcome: OutcomeSkipped,
		}, nil
	}

	// 4. Запись вердикта частичным обновлением той же записи
	if err := uc.repo.UpdateVerdict(ctx, req.Key, verdict); err != nil {
		if errors.Is(err, domain.ErrAlreadyResolved) || errors.Is(err, domain.ErrReservationNotFound) {
			uc.logger.Warn("ValidateReservation: reservation %s changed concurrently, skipping: %v", req.Key, err)
			return &Response{EventID: eventID, Key: req.Key, Status: current.Status, Outcome: OutcomeSkipped}, nil
		}
		uc.logger.Error("ValidateReservation: failed to write verdict for %s: %v", req.Key, err)
		return nil, fmt.Errorf("%w: write verdict: %w", ErrInternal, err)
	}

	resp := &Response{
		EventID: eventID,
		Key:     req.Key,
		Status:  verdict.Status,
		Reason:  verdict.Reason,
		Outcome: OutcomeKept,
	}
	if conflict != nil {
		resp.Outcome = OutcomeInvalidated
		conflictKey := conflict.Key
		resp.ConflictWith = &conflictKey
		uc.logger.Info("ValidateReservation: reservation %s overlaps %s, invalidated", req.Key, conflict.Key)
	}

	return resp, nil
}

// failClosed помечает бронирование invalid, если проверку не удалось завершить
// Запись выполняется вне транзакции проверки и не зависит от отмены ctx вызывающего
func (uc *UseCase) failClosed(ctx context.Context, eventID string, key domain.Key, cause error) (*Response, error) {
	uc.logger.Error("ValidateReservation: validation of %s failed, marking invalid: %v", key, cause)

	fallbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fallbackTimeout)
	defer cancel()

	verdict := resolution.Fail()
	err := uc.repo.UpdateVerdict(fallbackCtx, key, verdict)
	switch {
	case err == nil:
		return &Response{
			EventID: eventID,
			Key:     key,
			Status:  verdict.Status,
			Reason:  verdict.Reason,
			Outcome: OutcomeFailedClosed,
		}, nil
	case errors.Is(err, domain.ErrAlreadyResolved), errors.Is(err, domain.ErrReservationNotFound):
		uc.logger.Warn("ValidateReservation: reservation %s resolved elsewhere, fallback not needed: %v", key, err)
		return &Response{EventID: eventID, Key: key, Outcome: OutcomeSkipped}, nil
	default:
		uc.logger.Error("ValidateReservation: fallback write failed for %s: %v", key, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFallbackFailed, key, errors.Join(cause, err))
	}
}

func (uc *UseCase) observe(outcome Outcome, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.ObserveValidation(string(outcome), string(uc.mode), uc.timeProvider.Now().Sub(start))
}
