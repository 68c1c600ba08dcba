package sweep_reservations

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

const tracerName = "sweep_reservations"

// UseCase use case удаления устаревших отмененных и невалидных бронирований
type UseCase struct {
	repo         ReservationRepository
	policy       domain.RetentionPolicy
	metrics      MetricsRecorder
	timeProvider TimeProvider
	tracer       trace.Tracer
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// metrics может быть nil, если метрики выключены
func NewUseCase(repo ReservationRepository, policy domain.RetentionPolicy, metrics MetricsRecorder, logger Logger) *UseCase {
	return &UseCase{
		repo:         repo,
		policy:       policy,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

// Execute удаляет устаревшие бронирования пачками, пока не получит неполную пачку
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	if err := validatePolicy(uc.policy); err != nil {
		uc.logger.Error("SweepReservations: %v", err)
		return nil, err
	}

	filter := uc.policy.Filter(uc.timeProvider.Now())

	ctx, span := uc.tracer.Start(ctx, "SweepReservations", trace.WithAttributes(
		attribute.String("retention.cutoff", filter.Before),
		attribute.Int("retention.batch_size", filter.Limit),
	))
	defer span.End()

	uc.logger.Info("SweepReservations: started, cutoff=%s, statuses=%v", filter.Before, filter.Statuses)

	resp := &Response{Cutoff: filter.Before}
	for {
		if err := ctx.Err(); err != nil {
			return uc.finish(span, resp, fmt.Errorf("%w: %w", ErrInternal, err))
		}

		keys, err := uc.repo.ListExpired(ctx, filter)
		if err != nil {
			return uc.finish(span, resp, fmt.Errorf("%w: list expired: %w", ErrInternal, err))
		}
		if len(keys) == 0 {
			break
		}

		deleted, err := uc.repo.DeleteByKeys(ctx, keys)
		resp.Deleted += deleted
		resp.Batches++
		if err != nil {
			return uc.finish(span, resp, fmt.Errorf("%w: delete batch: %w", ErrInternal, err))
		}

		// Неполная пачка означает, что подходящих записей больше нет
		if len(keys) < filter.Limit || deleted == 0 {
			break
		}
	}

	return uc.finish(span, resp, nil)
}

func (uc *UseCase) finish(span trace.Span, resp *Response, err error) (*Response, error) {
	span.SetAttributes(
		attribute.Int64("retention.deleted", resp.Deleted),
		attribute.Int("retention.batches", resp.Batches),
	)
	if uc.metrics != nil {
		uc.metrics.ObserveSweep(resp.Deleted, err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.logger.Error("SweepReservations: failed after %d deleted: %v", resp.Deleted, err)
		return nil, err
	}

	uc.logger.Info("SweepReservations: finished, deleted=%d, batches=%d", resp.Deleted, resp.Batches)
	return resp, nil
}
