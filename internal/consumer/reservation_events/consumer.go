package reservation_events

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-ReservationValidator/internal/events"
	"github.com/m04kA/SMC-ReservationValidator/internal/usecase/validate_reservation"
)

const (
	defaultWorkers = 4
	handleTimeout  = 30 * time.Second

	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// Consumer обрабатывает события reservation.created
//
// События одного корта всегда попадают к одному воркеру
// и обрабатываются в порядке поступления.
// Перед возвратом сообщения в очередь воркер ждет с экспоненциальной задержкой,
// которая сбрасывается после первой успешной обработки.
type Consumer struct {
	source    DeliverySource
	validator Validator
	workers   int
	baseDelay time.Duration
	maxDelay  time.Duration
	logger    Logger
}

type job struct {
	delivery amqp.Delivery
	event    events.ReservationCreated
}

// NewConsumer создает обработчик событий с указанным числом воркеров
func NewConsumer(source DeliverySource, validator Validator, workers int, logger Logger) *Consumer {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Consumer{
		source:    source,
		validator: validator,
		workers:   workers,
		baseDelay: retryBaseDelay,
		maxDelay:  retryMaxDelay,
		logger:    logger,
	}
}

// Run читает сообщения до отмены ctx или закрытия канала
// Перед возвратом дожидается обработки уже принятых сообщений
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.source.Deliveries(ctx)
	if err != nil {
		return err
	}

	queues := make([]chan job, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan job, 1)
		wg.Add(1)
		go func(in <-chan job) {
			defer wg.Done()
			failures := 0
			for j := range in {
				if c.handle(ctx, j, failures) {
					failures = 0
				} else {
					failures++
				}
			}
		}(queues[i])
	}

	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
		c.logger.Info("ReservationEvents: consumer stopped")
	}()

	c.logger.Info("ReservationEvents: consumer started, workers=%d", c.workers)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.dispatch(d, queues)
		}
	}
}

// dispatch декодирует сообщение и передает его воркеру раздела
func (c *Consumer) dispatch(d amqp.Delivery, queues []chan job) {
	if d.RoutingKey != events.RKReservationCreated {
		c.logger.Warn("ReservationEvents: skip unknown key=%s", d.RoutingKey)
		_ = d.Ack(false)
		return
	}

	ev, err := events.MustUnmarshal[events.ReservationCreated](d.Body)
	if err != nil {
		c.logger.Error("ReservationEvents: %v -> dead letter", err)
		_ = d.Nack(false, false)
		return
	}

	queues[workerIndex(ev.PartitionKey(), len(queues))] <- job{delivery: d, event: ev}
}

// handle обрабатывает событие и возвращает false, если сообщение ушло на повтор
func (c *Consumer) handle(ctx context.Context, j job, failures int) bool {
	// Принятое сообщение дорабатывается и при остановке сервиса
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
	defer cancel()

	resp, err := c.validator.Execute(hctx, j.event.ToRequest())
	switch {
	case err == nil:
		c.logger.Info("ReservationEvents: event=%s reservation=%s outcome=%s",
			resp.EventID, resp.Key, resp.Outcome)
		_ = j.delivery.Ack(false)
		return true
	case errors.Is(err, validate_reservation.ErrInvalidInput):
		c.logger.Error("ReservationEvents: invalid event %s: %v -> dead letter", j.event.EventID, err)
		_ = j.delivery.Nack(false, false)
		return true
	default:
		// Бронирование осталось active: сообщение должно прийти снова
		delay := c.backoff(failures)
		c.logger.Error("ReservationEvents: event %s failed: %v -> requeue in %s", j.event.EventID, err, delay)
		wait(ctx, delay)
		_ = j.delivery.Nack(false, true)
		return false
	}
}

// backoff задержка перед повтором после failures неудач подряд
func (c *Consumer) backoff(failures int) time.Duration {
	delay := c.baseDelay
	for i := 0; i < failures && delay < c.maxDelay; i++ {
		delay *= 2
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

// wait прерывается остановкой сервиса, чтобы сообщение сразу вернулось в очередь
func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func workerIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
