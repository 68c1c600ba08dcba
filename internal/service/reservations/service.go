package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
	"github.com/m04kA/SMC-ReservationValidator/internal/service/reservations/models"
)

// Service сервис чтения бронирований и результатов их проверки
type Service struct {
	repo      ReservationRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(repo ReservationRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

// Get получает бронирование по ключу
func (s *Service) Get(ctx context.Context, key domain.Key) (*models.ReservationResponse, error) {
	if key.ClubID == "" || key.ResourceID == "" || key.ReservationID == "" {
		return nil, fmt.Errorf("%w: clubId, resourceId and reservationId are required", ErrInvalidInput)
	}

	s.logger.Info("Get: fetching reservation %s", key)

	reservation, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			s.logger.Warn("Get: reservation %s not found", key)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("Get: repository error for reservation %s: %v", key, err)
		return nil, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainReservation(reservation), nil
}

// ListActive получает активные бронирования корта на дату в порядке создания
// Список читается в транзакции только для чтения, как его видит сканер конфликтов
func (s *Service) ListActive(ctx context.Context, partition domain.Partition) (*models.ReservationListResponse, error) {
	if partition.ClubID == "" || partition.ResourceID == "" {
		return nil, fmt.Errorf("%w: clubId and resourceId are required", ErrInvalidInput)
	}
	if _, err := time.Parse(domain.DateFormat, partition.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, partition.Date)
	}

	var list []*domain.Reservation
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = s.repo.ListActive(txCtx, partition)
		return err
	})
	if err != nil {
		s.logger.Error("ListActive: repository error for %s/%s on %s: %v",
			partition.ClubID, partition.ResourceID, partition.Date, err)
		return nil, fmt.Errorf("%w: ListActive - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListActive: %d active reservations for %s/%s on %s",
		len(list), partition.ClubID, partition.ResourceID, partition.Date)
	return models.FromDomainReservations(list), nil
}
