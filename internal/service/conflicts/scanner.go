package conflicts

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// Scanner ищет пересечение бронирования с другими активными бронированиями того же корта и даты
type Scanner struct {
	repo   ReservationRepository
	policy domain.OrderingPolicy
	logger Logger
}

// NewScanner создает новый сканер конфликтов
func NewScanner(repo ReservationRepository, policy domain.OrderingPolicy, logger Logger) *Scanner {
	return &Scanner{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

// Scan загружает активные бронирования раздела и возвращает первое,
// которому кандидат должен уступить слот, или nil
// Ошибка запроса возвращается вызывающему, а не трактуется как отсутствие конфликта
func (s *Scanner) Scan(ctx context.Context, candidate *domain.Reservation) (*domain.Reservation, error) {
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	siblings, err := s.repo.ListActive(ctx, candidate.Partition())
	if err != nil {
		return nil, fmt.Errorf("%w: Scan - %s: %w", ErrListSiblings, candidate.Key, err)
	}

	conflict, found := findConflict(candidate, siblings, s.policy, func(sibling *domain.Reservation, err error) {
		s.logger.Warn("Scan: skip malformed sibling %s: %v", sibling.Key, err)
	})
	if !found {
		return nil, nil
	}
	return conflict, nil
}

// FindConflict возвращает первое бронирование из siblings (в порядке хранилища),
// которое пересекается с candidate и которому candidate должен уступить
//
// Сам candidate (по идентификатору), неактивные и некорректные записи пропускаются.
// При PolicyLastValidated уступать нужно любому пересекающемуся активному бронированию.
// При PolicyFirstCreated только созданному раньше или уже прошедшему проверку
func FindConflict(candidate *domain.Reservation, siblings []*domain.Reservation, policy domain.OrderingPolicy) (*domain.Reservation, bool) {
	return findConflict(candidate, siblings, policy, nil)
}

// findConflict сообщает о пропущенных некорректных записях через onMalformed (может быть nil)
func findConflict(
	candidate *domain.Reservation,
	siblings []*domain.Reservation,
	policy domain.OrderingPolicy,
	onMalformed func(sibling *domain.Reservation, err error),
) (*domain.Reservation, bool) {
	target, err := candidate.Interval()
	if err != nil {
		return nil, false
	}

	for _, sibling := range siblings {
		if sibling.ReservationID == candidate.ReservationID {
			continue
		}
		if !sibling.IsActive() {
			continue
		}

		// Некорректные соседние записи не могут занимать слот
		interval, err := sibling.Interval()
		if err != nil {
			if onMalformed != nil {
				onMalformed(sibling, err)
			}
			continue
		}

		if !target.Overlaps(interval) {
			continue
		}

		if policy == domain.PolicyFirstCreated && !sibling.IsValidated() && !sibling.CreatedBefore(candidate) {
			continue
		}

		return sibling, true
	}

	return nil, false
}
