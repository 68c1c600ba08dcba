package sweep_reservations

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationValidator/internal/domain"
)

// validatePolicy не дает удалить активные бронирования
func validatePolicy(p domain.RetentionPolicy) error {
	if p.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidPolicy, p.Days)
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidPolicy, p.BatchSize)
	}
	if len(p.Statuses) == 0 {
		return fmt.Errorf("%w: no statuses selected", ErrInvalidPolicy)
	}
	for _, s := range p.Statuses {
		if s != domain.StatusCancelled && s != domain.StatusInvalid {
			return fmt.Errorf("%w: status %q cannot be swept", ErrInvalidPolicy, s)
		}
	}
	return nil
}
