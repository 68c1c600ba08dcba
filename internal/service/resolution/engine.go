package resolution

import "github.com/m04kA/SMC-ReservationValidator/internal/domain"

// Resolve решает судьбу бронирования по результату поиска конфликта
//
// Уже не активное или уже проверенное бронирование не меняется (NoOp):
// повторная доставка события не должна переписывать причину или статус.
func Resolve(candidate *domain.Reservation, conflict *domain.Reservation) domain.Verdict {
	if !candidate.IsActive() {
		return domain.Verdict{Status: candidate.Status, Reason: candidate.InvalidReason, NoOp: true}
	}
	if candidate.IsValidated() {
		return domain.Verdict{Status: candidate.Status, NoOp: true}
	}

	if conflict != nil {
		return domain.Invalidate(domain.ReasonSlotUnavailable)
	}
	return domain.Keep()
}

// Fail вердикт для бронирования, проверку которого не удалось завершить
func Fail() domain.Verdict {
	return domain.Invalidate(domain.ReasonValidationError)
}
