package validate_reservation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных события
	ErrInvalidInput = errors.New("validate_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках проверки
	ErrInternal = errors.New("validate_reservation: internal error")

	// ErrFallbackFailed возвращается, если проверка не завершилась
	// и бронирование не удалось пометить как invalid
	ErrFallbackFailed = errors.New("validate_reservation: fail-closed fallback failed")

	// ErrInterrupted возвращается, если вызывающий отменил проверку до записи вердикта
	// Бронирование остается active, событие нужно доставить повторно
	ErrInterrupted = errors.New("validate_reservation: validation interrupted")
)
