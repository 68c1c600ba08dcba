package sweep_reservations

import "errors"

var (
	// ErrInvalidPolicy возвращается, если политика хранения может задеть активные бронирования
	ErrInvalidPolicy = errors.New("sweep_reservations: invalid retention policy")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("sweep_reservations: internal error")
)
