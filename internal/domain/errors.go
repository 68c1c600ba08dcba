package domain

import "errors"

var (
	// ErrReservationNotFound возвращается хранилищем, когда бронирование не найдено
	ErrReservationNotFound = errors.New("domain: reservation not found")

	// ErrAlreadyResolved возвращается хранилищем, когда вердикт не записан,
	// потому что бронирование уже не активно или уже прошло проверку
	ErrAlreadyResolved = errors.New("domain: reservation already resolved")

	// ErrInvalidReservationData возвращается при некорректных полях бронирования
	ErrInvalidReservationData = errors.New("domain: invalid reservation data")
)
