package conflicts

import "errors"

var (
	// ErrListSiblings возвращается, если не удалось получить активные бронирования раздела
	ErrListSiblings = errors.New("conflicts: failed to list sibling reservations")

	// ErrInvalidCandidate возвращается, если у проверяемого бронирования некорректные поля
	ErrInvalidCandidate = errors.New("conflicts: invalid candidate reservation")
)
