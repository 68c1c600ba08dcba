package reservation

import "errors"

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")

	// ErrInvalidVerdict возвращается при попытке записать вердикт с неизвестным статусом
	ErrInvalidVerdict = errors.New("reservation.repository: invalid verdict")

	// ErrMigrate возвращается при ошибке создания схемы
	ErrMigrate = errors.New("reservation.repository: migration failed")
)
