package documents

import "errors"

var (
	// ErrConnect возвращается при ошибке инициализации клиента Firestore
	ErrConnect = errors.New("documents.repository: failed to connect")

	// ErrQuery возвращается при ошибке чтения документов
	ErrQuery = errors.New("documents.repository: failed to query documents")

	// ErrWrite возвращается при ошибке записи документов
	ErrWrite = errors.New("documents.repository: failed to write documents")

	// ErrDecode возвращается, если документ не удалось разобрать
	ErrDecode = errors.New("documents.repository: failed to decode document")

	// ErrInvalidVerdict возвращается при попытке записать вердикт с неизвестным статусом
	ErrInvalidVerdict = errors.New("documents.repository: invalid verdict")
)
