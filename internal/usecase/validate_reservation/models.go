package validate_reservation

import "github.com/m04kA/SMC-ReservationValidator/internal/domain"

// Outcome итог обработки события
type Outcome string

const (
	OutcomeKept         Outcome = "kept"          // бронирование осталось активным
	OutcomeInvalidated  Outcome = "invalidated"   // найдено пересечение
	OutcomeSkipped      Outcome = "skipped"       // повторная доставка или запись уже разрешена
	OutcomeFailedClosed Outcome = "failed_closed" // проверка не удалась, бронирование помечено invalid
	OutcomeInterrupted  Outcome = "interrupted"   // вызывающий отменил проверку, вердикт не записан
)

// Snapshot данные бронирования из события (могут отсутствовать)
type Snapshot struct {
	Date            string
	StartTime       string
	DurationMinutes int
	Status          string
}

// Request модель запроса на проверку созданного бронирования
type Request struct {
	EventID string     // ID события для корреляции логов (генерируется, если пуст)
	Key     domain.Key // club / resource / reservation
	Payload *Snapshot  // Данные из события (опционально)
}

// Response модель ответа с результатом проверки
type Response struct {
	EventID      string
	Key          domain.Key
	Status       domain.ReservationStatus
	Reason       *string
	Outcome      Outcome
	ConflictWith *domain.Key // с каким бронированием найдено пересечение
}
