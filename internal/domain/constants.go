package domain

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// MinutesPerDay upper bound of a reservation interval end
const MinutesPerDay = 24 * 60

// Reasons recorded on invalidated reservations
const (
	ReasonSlotUnavailable = "Time slot no longer available"
	ReasonValidationError = "Validation error"
)

// ResolutionMode how the scan and the verdict write are isolated from concurrent validations
type ResolutionMode string

const (
	// ModeSnapshot scans and writes without a transaction
	ModeSnapshot ResolutionMode = "snapshot"
	// ModeSerializable scans and writes inside one serializable transaction
	ModeSerializable ResolutionMode = "serializable"
)

// OrderingPolicy decides which of two overlapping active reservations yields
type OrderingPolicy string

const (
	// PolicyLastValidated invalidates the candidate on any overlapping active sibling
	PolicyLastValidated OrderingPolicy = "last_validated"
	// PolicyFirstCreated invalidates the candidate only when an overlapping sibling
	// was created earlier or has already survived validation
	PolicyFirstCreated OrderingPolicy = "first_created"
)

// Retention defaults
const (
	DefaultRetentionDays      = 30
	DefaultRetentionBatchSize = 500
)
