package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "dial", "read", "subscribe")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ValidationError rejects bad input before it reaches the simulator (never retriable)
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "invalid order [" + e.Field + "]: " + e.Err.Error()
}

func (e *ValidationError) IsRetriable() bool {
	return false
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error for a single field
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

var (
	// ErrConnectionFailed is returned when websocket connection fails. It's usually retriable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidOrder is returned when a simulated order fails validation. Not retriable.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrUnknownVenue is returned when no adapter exists for a venue name
	ErrUnknownVenue = errors.New("unknown venue")

	// ErrNoSnapshot is returned when a simulation is requested before any book arrived
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrBookTooDeep is returned when a snapshot carries more than MaxDepth levels per side
	ErrBookTooDeep = errors.New("book deeper than max depth")

	// ErrBookUnsorted is returned when a side violates its price ordering
	ErrBookUnsorted = errors.New("book side out of order")

	// ErrNotSynthetic is returned when a live retry is requested outside synthetic fallback
	ErrNotSynthetic = errors.New("not in synthetic fallback")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
