package sales

import (
	"errors"
)

var (
	// ErrFatalConnect is returned when the store cannot be reached at startup.
	ErrFatalConnect = errors.New("connecting to the store failed")

	// ErrEmptyReferenceSet is returned when products, salesmen, or stores is empty.
	ErrEmptyReferenceSet = errors.New("reference set is empty")

	// ErrStoreUnavailable is returned for connection-level failures of the store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConstraintViolation is returned when the store rejects an insert, e.g. for a dangling foreign key.
	ErrConstraintViolation = errors.New("store constraint violation")

	// ErrNotificationTransport is logged by the relay when the notification endpoint cannot be reached
	// or answers with a non-2xx status. It is never returned to callers of Notify.
	ErrNotificationTransport = errors.New("notification transport failed")

	// ErrStoredValuesDiverged is logged when the store returned other values than the synthesized ones.
	ErrStoredValuesDiverged = errors.New("stored values diverged from synthesized values")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNilDatabaseConnection is returned when a nil connection is handed to a store constructor.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is configured.
	ErrEmptyTableName = errors.New("table name must not be empty")
)

// ErrorType classifies an error into a short label usable in logs and metrics.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrEmptyReferenceSet):
		return "empty_reference_set"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrFatalConnect):
		return "connect"
	case errors.Is(err, ErrNotificationTransport):
		return "notification_transport"
	default:
		return "other"
	}
}
