package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParsePGErrorCode extracts the SQLSTATE code from a pgx error, e.g.
// 23505 for unique_violation.
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return "unknown"
}

func IsUniqueViolation(err error) bool {
	return ParsePGErrorCode(err) == "23505"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Auth / users
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Conversations
var (
	ErrContactNotFound         = errors.New("contact not found or access denied")
	ErrEstimateNotFound        = errors.New("estimate not found or access denied")
	ErrEstimateContactMismatch = errors.New("estimate does not belong to this contact")

	// ErrForwardingFailed is the partial-success case: the user's message is
	// persisted but the AI automation system could not be reached.
	ErrForwardingFailed = errors.New("message saved, but failed to trigger AI response")
)

// Notifications
var (
	ErrUnknownEventType = errors.New("unknown notification event type")
)
