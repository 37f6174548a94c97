package attendance

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a validation failure for API consumers.
type Kind string

const (
	KindInvalidToken     Kind = "invalid_token"
	KindNotEnrolled      Kind = "not_enrolled"
	KindOutOfRange       Kind = "out_of_range"
	KindLocationRequired Kind = "location_required"
	KindValidation       Kind = "validation_error"
	KindNotFound         Kind = "not_found"
	KindSyncConflict     Kind = "sync_conflict"
)

var (
	// ErrTokenNotFound covers absent and revoked tokens alike; callers
	// cannot tell the two apart.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired is returned when a token's expiry has passed,
	// regardless of its stored active flag.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenTaken signals a token value collision. The caller picks a
	// new value; issuance is never retried internally.
	ErrTokenTaken = errors.New("token value already in use")

	ErrStudentNotFound = errors.New("student not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrNotEnrolled     = errors.New("student not enrolled in course")
	ErrNoActiveSession = errors.New("no active session for course")

	ErrLecturerLocationUnset = errors.New("lecturer coordinates not set")
)

// CheckInError is a structured validation failure from the check-in path.
// Distance carries the computed geofence distance for out-of-range
// failures and the missing-location sentinel for location-required ones.
type CheckInError struct {
	Kind     Kind
	Distance float64
	Err      error
}

func (e *CheckInError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("check-in rejected (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("check-in rejected (%s)", e.Kind)
}

func (e *CheckInError) Unwrap() error { return e.Err }

func checkInFailure(kind Kind, distance float64, err error) *CheckInError {
	return &CheckInError{Kind: kind, Distance: distance, Err: err}
}

// unresolvable reports whether err means the referenced token, student,
// course, or session does not (yet) exist on the server. Offline records
// hitting such errors are parked as pending rather than rejected.
func unresolvable(err error) bool {
	return errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrNoActiveSession)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
