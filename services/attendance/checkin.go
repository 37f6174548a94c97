package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// TokenDirectory resolves presented token values. *TokenService satisfies
// it.
type TokenDirectory interface {
	Resolve(ctx context.Context, value string) (Token, error)
}

// Roster looks up courses, students and enrollments. *RosterStore
// satisfies it.
type Roster interface {
	CourseByID(ctx context.Context, id uuid.UUID) (Course, error)
	StudentByCode(ctx context.Context, code string) (Student, error)
	IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
}

// SessionStore is the session surface the check-in path mutates.
// *SessionManager satisfies it.
type SessionStore interface {
	OpenOrGetToday(ctx context.Context, courseID uuid.UUID) (Session, error)
	ActiveForCourse(ctx context.Context, courseID uuid.UUID) (Session, error)
	AddPresence(ctx context.Context, sessionID, studentID uuid.UUID) error
}

// CheckInResult reports a recorded presence. Distance is the computed
// geofence distance in meters, zero when the course has no fence.
type CheckInResult struct {
	SessionID uuid.UUID `json:"session_id"`
	Distance  float64   `json:"distance_meters"`
}

// Processor is the online check-in write path.
type Processor struct {
	tokens   TokenDirectory
	roster   Roster
	sessions SessionStore
}

func NewProcessor(tokens TokenDirectory, roster Roster, sessions SessionStore) (*Processor, error) {
	if tokens == nil || roster == nil || sessions == nil {
		return nil, fmt.Errorf("attendance: processor requires token, roster and session stores")
	}
	return &Processor{tokens: tokens, roster: roster, sessions: sessions}, nil
}

// CheckIn validates a presented token, enrollment and location, then adds
// the student to today's session for the token's course. Validation
// failures come back as *CheckInError; steps before the session write have
// no side effects beyond lazy token expiry.
func (p *Processor) CheckIn(ctx context.Context, studentCode, tokenValue string, lat, lon *float64) (CheckInResult, error) {
	token, err := p.tokens.Resolve(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrTokenExpired) {
			checkinsTotal.WithLabelValues("invalid_token").Inc()
			return CheckInResult{}, checkInFailure(KindInvalidToken, MissingLocationDistance, err)
		}
		return CheckInResult{}, err
	}

	student, err := p.roster.StudentByCode(ctx, studentCode)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			checkinsTotal.WithLabelValues("rejected").Inc()
			return CheckInResult{}, checkInFailure(KindValidation, MissingLocationDistance, err)
		}
		return CheckInResult{}, err
	}

	course, err := p.roster.CourseByID(ctx, token.CourseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			checkinsTotal.WithLabelValues("rejected").Inc()
			return CheckInResult{}, checkInFailure(KindValidation, MissingLocationDistance, err)
		}
		return CheckInResult{}, err
	}

	enrolled, err := p.roster.IsEnrolled(ctx, course.ID, student.ID)
	if err != nil {
		return CheckInResult{}, err
	}
	if !enrolled {
		checkinsTotal.WithLabelValues("not_enrolled").Inc()
		return CheckInResult{}, checkInFailure(KindNotEnrolled, MissingLocationDistance, ErrNotEnrolled)
	}

	ok, distance, err := ValidateLocation(course.Fence, lat, lon, 0)
	if err != nil {
		checkinsTotal.WithLabelValues("rejected").Inc()
		return CheckInResult{}, checkInFailure(KindValidation, MissingLocationDistance, err)
	}
	if !ok {
		if distance == MissingLocationDistance {
			checkinsTotal.WithLabelValues("location_required").Inc()
			return CheckInResult{}, checkInFailure(KindLocationRequired, distance, nil)
		}
		checkinsTotal.WithLabelValues("out_of_range").Inc()
		return CheckInResult{}, checkInFailure(KindOutOfRange, distance, nil)
	}

	session, err := p.sessions.OpenOrGetToday(ctx, course.ID)
	if err != nil {
		return CheckInResult{}, err
	}
	if err := p.sessions.AddPresence(ctx, session.ID, student.ID); err != nil {
		return CheckInResult{}, err
	}

	checkinsTotal.WithLabelValues("ok").Inc()
	return CheckInResult{SessionID: session.ID, Distance: distance}, nil
}
