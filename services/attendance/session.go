package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Session is one course's attendance window for a single calendar date.
// Exactly one session exists per (course, day); a closed session is
// terminal and the next calendar day starts a fresh one.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	CourseID    uuid.UUID  `json:"course_id"`
	Day         time.Time  `json:"day"`
	LecturerLat *float64   `json:"lecturer_latitude"`
	LecturerLon *float64   `json:"lecturer_longitude"`
	IsActive    bool       `json:"is_active"`
	OpenedAt    time.Time  `json:"opened_at"`
	EndedAt     *time.Time `json:"ended_at"`
}

// IsOpen reports whether the session still accepts check-ins at the given
// instant.
func (s Session) IsOpen(now time.Time) bool {
	return s.IsActive && (s.EndedAt == nil || s.EndedAt.After(now))
}

// DayOf truncates an instant to its UTC calendar date, the granularity
// sessions are keyed on.
func DayOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
