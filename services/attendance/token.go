package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Token is the short-lived shared secret students present to check in to a
// course session.
type Token struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Value       string    `json:"token"`
	GeneratedAt time.Time `json:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsActive    bool      `json:"is_active"`
}

// Expired reports whether the token's expiry has passed. Expiry is a
// derived property evaluated on every read; the stored active flag is
// never trusted on its own.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
