package attendance

import (
	"time"

	"github.com/google/uuid"
)

// DedupWindow bounds how far apart two client timestamps may be while
// still counting as the same offline check-in.
const DedupWindow = time.Minute

// PendingCheckIn is an offline check-in the server could not resolve at
// sync time, parked for later replay. Records are never deleted; replay
// marks them synced.
type PendingCheckIn struct {
	ID              int64          `json:"id"`
	StudentCode     string         `json:"student_id"`
	CourseID        uuid.UUID      `json:"course_id"`
	Token           string         `json:"token"`
	Latitude        *float64       `json:"latitude"`
	Longitude       *float64       `json:"longitude"`
	ClientTimestamp time.Time      `json:"timestamp"`
	DeviceID        string         `json:"device_id"`
	Meta            map[string]any `json:"meta,omitempty"`
	Synced          bool           `json:"synced"`
	SyncedAt        *time.Time     `json:"synced_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
