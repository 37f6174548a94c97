package attendance

import (
	"github.com/google/uuid"
)

// Course is a taught unit students enroll in. The geofence is optional:
// courses without center coordinates accept check-ins from anywhere.
type Course struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	LecturerID uuid.UUID `json:"lecturer_id"`
	IsActive   bool      `json:"is_active"`
	Fence      Geofence  `json:"geofence"`
}

// Student identifies an enrollable person by their registration code.
type Student struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"student_id"`
	Name string    `json:"name"`
}

// Lecturer teaches courses and reports the location sessions are fenced
// around.
type Lecturer struct {
	ID        uuid.UUID `json:"id"`
	StaffID   string    `json:"staff_id"`
	Name      string    `json:"name"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
}
