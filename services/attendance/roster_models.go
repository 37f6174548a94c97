package attendance

import (
	"time"

	"github.com/google/uuid"
)

type lecturerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffID   string    `gorm:"type:text;uniqueIndex;not null"`
	Name      string    `gorm:"type:text;not null"`
	Latitude  *float64  `gorm:"type:double precision"`
	Longitude *float64  `gorm:"type:double precision"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (lecturerModel) TableName() string { return "lecturers" }

func (m lecturerModel) toLecturer() Lecturer {
	return Lecturer{
		ID:        m.ID,
		StaffID:   m.StaffID,
		Name:      m.Name,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
	}
}

type studentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:text;uniqueIndex;not null"`
	Name      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (studentModel) TableName() string { return "students" }

func (m studentModel) toStudent() Student {
	return Student{ID: m.ID, Code: m.Code, Name: m.Name}
}

type courseModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code         string     `gorm:"type:text;uniqueIndex;not null"`
	Name         string     `gorm:"type:text;not null"`
	LecturerID   *uuid.UUID `gorm:"type:uuid;index"`
	IsActive     bool       `gorm:"type:boolean;not null;default:false"`
	Latitude     *float64   `gorm:"type:double precision"`
	Longitude    *float64   `gorm:"type:double precision"`
	RadiusMeters float64    `gorm:"type:double precision;not null;default:100"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (courseModel) TableName() string { return "courses" }

func (m courseModel) toCourse() Course {
	c := Course{
		ID:       m.ID,
		Code:     m.Code,
		Name:     m.Name,
		IsActive: m.IsActive,
		Fence: Geofence{
			Lat:          m.Latitude,
			Lon:          m.Longitude,
			RadiusMeters: m.RadiusMeters,
		},
	}
	if m.LecturerID != nil {
		c.LecturerID = *m.LecturerID
	}
	return c
}

type enrollmentModel struct {
	ID         int64     `gorm:"type:bigserial;primaryKey"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null"`
	EnrolledAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (enrollmentModel) TableName() string { return "enrollments" }
