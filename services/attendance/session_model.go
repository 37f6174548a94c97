package attendance

import (
	"time"

	"github.com/google/uuid"
)

type sessionModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourseID    uuid.UUID  `gorm:"type:uuid;not null"`
	Day         time.Time  `gorm:"type:date;not null"`
	LecturerLat *float64   `gorm:"type:double precision"`
	LecturerLon *float64   `gorm:"type:double precision"`
	IsActive    bool       `gorm:"type:boolean;not null;default:true"`
	OpenedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	EndedAt     *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (sessionModel) TableName() string { return "sessions" }

func (m sessionModel) toSession() Session {
	return Session{
		ID:          m.ID,
		CourseID:    m.CourseID,
		Day:         m.Day,
		LecturerLat: m.LecturerLat,
		LecturerLon: m.LecturerLon,
		IsActive:    m.IsActive,
		OpenedAt:    m.OpenedAt,
		EndedAt:     m.EndedAt,
	}
}
