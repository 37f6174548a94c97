package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type pendingCheckinModel struct {
	ID              int64             `gorm:"type:bigserial;primaryKey"`
	StudentCode     string            `gorm:"type:text;not null;index"`
	CourseID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Token           string            `gorm:"type:text;not null"`
	Latitude        *float64          `gorm:"type:double precision"`
	Longitude       *float64          `gorm:"type:double precision"`
	ClientTimestamp time.Time         `gorm:"type:timestamptz;not null"`
	DeviceID        string            `gorm:"type:text;not null;default:''"`
	ClientMeta      datatypes.JSONMap `gorm:"type:jsonb"`
	Synced          bool              `gorm:"type:boolean;not null;default:false;index"`
	SyncedAt        *time.Time        `gorm:"type:timestamptz"`
	CreatedAt       time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (pendingCheckinModel) TableName() string { return "pending_checkins" }

func (m pendingCheckinModel) toPendingCheckIn() PendingCheckIn {
	return PendingCheckIn{
		ID:              m.ID,
		StudentCode:     m.StudentCode,
		CourseID:        m.CourseID,
		Token:           m.Token,
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		ClientTimestamp: m.ClientTimestamp,
		DeviceID:        m.DeviceID,
		Meta:            map[string]any(m.ClientMeta),
		Synced:          m.Synced,
		SyncedAt:        m.SyncedAt,
		CreatedAt:       m.CreatedAt,
	}
}
