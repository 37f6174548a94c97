package attendance

import (
	"time"

	"github.com/google/uuid"
)

type tokenModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Value       string    `gorm:"type:text;uniqueIndex;not null"`
	GeneratedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	ExpiresAt   time.Time `gorm:"type:timestamptz;not null"`
	IsActive    bool      `gorm:"type:boolean;not null;default:true"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (tokenModel) TableName() string { return "tokens" }

func (m tokenModel) toToken() Token {
	return Token{
		ID:          m.ID,
		CourseID:    m.CourseID,
		Value:       m.Value,
		GeneratedAt: m.GeneratedAt,
		ExpiresAt:   m.ExpiresAt,
		IsActive:    m.IsActive,
	}
}
