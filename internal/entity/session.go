package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Session struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uint64    `gorm:"not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	UserAgent string `gorm:"type:text;not null"`
	IPAddress string `gorm:"type:varchar(45);not null"`

	IsActive       bool      `gorm:"default:true;not null"`
	LastActivityAt time.Time `gorm:"not null;index"`
	RevokedAt      *time.Time

	CreatedAt time.Time
}

func (s *Session) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
