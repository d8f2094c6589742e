package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SecurityAction string

const (
	Registered             SecurityAction = "register"
	LoginSuccess           SecurityAction = "login_success"
	LoginFailed            SecurityAction = "login_failed"
	Logout                 SecurityAction = "logout"
	EmailVerified          SecurityAction = "email_verified"
	PasswordResetRequested SecurityAction = "password_reset_requested"
	Reset                  SecurityAction = "password_reset"
	PasswordChanged        SecurityAction = "password_changed"
	SessionRevoked         SecurityAction = "session_revoked"
	MFAFailed              SecurityAction = "mfa_failed"
	MFAEnabled             SecurityAction = "mfa_enabled"
	MFADisabled            SecurityAction = "mfa_disabled"
)

type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID *uint64 `gorm:"index"`
	User   *User   `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(40);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}

func (l *SecurityLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
