package entity

import (
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint64   `gorm:"primaryKey;autoIncrement"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string   `gorm:"type:varchar(150);not null"`
	PasswordHash string   `gorm:"type:text;not null"`
	Role         UserRole `gorm:"type:varchar(20);default:'user';not null"`

	FirstName   string     `gorm:"type:varchar(150)"`
	LastName    string     `gorm:"type:varchar(150)"`
	PhoneNumber *string    `gorm:"type:varchar(15)"`
	Address     *string    `gorm:"type:text"`
	City        *string    `gorm:"type:varchar(100)"`
	State       *string    `gorm:"type:varchar(100)"`
	Country     *string    `gorm:"type:varchar(100)"`
	PostalCode  *string    `gorm:"type:varchar(20)"`
	DateOfBirth *time.Time `gorm:"type:date"`

	IsEmailVerified bool `gorm:"default:false;not null"`
	EmailVerifiedAt *time.Time
	IsActive        bool `gorm:"default:true;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions  []Session
	MFASecret *MFASecret
}

// DisplayName is the greeting used in outgoing mail.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
