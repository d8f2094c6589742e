package service

import (
	"time"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Phone     *string
	IPAddress string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginMFAInput struct {
	MFAToken  string
	Code      string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	UserID            uint64
	AccessToken       string
	ExpiresIn         int64
	RefreshToken      string
	RefreshExpiresIn  int64
	SessionID         *uuid.UUID
	MFARequired       bool
	MFAToken          string
	MFATokenExpiresIn int64
}

// ProfileUpdate carries a partial profile change. Nil fields are left as they are.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
	City        *string
	State       *string
	Country     *string
	PostalCode  *string
	DateOfBirth *time.Time
}
