package dto

import (
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/service"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required"`
	Username  string  `json:"username" validate:"required,max=150"`
	FirstName string  `json:"first_name" validate:"omitempty,max=150"`
	LastName  string  `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone_number" validate:"omitempty,max=15"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginMFARequest struct {
	MFAToken string `json:"mfa_token" validate:"required"`
	Code     string `json:"code" validate:"required,numeric"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken       string     `json:"access_token,omitempty"`
	ExpiresIn         int64      `json:"expires_in,omitempty"`
	RefreshToken      string     `json:"refresh_token,omitempty"`
	RefreshExpiresIn  int64      `json:"refresh_expires_in,omitempty"`
	TokenType         string     `json:"token_type,omitempty"`
	SessionID         *uuid.UUID `json:"session_id,omitempty"`
	MFARequired       bool       `json:"mfa_required,omitempty"`
	MFAToken          string     `json:"mfa_token,omitempty"`
	MFATokenExpiresIn int64      `json:"mfa_token_expires_in,omitempty"`
}

func TokenResponseFromResult(result *service.LoginResult) TokenResponse {
	if result == nil {
		return TokenResponse{}
	}
	if result.MFARequired {
		return TokenResponse{
			MFARequired:       true,
			MFAToken:          result.MFAToken,
			MFATokenExpiresIn: result.MFATokenExpiresIn,
		}
	}
	return TokenResponse{
		AccessToken:      result.AccessToken,
		ExpiresIn:        result.ExpiresIn,
		RefreshToken:     result.RefreshToken,
		RefreshExpiresIn: result.RefreshExpiresIn,
		TokenType:        "bearer",
		SessionID:        result.SessionID,
	}
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// UpdateProfileRequest is a partial update; omitted fields keep their value.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	Address     *string `json:"address"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	State       *string `json:"state" validate:"omitempty,max=100"`
	Country     *string `json:"country" validate:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// ToProfileUpdate assumes the request already passed validation.
func (r UpdateProfileRequest) ToProfileUpdate() service.ProfileUpdate {
	update := service.ProfileUpdate{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
		PostalCode:  r.PostalCode,
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		if dob, err := time.Parse(time.DateOnly, *r.DateOfBirth); err == nil {
			update.DateOfBirth = &dob
		}
	}
	return update
}

type MFAEnableResponse struct {
	OTPAuthURL string `json:"otpauth_url"`
}

type MFAVerifyRequest struct {
	Code string `json:"code" validate:"required,numeric"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
