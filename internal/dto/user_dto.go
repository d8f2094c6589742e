package dto

import (
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID              uint64     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	Role            string     `json:"role"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	PhoneNumber     *string    `json:"phone_number,omitempty"`
	Address         *string    `json:"address,omitempty"`
	City            *string    `json:"city,omitempty"`
	State           *string    `json:"state,omitempty"`
	Country         *string    `json:"country,omitempty"`
	PostalCode      *string    `json:"postal_code,omitempty"`
	DateOfBirth     *string    `json:"date_of_birth,omitempty"`
	IsEmailVerified bool       `json:"is_email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	response := UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		Role:            string(user.Role),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		PhoneNumber:     user.PhoneNumber,
		Address:         user.Address,
		City:            user.City,
		State:           user.State,
		Country:         user.Country,
		PostalCode:      user.PostalCode,
		IsEmailVerified: user.IsEmailVerified,
		EmailVerifiedAt: user.EmailVerifiedAt,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	if user.DateOfBirth != nil {
		dob := user.DateOfBirth.Format(time.DateOnly)
		response.DateOfBirth = &dob
	}
	return response
}

func UserResponsesFromEntities(users []entity.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserResponseFromEntity(&users[i]))
	}
	return responses
}

type SessionResponse struct {
	ID             uuid.UUID `json:"id"`
	UserAgent      string    `json:"user_agent"`
	IPAddress      string    `json:"ip_address"`
	IsActive       bool      `json:"is_active"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

func SessionListFromEntities(sessions []entity.Session) SessionListResponse {
	list := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		list.Sessions = append(list.Sessions, SessionResponse{
			ID:             s.ID,
			UserAgent:      s.UserAgent,
			IPAddress:      s.IPAddress,
			IsActive:       s.IsActive,
			LastActivityAt: s.LastActivityAt,
			CreatedAt:      s.CreatedAt,
		})
	}
	return list
}
