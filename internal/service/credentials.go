package service

import (
	"context"
	"errors"
	"sync"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"gorm.io/gorm"
)

type NewUser struct {
	Email       string
	Username    string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber *string
}

// CredentialStore owns user records and their password hashes.
type CredentialStore struct {
	users  repository.UserRepository
	hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialStore(users repository.UserRepository, hasher PasswordHasher) *CredentialStore {
	return &CredentialStore{users: users, hasher: hasher}
}

func (c *CredentialStore) Create(ctx context.Context, input NewUser) (*entity.User, error) {
	email := utils.NormalizeEmail(input.Email)
	existing, err := c.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := c.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Username:     input.Username,
		PasswordHash: hash,
		Role:         entity.UserRoleUser,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		IsActive:     true,
	}
	if err := c.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns ErrInvalidCredentials both for an unknown email and a
// wrong password, and spends a hash comparison in either case.
func (c *CredentialStore) Authenticate(ctx context.Context, email string, password string) (*entity.User, error) {
	user, err := c.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = c.hasher.Verify(c.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if !c.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (c *CredentialStore) CheckPassword(user *entity.User, password string) bool {
	return c.hasher.Verify(user.PasswordHash, password)
}

func (c *CredentialStore) SetPassword(ctx context.Context, user *entity.User, password string) error {
	hash, err := c.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := c.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (c *CredentialStore) UpdateProfile(ctx context.Context, user *entity.User, update ProfileUpdate) (*entity.User, error) {
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = update.PhoneNumber
	}
	if update.Address != nil {
		user.Address = update.Address
	}
	if update.City != nil {
		user.City = update.City
	}
	if update.State != nil {
		user.State = update.State
	}
	if update.Country != nil {
		user.Country = update.Country
	}
	if update.PostalCode != nil {
		user.PostalCode = update.PostalCode
	}
	if update.DateOfBirth != nil {
		user.DateOfBirth = update.DateOfBirth
	}
	if err := c.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *CredentialStore) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	return c.users.FindByID(ctx, id)
}

func (c *CredentialStore) dummy() string {
	c.dummyOnce.Do(func() {
		c.dummyHash, _ = c.hasher.Hash("dummy-password-for-timing")
	})
	return c.dummyHash
}
