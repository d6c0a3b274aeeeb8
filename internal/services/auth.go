package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventflow/internal/models"
	"eventflow/internal/utils"
)

// AuthService authenticates staff operators against stored argon2id hashes.
// There is deliberately no attendee authentication: attendees identify by
// email only, and the claim token is its own credential.
type AuthService struct {
	staff StaffStore
}

// NewAuthService creates a new auth service
func NewAuthService(staff StaffStore) *AuthService {
	return &AuthService{staff: staff}
}

// Login verifies the credentials and returns the staff account. A wrong
// username and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (*models.Staff, error) {
	staff, err := s.staff.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrStaffNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, staff.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, models.ErrUnauthorized
	}

	return staff, nil
}

// GetByID loads a staff account for session validation.
func (s *AuthService) GetByID(id string) (*models.Staff, error) {
	return s.staff.GetByID(id)
}

// CreateStaff registers a new staff account with a hashed password.
func (s *AuthService) CreateStaff(username, password string) (*models.Staff, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", models.ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", models.ErrInvalidInput)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := &models.Staff{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
	}

	if err := s.staff.Create(staff); err != nil {
		return nil, err
	}

	return staff, nil
}
