package models

import (
	"errors"
	"strings"
	"time"
)

// Staff represents an operator account for the admin panel.
type Staff struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Validate validates the staff account data.
func (s *Staff) Validate() error {
	if strings.TrimSpace(s.Username) == "" {
		return errors.New("username is required")
	}

	if len(s.Username) > 100 {
		return errors.New("username must be less than 100 characters")
	}

	if s.PasswordHash == "" {
		return errors.New("password hash is required")
	}

	return nil
}
