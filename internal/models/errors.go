package models

import "errors"

// Common errors used throughout the application
var (
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrStaffNotFound    = errors.New("staff account not found")
	ErrPolicyNotFound   = errors.New("ticket policy not configured")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrUnauthorized     = errors.New("unauthorized access")
)
