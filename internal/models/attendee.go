package models

import (
	"errors"
	"strings"
	"time"
)

// Attendee represents one registration record. A single person may hold
// several attendee rows (one per ticket) under the same email address.
type Attendee struct {
	ID                 string     `json:"id" db:"id"`
	FirstName          string     `json:"first_name" db:"first_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	Email              string     `json:"email" db:"email"`
	TicketType         string     `json:"ticket_type" db:"ticket_type"`
	CheckedIn          bool       `json:"checked_in" db:"checked_in"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty" db:"check_in_time"`
	SwagReceived       bool       `json:"swag_received" db:"swag_received"`
	PurchaseDate       string     `json:"purchase_date,omitempty" db:"purchase_date"`
	Country            string     `json:"country,omitempty" db:"country"`
	SevereAllergy      string     `json:"severe_allergy,omitempty" db:"severe_allergy"`
	AccessibilityNeeds string     `json:"accessibility_needs,omitempty" db:"accessibility_needs"`
	FirstTimeAttending string     `json:"first_time_attending,omitempty" db:"first_time_attending"`
	Notes              string     `json:"notes,omitempty" db:"notes"`
}

// NormalizeEmail canonicalizes an email address for lookups and grouping.
// Two raw strings differing only in case or surrounding whitespace refer
// to the same attendee.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName returns the attendee's display name.
func (a *Attendee) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}

// Validate validates the attendee data.
func (a *Attendee) Validate() error {
	if err := a.validateID(); err != nil {
		return err
	}

	if err := a.validateEmail(); err != nil {
		return err
	}

	if err := a.validateTicketType(); err != nil {
		return err
	}

	return nil
}

func (a *Attendee) validateID() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("attendee id is required")
	}

	if len(a.ID) > 64 {
		return errors.New("attendee id must be less than 64 characters")
	}

	return nil
}

func (a *Attendee) validateEmail() error {
	email := NormalizeEmail(a.Email)
	if email == "" {
		return errors.New("attendee email is required")
	}

	if !strings.Contains(email, "@") {
		return errors.New("attendee email is not a valid address")
	}

	if len(email) > 255 {
		return errors.New("attendee email must be less than 255 characters")
	}

	return nil
}

func (a *Attendee) validateTicketType() error {
	if strings.TrimSpace(a.TicketType) == "" {
		return errors.New("ticket type is required")
	}

	if len(a.TicketType) > 100 {
		return errors.New("ticket type must be less than 100 characters")
	}

	return nil
}

// AttendeeUpdateRequest carries the staff-editable descriptive fields.
// Check-in and swag state are toggled through their own endpoints and are
// deliberately absent here.
type AttendeeUpdateRequest struct {
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	Email              *string `json:"email,omitempty"`
	TicketType         *string `json:"ticket_type,omitempty"`
	Country            *string `json:"country,omitempty"`
	SevereAllergy      *string `json:"severe_allergy,omitempty"`
	AccessibilityNeeds *string `json:"accessibility_needs,omitempty"`
	FirstTimeAttending *string `json:"first_time_attending,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// Apply copies the non-nil fields onto the attendee.
func (req *AttendeeUpdateRequest) Apply(a *Attendee) {
	if req.FirstName != nil {
		a.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		a.LastName = *req.LastName
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.TicketType != nil {
		a.TicketType = *req.TicketType
	}
	if req.Country != nil {
		a.Country = *req.Country
	}
	if req.SevereAllergy != nil {
		a.SevereAllergy = *req.SevereAllergy
	}
	if req.AccessibilityNeeds != nil {
		a.AccessibilityNeeds = *req.AccessibilityNeeds
	}
	if req.FirstTimeAttending != nil {
		a.FirstTimeAttending = *req.FirstTimeAttending
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
}
