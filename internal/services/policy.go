package services

import (
	"errors"
	"fmt"

	"eventflow/internal/models"
)

// PolicyService resolves the ticket-type set accepted for check-in today.
type PolicyService struct {
	policies  PolicyStore
	attendees AttendeeStore
}

// NewPolicyService creates a new policy service
func NewPolicyService(policies PolicyStore, attendees AttendeeStore) *PolicyService {
	return &PolicyService{
		policies:  policies,
		attendees: attendees,
	}
}

// ActiveTicketTypes returns the configured policy. When none was ever saved
// it falls back to the distinct ticket types observed across all attendees,
// recomputed on every read until staff explicitly configure a set.
func (s *PolicyService) ActiveTicketTypes() (*models.TicketPolicy, error) {
	policy, err := s.policies.Get()
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, models.ErrPolicyNotFound) {
		return nil, fmt.Errorf("failed to load ticket policy: %w", err)
	}

	types, err := s.attendees.DistinctTicketTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to derive default ticket policy: %w", err)
	}

	return &models.TicketPolicy{
		ActiveTypes: models.NormalizeTypes(types),
		Configured:  false,
	}, nil
}

// SetActiveTicketTypes replaces the configured set wholesale. Callers toggle
// individual types against the current set before saving; there is no
// partial-merge semantics here.
func (s *PolicyService) SetActiveTicketTypes(activeTypes []string) (*models.TicketPolicy, error) {
	policy, err := s.policies.Set(activeTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to save ticket policy: %w", err)
	}
	return policy, nil
}
