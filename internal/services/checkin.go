package services

import (
	"fmt"
	"log"
	"time"

	"eventflow/internal/models"
	"eventflow/internal/repositories"
)

// CheckInService applies the check-in state transitions. Per ticket the
// self-service path only ever moves Registered -> CheckedIn; the staff
// toggle may move both directions.
type CheckInService struct {
	attendees AttendeeStore
	policy    PolicyProvider
	tokens    TokenIssuer
	notifier  Notifier
}

// NewCheckInService creates a new check-in service
func NewCheckInService(attendees AttendeeStore, policy PolicyProvider, tokens TokenIssuer, notifier Notifier) *CheckInService {
	return &CheckInService{
		attendees: attendees,
		policy:    policy,
		tokens:    tokens,
		notifier:  notifier,
	}
}

// CheckInByEmail checks in every eligible ticket registered under the email.
//
// The outcome is one of the terminal business statuses; storage failures
// come back as an error, with no partial-success signaling. The caller must
// treat a failed batch as unconfirmed and simply retry: a retry re-runs the
// already-checked-in evaluation and is idempotent.
func (s *CheckInService) CheckInByEmail(email string) (*models.CheckInResult, error) {
	normalized := models.NormalizeEmail(email)

	policy, err := s.policy.ActiveTicketTypes()
	if err != nil {
		return nil, err
	}

	tickets, err := s.attendees.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}

	if len(tickets) == 0 {
		return &models.CheckInResult{Status: models.CheckInNoRegistration}, nil
	}

	eligible := filterEligible(tickets, policy)
	if len(eligible) == 0 {
		return &models.CheckInResult{Status: models.CheckInNoValidTicket}, nil
	}

	if allCheckedIn(eligible) {
		// Idempotent re-entry: no re-stamp, current data (including swag
		// state) returned as-is.
		return s.buildResult(models.CheckInAlreadyDone, eligible), nil
	}

	// One shared timestamp for the whole batch. Tickets a racing call
	// already flipped are skipped by the conditional update and keep
	// their original check-in time.
	now := time.Now()
	if _, err := s.attendees.CheckInByEmail(normalized, policy.ActiveTypes, now); err != nil {
		return nil, err
	}

	refreshed, err := s.attendees.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	eligible = filterEligible(refreshed, policy)

	result := s.buildResult(models.CheckInCompleted, eligible)

	if len(eligible) > 0 {
		first := eligible[0]
		ev := NewChangeEvent(ChangeCheckIn, first.ID, normalized, first.FullName(), result.CheckedInTypes)
		if err := s.notifier.Publish(ev); err != nil {
			log.Printf("Failed to publish check-in event for %s: %v", normalized, err)
		}
	}

	return result, nil
}

// SetCheckedIn is the staff escape hatch: toggle one ticket's check-in state
// directly, without policy checks. check_in_time is stamped when checking in
// and cleared when reverting.
func (s *CheckInService) SetCheckedIn(id string, checkedIn bool) (*models.Attendee, error) {
	var at *time.Time
	if checkedIn {
		now := time.Now()
		at = &now
	}

	if err := s.attendees.SetCheckedIn(id, checkedIn, at); err != nil {
		return nil, err
	}

	attendee, err := s.attendees.GetByID(id)
	if err != nil {
		return nil, err
	}

	kind := ChangeEdit
	if checkedIn {
		kind = ChangeCheckIn
	}
	ev := NewChangeEvent(kind, attendee.ID, models.NormalizeEmail(attendee.Email), attendee.FullName(), []string{attendee.TicketType})
	if err := s.notifier.Publish(ev); err != nil {
		log.Printf("Failed to publish staff toggle event for %s: %v", id, err)
	}

	return attendee, nil
}

// UpdateAttendee applies a staff edit to descriptive fields and announces it
// on the feed as a cosmetic change.
func (s *CheckInService) UpdateAttendee(id string, req *models.AttendeeUpdateRequest) (*models.Attendee, error) {
	attendee, err := s.attendees.GetByID(id)
	if err != nil {
		return nil, err
	}

	req.Apply(attendee)

	if err := s.attendees.Update(attendee); err != nil {
		return nil, err
	}

	ev := NewChangeEvent(ChangeEdit, attendee.ID, models.NormalizeEmail(attendee.Email), attendee.FullName(), nil)
	if err := s.notifier.Publish(ev); err != nil {
		log.Printf("Failed to publish edit event for %s: %v", id, err)
	}

	return attendee, nil
}

func (s *CheckInService) buildResult(status models.CheckInStatus, eligible []*models.Attendee) *models.CheckInResult {
	result := &models.CheckInResult{
		Status:      status,
		Tickets:     eligible,
		ClaimTokens: make(map[string]string),
	}

	for _, t := range eligible {
		if t.CheckedIn {
			result.CheckedInTypes = append(result.CheckedInTypes, t.TicketType)
		}
		// A fresh token per view is fine: tokens are derived, not
		// persisted, and claiming is guarded by the ticket record.
		if token, ok := s.tokens.TokenFor(t); ok {
			result.ClaimTokens[t.ID] = token
		}
	}
	result.CheckedInTypes = models.NormalizeTypes(result.CheckedInTypes)

	return result
}

func filterEligible(tickets []*models.Attendee, policy *models.TicketPolicy) []*models.Attendee {
	var eligible []*models.Attendee
	for _, t := range tickets {
		if policy.Allows(t.TicketType) {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

func allCheckedIn(tickets []*models.Attendee) bool {
	for _, t := range tickets {
		if !t.CheckedIn {
			return false
		}
	}
	return true
}

// GetAttendee loads one ticket record.
func (s *CheckInService) GetAttendee(id string) (*models.Attendee, error) {
	return s.attendees.GetByID(id)
}

// Search lists attendees for the admin panel.
func (s *CheckInService) Search(filters repositories.AttendeeSearchFilters) ([]*models.Attendee, int, error) {
	return s.attendees.Search(filters)
}

// Stats returns the attendance aggregation for the admin dashboard.
func (s *CheckInService) Stats() (*models.AttendanceStats, error) {
	stats, err := s.attendees.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance stats: %w", err)
	}
	return stats, nil
}
