package models

// CheckInStatus is the terminal business outcome of a check-in attempt.
// Storage failures are not a status; they surface as errors so callers can
// retry the whole batch (the transition is idempotent).
type CheckInStatus string

const (
	CheckInCompleted      CheckInStatus = "checked_in"
	CheckInAlreadyDone    CheckInStatus = "already_checked_in"
	CheckInNoRegistration CheckInStatus = "no_registration"
	CheckInNoValidTicket  CheckInStatus = "no_valid_ticket_today"
)

// Message returns the single human-readable message for the outcome.
func (s CheckInStatus) Message() string {
	switch s {
	case CheckInCompleted:
		return "Welcome! You are checked in."
	case CheckInAlreadyDone:
		return "You are already checked in."
	case CheckInNoRegistration:
		return "No registration found for this email address."
	case CheckInNoValidTicket:
		return "You have a ticket, but it is not valid for check-in today."
	default:
		return "Check-in failed."
	}
}

// Success reports whether the attendee ends up checked in.
func (s CheckInStatus) Success() bool {
	return s == CheckInCompleted || s == CheckInAlreadyDone
}

// CheckInResult is the outcome of a batch check-in by email.
type CheckInResult struct {
	Status CheckInStatus `json:"status"`

	// Tickets holds the refreshed eligible tickets for the email, present
	// for the CheckInCompleted and CheckInAlreadyDone outcomes.
	Tickets []*Attendee `json:"tickets,omitempty"`

	// CheckedInTypes lists the ticket types activated by this attempt (or
	// already active, on idempotent re-entry).
	CheckedInTypes []string `json:"checked_in_types,omitempty"`

	// ClaimTokens maps ticket id to a freshly minted swag-claim token for
	// every eligible ticket that still qualifies for swag.
	ClaimTokens map[string]string `json:"claim_tokens,omitempty"`
}

// ClaimStatus is the terminal business outcome of a swag-claim attempt.
type ClaimStatus string

const (
	ClaimCompleted      ClaimStatus = "claimed"
	ClaimAlreadyDone    ClaimStatus = "already_claimed"
	ClaimInvalidToken   ClaimStatus = "invalid_token"
	ClaimTicketNotFound ClaimStatus = "ticket_not_found"
	ClaimNotCheckedIn   ClaimStatus = "not_checked_in_yet"
)

// Message returns the single human-readable message for the outcome.
func (s ClaimStatus) Message() string {
	switch s {
	case ClaimCompleted:
		return "Your swag has been marked as received!"
	case ClaimAlreadyDone:
		return "You have already received your swag."
	case ClaimInvalidToken:
		return "Invalid or expired QR code. Please check in again to get a new QR code."
	case ClaimTicketNotFound:
		return "Attendee not found."
	case ClaimNotCheckedIn:
		return "You must check in first before claiming swag."
	default:
		return "Swag claim failed."
	}
}

// Success reports whether swag is marked received after this attempt.
func (s ClaimStatus) Success() bool {
	return s == ClaimCompleted || s == ClaimAlreadyDone
}

// ClaimResult is the outcome of presenting a swag-claim token.
type ClaimResult struct {
	Status   ClaimStatus `json:"status"`
	Attendee *Attendee   `json:"attendee,omitempty"`
}
