package services

import (
	"time"

	"eventflow/internal/models"
	"eventflow/internal/repositories"
)

// AttendeeStore is the record-store capability the core consumes. Any store
// providing these operations is substitutable; the SQL repositories back it
// in production and a file-backed SQLite database backs it in tests.
type AttendeeStore interface {
	GetByID(id string) (*models.Attendee, error)
	GetByEmail(email string) ([]*models.Attendee, error)
	CheckInByEmail(email string, activeTypes []string, at time.Time) (int64, error)
	SetCheckedIn(id string, checkedIn bool, at *time.Time) error
	ClaimSwag(id string) (bool, error)
	SetSwagReceived(id string, received bool) error
	Update(a *models.Attendee) error
	UpsertMany(attendees []*models.Attendee) error
	Search(filters repositories.AttendeeSearchFilters) ([]*models.Attendee, int, error)
	DistinctTicketTypes() ([]string, error)
	Stats() (*models.AttendanceStats, error)
}

// PolicyStore persists the configured ticket policy record.
type PolicyStore interface {
	Get() (*models.TicketPolicy, error)
	Set(activeTypes []string) (*models.TicketPolicy, error)
}

// StaffStore persists staff accounts.
type StaffStore interface {
	GetByUsername(username string) (*models.Staff, error)
	GetByID(id string) (*models.Staff, error)
	Create(staff *models.Staff) error
}

// PolicyProvider yields the ticket-type set accepted for check-in today.
type PolicyProvider interface {
	ActiveTicketTypes() (*models.TicketPolicy, error)
}

// TokenIssuer mints a swag-claim token for a ticket, when it qualifies.
type TokenIssuer interface {
	TokenFor(a *models.Attendee) (string, bool)
}
