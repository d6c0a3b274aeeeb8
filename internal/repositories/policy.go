package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"eventflow/internal/models"
)

// PolicyRepository handles the ticket policy record. A single row (id 1)
// holds the whole set; saving replaces it wholesale.
type PolicyRepository struct {
	db *sql.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *sql.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Get retrieves the configured policy. Returns models.ErrPolicyNotFound when
// no set was ever saved; the caller decides the fallback.
func (r *PolicyRepository) Get() (*models.TicketPolicy, error) {
	var raw string
	policy := &models.TicketPolicy{Configured: true}

	err := r.db.QueryRow(`SELECT active_types, updated_at FROM ticket_policy WHERE id = 1`).
		Scan(&raw, &policy.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket policy: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &policy.ActiveTypes); err != nil {
		return nil, fmt.Errorf("failed to decode ticket policy: %w", err)
	}

	return policy, nil
}

// Set replaces the policy with the given ticket-type set.
func (r *PolicyRepository) Set(activeTypes []string) (*models.TicketPolicy, error) {
	types := models.NormalizeTypes(activeTypes)

	raw, err := json.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket policy: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO ticket_policy (id, active_types, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			active_types = excluded.active_types,
			updated_at = excluded.updated_at`

	if _, err := r.db.Exec(query, string(raw), now); err != nil {
		return nil, fmt.Errorf("failed to save ticket policy: %w", err)
	}

	return &models.TicketPolicy{
		ActiveTypes: types,
		UpdatedAt:   now,
		Configured:  true,
	}, nil
}
