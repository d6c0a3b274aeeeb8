package models

import (
	"sort"
	"time"
)

// TicketPolicy is the single process-wide configuration record: the set of
// ticket types currently accepted for check-in. No versioning or history.
type TicketPolicy struct {
	ActiveTypes []string  `json:"active_types"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Configured distinguishes a staff-saved policy from the fallback
	// derived from observed ticket types.
	Configured bool `json:"configured"`
}

// Allows reports whether the given ticket type is accepted under the policy.
func (p *TicketPolicy) Allows(ticketType string) bool {
	for _, t := range p.ActiveTypes {
		if t == ticketType {
			return true
		}
	}
	return false
}

// NormalizeTypes deduplicates and sorts a ticket-type set.
func NormalizeTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
