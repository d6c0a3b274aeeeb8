package models

// TypeStats aggregates attendance counters for one ticket type.
type TypeStats struct {
	TicketType  string `json:"ticket_type"`
	Total       int    `json:"total"`
	CheckedIn   int    `json:"checked_in"`
	SwagClaimed int    `json:"swag_claimed"`
}

// AttendanceStats is the read-only aggregation shown on the admin dashboard.
type AttendanceStats struct {
	Total       int         `json:"total"`
	CheckedIn   int         `json:"checked_in"`
	SwagClaimed int         `json:"swag_claimed"`
	ByType      []TypeStats `json:"by_type"`
}
