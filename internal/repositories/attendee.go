package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"eventflow/internal/models"
)

// AttendeeRepository handles attendee record data operations. The SQL is
// kept portable between PostgreSQL (production) and SQLite (local
// development and tests).
type AttendeeRepository struct {
	db *sql.DB
}

// NewAttendeeRepository creates a new attendee repository
func NewAttendeeRepository(db *sql.DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// AttendeeSearchFilters represents filters for attendee search
type AttendeeSearchFilters struct {
	Query      string // Matches against email and name
	TicketType string // Filter by ticket type
	CheckedIn  *bool  // Filter by check-in state
	Limit      int    // Number of results to return
	Offset     int    // Number of results to skip
}

const attendeeColumns = `id, first_name, last_name, email, ticket_type, checked_in,
		check_in_time, swag_received, purchase_date, country, severe_allergy,
		accessibility_needs, first_time_attending, notes`

func scanAttendee(row interface{ Scan(...interface{}) error }) (*models.Attendee, error) {
	a := &models.Attendee{}
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.TicketType,
		&a.CheckedIn,
		&a.CheckInTime,
		&a.SwagReceived,
		&a.PurchaseDate,
		&a.Country,
		&a.SevereAllergy,
		&a.AccessibilityNeeds,
		&a.FirstTimeAttending,
		&a.Notes,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attendee by ticket id
func (r *AttendeeRepository) GetByID(id string) (*models.Attendee, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendees WHERE id = $1`, attendeeColumns)

	attendee, err := scanAttendee(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}

	return attendee, nil
}

// GetByEmail retrieves every ticket registered under the given email. The
// match is against the normalized (lower-cased, trimmed) address, so raw
// strings differing only in case or whitespace locate the same ticket set.
func (r *AttendeeRepository) GetByEmail(email string) ([]*models.Attendee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM attendees
		WHERE lower(trim(email)) = $1
		ORDER BY ticket_type ASC, id ASC`, attendeeColumns)

	rows, err := r.db.Query(query, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendees by email: %w", err)
	}
	defer rows.Close()

	var attendees []*models.Attendee
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, attendee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}

	return attendees, nil
}

// CheckInByEmail transitions every not-yet-checked-in ticket under the email
// whose type is in activeTypes, stamping one shared check-in time. Tickets
// already checked in are left untouched so their original timestamp
// survives. Zero rows affected is a successful no-op: a racing call already
// flipped the flags.
func (r *AttendeeRepository) CheckInByEmail(email string, activeTypes []string, at time.Time) (int64, error) {
	if len(activeTypes) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(activeTypes))
	args := []interface{}{at, models.NormalizeEmail(email)}
	for i, t := range activeTypes {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, t)
	}

	query := fmt.Sprintf(`
		UPDATE attendees
		SET checked_in = TRUE, check_in_time = $1
		WHERE lower(trim(email)) = $2
		  AND ticket_type IN (%s)
		  AND checked_in = FALSE`, strings.Join(placeholders, ", "))

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to check in attendees: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// SetCheckedIn sets the check-in flag on a single ticket, unconditionally.
// This is the staff escape hatch: no policy check, no idempotency handling.
// check_in_time is present exactly when the flag is true.
func (r *AttendeeRepository) SetCheckedIn(id string, checkedIn bool, at *time.Time) error {
	if !checkedIn {
		at = nil
	}

	query := `UPDATE attendees SET checked_in = $1, check_in_time = $2 WHERE id = $3`

	result, err := r.db.Exec(query, checkedIn, at, id)
	if err != nil {
		return fmt.Errorf("failed to set check-in state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrAttendeeNotFound
	}

	return nil
}

// ClaimSwag marks swag received for the ticket, conditional on it being
// checked in and not yet claimed. This is the compare-and-set that keeps two
// racing scans of the same token from double-granting: exactly one caller
// observes an affected row.
func (r *AttendeeRepository) ClaimSwag(id string) (bool, error) {
	query := `
		UPDATE attendees
		SET swag_received = TRUE
		WHERE id = $1 AND checked_in = TRUE AND swag_received = FALSE`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim swag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

// SetSwagReceived sets the swag flag on a single ticket, unconditionally.
// Staff-only error-correction path.
func (r *AttendeeRepository) SetSwagReceived(id string, received bool) error {
	query := `UPDATE attendees SET swag_received = $1 WHERE id = $2`

	result, err := r.db.Exec(query, received, id)
	if err != nil {
		return fmt.Errorf("failed to set swag state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrAttendeeNotFound
	}

	return nil
}

// Update rewrites an attendee's descriptive fields. Check-in and swag state
// are never touched here; they move only through their dedicated paths.
func (r *AttendeeRepository) Update(a *models.Attendee) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Placeholders stay in textual order: sqlite numbers $N parameters by
	// first occurrence, not by the digits.
	query := `
		UPDATE attendees
		SET first_name = $1, last_name = $2, email = $3, ticket_type = $4,
		    purchase_date = $5, country = $6, severe_allergy = $7,
		    accessibility_needs = $8, first_time_attending = $9, notes = $10
		WHERE id = $11`

	result, err := r.db.Exec(query,
		a.FirstName,
		a.LastName,
		a.Email,
		a.TicketType,
		a.PurchaseDate,
		a.Country,
		a.SevereAllergy,
		a.AccessibilityNeeds,
		a.FirstTimeAttending,
		a.Notes,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrAttendeeNotFound
	}

	return nil
}

// UpsertMany inserts or updates attendee rows in one transaction. Rows with
// a known id keep their stored check-in and swag state: re-importing a CSV
// must never revert who is already checked in.
func (r *AttendeeRepository) UpsertMany(attendees []*models.Attendee) error {
	if len(attendees) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO attendees (id, first_name, last_name, email, ticket_type,
			checked_in, check_in_time, swag_received, purchase_date, country,
			severe_allergy, accessibility_needs, first_time_attending, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			ticket_type = excluded.ticket_type,
			purchase_date = excluded.purchase_date,
			country = excluded.country,
			severe_allergy = excluded.severe_allergy,
			accessibility_needs = excluded.accessibility_needs,
			first_time_attending = excluded.first_time_attending,
			notes = excluded.notes`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range attendees {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("validation failed for attendee %q: %w", a.ID, err)
		}

		_, err := stmt.Exec(
			a.ID,
			a.FirstName,
			a.LastName,
			a.Email,
			a.TicketType,
			a.CheckedIn,
			a.CheckInTime,
			a.SwagReceived,
			a.PurchaseDate,
			a.Country,
			a.SevereAllergy,
			a.AccessibilityNeeds,
			a.FirstTimeAttending,
			a.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert attendee %q: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	return nil
}

// Search searches for attendees with filters
func (r *AttendeeRepository) Search(filters AttendeeSearchFilters) ([]*models.Attendee, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.Query != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(filters.Query)) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(lower(email) LIKE $%d OR lower(first_name) LIKE $%d OR lower(last_name) LIKE $%d)",
			argIndex, argIndex+1, argIndex+2))
		args = append(args, like, like, like)
		argIndex += 3
	}

	if filters.TicketType != "" {
		conditions = append(conditions, fmt.Sprintf("ticket_type = $%d", argIndex))
		args = append(args, filters.TicketType)
		argIndex++
	}

	if filters.CheckedIn != nil {
		conditions = append(conditions, fmt.Sprintf("checked_in = $%d", argIndex))
		args = append(args, *filters.CheckedIn)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Set default pagination
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendees %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get attendee count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM attendees
		%s
		ORDER BY last_name ASC, first_name ASC, id ASC
		LIMIT $%d OFFSET $%d`,
		attendeeColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search attendees: %w", err)
	}
	defer rows.Close()

	var attendees []*models.Attendee
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, attendee)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating attendees: %w", err)
	}

	return attendees, total, nil
}

// DistinctTicketTypes returns the distinct ticket types observed across all
// attendees. Feeds the policy fallback when no set was ever configured.
func (r *AttendeeRepository) DistinctTicketTypes() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT ticket_type FROM attendees ORDER BY ticket_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		types = append(types, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	return types, nil
}

// Stats aggregates attendance counters, overall and per ticket type.
func (r *AttendeeRepository) Stats() (*models.AttendanceStats, error) {
	query := `
		SELECT ticket_type,
		       COUNT(*),
		       SUM(CASE WHEN checked_in THEN 1 ELSE 0 END),
		       SUM(CASE WHEN swag_received THEN 1 ELSE 0 END)
		FROM attendees
		GROUP BY ticket_type
		ORDER BY ticket_type ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	defer rows.Close()

	stats := &models.AttendanceStats{}
	for rows.Next() {
		var ts models.TypeStats
		if err := rows.Scan(&ts.TicketType, &ts.Total, &ts.CheckedIn, &ts.SwagClaimed); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ByType = append(stats.ByType, ts)
		stats.Total += ts.Total
		stats.CheckedIn += ts.CheckedIn
		stats.SwagClaimed += ts.SwagClaimed
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return stats, nil
}
