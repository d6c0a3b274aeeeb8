package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"eventflow/internal/models"
)

// ImportService loads attendee rows from registration-export CSVs.
//
// Expected column order: ID, Ticket Type, First Name, Last Name, Email.
// The first row is a header and is skipped; short rows are ignored. Rows
// whose id already exists keep their stored check-in and swag state on
// upsert, so re-running an import never reverts live data.
type ImportService struct {
	attendees AttendeeStore
}

// NewImportService creates a new import service
func NewImportService(attendees AttendeeStore) *ImportService {
	return &ImportService{attendees: attendees}
}

// ParseCSV reads attendee rows without touching the store.
func (s *ImportService) ParseCSV(r io.Reader) ([]*models.Attendee, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var attendees []*models.Attendee
	for i, record := range records {
		if i == 0 {
			continue // header row
		}
		if len(record) < 5 {
			continue
		}

		id := strings.TrimSpace(record[0])
		if id == "" {
			id = uuid.NewString()
		}

		attendees = append(attendees, &models.Attendee{
			ID:         id,
			TicketType: strings.TrimSpace(record[1]),
			FirstName:  strings.TrimSpace(record[2]),
			LastName:   strings.TrimSpace(record[3]),
			Email:      strings.TrimSpace(record[4]),
		})
	}

	return attendees, nil
}

// Import parses the CSV and upserts the rows. Returns how many rows were
// written.
func (s *ImportService) Import(r io.Reader) (int, error) {
	attendees, err := s.ParseCSV(r)
	if err != nil {
		return 0, err
	}

	if len(attendees) == 0 {
		return 0, nil
	}

	if err := s.attendees.UpsertMany(attendees); err != nil {
		return 0, err
	}

	return len(attendees), nil
}
