package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"eventflow/internal/database"
	"eventflow/internal/models"
)

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// The repositories run the exact same SQL against it as against postgres.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewConnection(database.Config{
		Driver: "sqlite3",
		URL:    ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

func seedAttendees(t *testing.T, repo *AttendeeRepository, attendees ...*models.Attendee) {
	t.Helper()
	require.NoError(t, repo.UpsertMany(attendees))
}
