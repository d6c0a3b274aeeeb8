package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/models"
)

const sampleCSV = `ID,Ticket Type,First Name,Last Name,Email
TCK-1001,Conference,Ada,Lovelace,ada@example.com
TCK-1002,Workshop,Ada,Lovelace,ada@example.com
,Day Pass,Grace,Hopper,grace@example.com
short,row
TCK-1003,Conference,Alan,Turing,alan@example.com
`

func TestParseCSV(t *testing.T) {
	svc := NewImportService(newMemStore())

	attendees, err := svc.ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, attendees, 4, "header and short rows are skipped")

	assert.Equal(t, "TCK-1001", attendees[0].ID)
	assert.Equal(t, "Conference", attendees[0].TicketType)
	assert.Equal(t, "Ada", attendees[0].FirstName)
	assert.Equal(t, "Lovelace", attendees[0].LastName)
	assert.Equal(t, "ada@example.com", attendees[0].Email)

	assert.NotEmpty(t, attendees[2].ID, "blank id gets generated")
	assert.Equal(t, "Grace", attendees[2].FirstName)
}

func TestParseCSV_Empty(t *testing.T) {
	svc := NewImportService(newMemStore())

	attendees, err := svc.ParseCSV(strings.NewReader("ID,Ticket Type,First Name,Last Name,Email\n"))
	require.NoError(t, err)
	assert.Empty(t, attendees)
}

func TestImport_WritesRows(t *testing.T) {
	store := newMemStore()
	svc := NewImportService(store)

	count, err := svc.Import(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	stored, err := store.GetByID("TCK-1001")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
}

func TestImport_ReRunPreservesLiveState(t *testing.T) {
	store := newMemStore()
	svc := NewImportService(store)

	_, err := svc.Import(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Someone checks in between the two imports.
	checkin := NewCheckInService(store, &staticPolicy{types: []string{"Conference", "Workshop"}}, noTokens{}, NoopNotifier{})
	result, err := checkin.CheckInByEmail("ada@example.com")
	require.NoError(t, err)
	require.Equal(t, models.CheckInCompleted, result.Status)

	_, err = svc.Import(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	stored, err := store.GetByID("TCK-1001")
	require.NoError(t, err)
	assert.True(t, stored.CheckedIn, "re-import must not revert check-in state")
	assert.NotNil(t, stored.CheckInTime)
}
