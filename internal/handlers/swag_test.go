package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/models"
	"eventflow/internal/services"
)

func checkInAttendee(t *testing.T, env *testEnv, id string) {
	t.Helper()
	at := time.Now()
	require.NoError(t, env.attendees.SetCheckedIn(id, true, &at))
}

func TestClaim_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, &models.Attendee{ID: "T1", Email: "ada@example.com", TicketType: "Conference"})
	checkInAttendee(t, env, "T1")

	token, err := env.swag.IssueClaimToken("T1", "ada@example.com")
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/swag/"+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ClaimResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, models.ClaimCompleted, resp.Status)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Attendee)
	assert.True(t, resp.Attendee.SwagReceived)
}

func TestClaim_StatusCodes(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		&models.Attendee{ID: "T1", Email: "ada@example.com", TicketType: "Conference"},
	)

	t.Run("invalid token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/swag/not-a-real-token", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ClaimResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, models.ClaimInvalidToken, resp.Status)
	})

	t.Run("ticket not found", func(t *testing.T) {
		token, err := env.swag.IssueClaimToken("deleted", "ada@example.com")
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/api/swag/"+token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not checked in yet", func(t *testing.T) {
		token, err := env.swag.IssueClaimToken("T1", "ada@example.com")
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/api/swag/"+token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ClaimResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, models.ClaimNotCheckedIn, resp.Status)
	})

	t.Run("already claimed", func(t *testing.T) {
		checkInAttendee(t, env, "T1")
		token, err := env.swag.IssueClaimToken("T1", "ada@example.com")
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/api/swag/"+token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/swag/"+token, nil)
		assert.Equal(t, http.StatusOK, w.Code, "already claimed still reads as success")

		var resp ClaimResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, models.ClaimAlreadyDone, resp.Status)
	})
}

func TestScan_ClaimsFromFullURL(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, &models.Attendee{ID: "T1", Email: "ada@example.com", TicketType: "Conference"})
	checkInAttendee(t, env, "T1")
	cookies := env.login(t)

	token, err := env.swag.IssueClaimToken("T1", "ada@example.com")
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/admin/swag/scan", gin.H{
		"content": testBaseURL + "/swag/" + token,
	}, cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ClaimResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, models.ClaimCompleted, resp.Status)
}

func TestScan_SuppressesOwnFeedEcho(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, &models.Attendee{ID: "T1", Email: "ada@example.com", TicketType: "Conference"})
	checkInAttendee(t, env, "T1")
	cookies := env.login(t)

	ch := env.feed.Subscribe()
	defer env.feed.Unsubscribe(ch)

	token, err := env.swag.IssueClaimToken("T1", "ada@example.com")
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/admin/swag/scan", gin.H{"content": token}, cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	// The scanning operator's claim must not echo back on the dashboard.
	env.feed.Dispatch(services.NewChangeEvent(services.ChangeSwagClaim, "T1", "ada@example.com", "Ada", nil))
	select {
	case ev := <-ch:
		t.Fatalf("suppressed event leaked to the feed: %+v", ev)
	default:
	}
}

func TestScan_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/swag/scan", gin.H{"content": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
