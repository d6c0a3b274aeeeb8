package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"eventflow/internal/database"
	"eventflow/internal/middleware"
	"eventflow/internal/models"
	"eventflow/internal/repositories"
	"eventflow/internal/services"
)

const testBaseURL = "https://checkin.example.com"

// testEnv wires the full HTTP surface over an in-memory sqlite database,
// with the same routes as the server binary.
type testEnv struct {
	router    *gin.Engine
	attendees *repositories.AttendeeRepository
	feed      *services.DashboardFeed
	swag      *services.SwagService
	auth      *services.AuthService
	policy    *services.PolicyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection(database.Config{Driver: "sqlite3", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	attendeeRepo := repositories.NewAttendeeRepository(db.DB)
	policyRepo := repositories.NewPolicyRepository(db.DB)
	staffRepo := repositories.NewStaffRepository(db.DB)

	feed := services.NewDashboardFeed(30 * time.Second)
	policyService := services.NewPolicyService(policyRepo, attendeeRepo)
	swagService := services.NewSwagService(attendeeRepo, []byte("handler-test-key"), time.Hour, []string{"Day Pass"}, services.NoopNotifier{})
	checkinService := services.NewCheckInService(attendeeRepo, policyService, swagService, services.NoopNotifier{})
	importService := services.NewImportService(attendeeRepo)
	authService := services.NewAuthService(staffRepo)

	sessionStore := sessions.NewCookieStore([]byte("handler-test-session-secret"))

	checkinHandler := NewCheckInHandler(checkinService, testBaseURL)
	swagHandler := NewSwagHandler(swagService, feed)
	adminHandler := NewAdminHandler(checkinService, swagService, policyService, importService, feed)
	authHandler := NewAuthHandler(authService, sessionStore)
	authMiddleware := middleware.NewAuthMiddleware(authService, sessionStore)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/checkin", checkinHandler.CheckIn)
	api.GET("/swag/:token", swagHandler.Claim)
	api.POST("/swag/:token", swagHandler.Claim)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authMiddleware.RequireStaff(), authHandler.Me)

	admin := api.Group("/admin", authMiddleware.RequireStaff())
	admin.GET("/attendees", adminHandler.ListAttendees)
	admin.GET("/attendees/:id", adminHandler.GetAttendee)
	admin.PATCH("/attendees/:id", adminHandler.UpdateAttendee)
	admin.PUT("/attendees/:id/checkin", adminHandler.SetCheckedIn)
	admin.PUT("/attendees/:id/swag", adminHandler.SetSwagReceived)
	admin.POST("/attendees/import", adminHandler.ImportAttendees)
	admin.GET("/policy", adminHandler.GetPolicy)
	admin.PUT("/policy", adminHandler.SetPolicy)
	admin.GET("/stats", adminHandler.Stats)
	admin.POST("/swag/scan", swagHandler.Scan)

	return &testEnv{
		router:    router,
		attendees: attendeeRepo,
		feed:      feed,
		swag:      swagService,
		auth:      authService,
		policy:    policyService,
	}
}

func (e *testEnv) seed(t *testing.T, attendees ...*models.Attendee) {
	t.Helper()
	require.NoError(t, e.attendees.UpsertMany(attendees))
}

// do sends a JSON request and returns the recorder. Session cookies from a
// prior response ride along via the cookies argument.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login creates a staff account and returns its session cookies.
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()

	_, err := e.auth.CreateStaff("door-team", "correct horse battery")
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"username": "door-team",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}
