package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/models"
	"eventflow/internal/services"
)

// stubStaffStore serves one fixed staff account.
type stubStaffStore struct {
	staff *models.Staff
}

func (s *stubStaffStore) GetByUsername(username string) (*models.Staff, error) {
	if s.staff != nil && s.staff.Username == username {
		return s.staff, nil
	}
	return nil, models.ErrStaffNotFound
}

func (s *stubStaffStore) GetByID(id string) (*models.Staff, error) {
	if s.staff != nil && s.staff.ID == id {
		return s.staff, nil
	}
	return nil, models.ErrStaffNotFound
}

func (s *stubStaffStore) Create(*models.Staff) error { return nil }

func newAuthTestRouter(staff *models.Staff) (*gin.Engine, sessions.Store) {
	gin.SetMode(gin.TestMode)

	store := sessions.NewCookieStore([]byte("middleware-test-secret"))
	auth := services.NewAuthService(&stubStaffStore{staff: staff})
	mw := NewAuthMiddleware(auth, store)

	router := gin.New()
	router.GET("/protected", mw.RequireStaff(), func(c *gin.Context) {
		current := StaffFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": current.Username})
	})
	return router, store
}

func sessionCookie(t *testing.T, store sessions.Store, staffID string) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	session, err := store.Get(req, SessionName)
	require.NoError(t, err)
	session.Values[StaffIDSessionKey] = staffID
	require.NoError(t, session.Save(req, w))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestRequireStaff_NoSession(t *testing.T) {
	router, _ := newAuthTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff_ValidSession(t *testing.T) {
	staff := &models.Staff{ID: "S1", Username: "door-team", PasswordHash: "h"}
	router, store := newAuthTestRouter(staff)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, store, "S1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "door-team")
}

func TestRequireStaff_UnknownStaffID(t *testing.T) {
	// Session is intact but the account is gone.
	router, store := newAuthTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, store, "deleted"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffFromContext_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, StaffFromContext(c))
}
