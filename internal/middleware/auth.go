package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"eventflow/internal/models"
	"eventflow/internal/services"
)

const (
	// SessionName is the cookie name for staff sessions.
	SessionName = "eventflow_session"

	// StaffIDSessionKey stores the authenticated staff id in the session.
	StaffIDSessionKey = "staff_id"

	// StaffContextKey carries the loaded staff account through the
	// request context.
	StaffContextKey = "staff"
)

// AuthMiddleware gates the staff-only control surface behind a session.
type AuthMiddleware struct {
	auth  *services.AuthService
	store sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(auth *services.AuthService, store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{
		auth:  auth,
		store: store,
	}
}

// RequireStaff aborts with 401 unless the request carries a valid staff
// session. The staff account lands in the gin context for handlers.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.store.Get(c.Request, SessionName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		staffID, ok := session.Values[StaffIDSessionKey].(string)
		if !ok || staffID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		staff, err := m.auth.GetByID(staffID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(StaffContextKey, staff)
		c.Next()
	}
}

// StaffFromContext returns the authenticated staff account, if any.
func StaffFromContext(c *gin.Context) *models.Staff {
	value, exists := c.Get(StaffContextKey)
	if !exists {
		return nil
	}

	staff, ok := value.(*models.Staff)
	if !ok {
		return nil
	}
	return staff
}
