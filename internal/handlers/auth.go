package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"eventflow/internal/middleware"
	"eventflow/internal/models"
	"eventflow/internal/services"
)

// AuthHandler serves staff login and logout.
type AuthHandler struct {
	auth  *services.AuthService
	store sessions.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, store sessions.Store) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		store: store,
	}
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary      Staff login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} models.Staff
// @Failure      401 {object} map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	staff, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		storageError(c)
		return
	}

	session, _ := h.store.Get(c.Request, middleware.SessionName)
	session.Values[middleware.StaffIDSessionKey] = staff.ID
	if err := session.Save(c.Request, c.Writer); err != nil {
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, staff)
}

// Logout godoc
// @Summary      Staff logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, _ := h.store.Get(c.Request, middleware.SessionName)
	delete(session.Values, middleware.StaffIDSessionKey)
	session.Options.MaxAge = -1
	_ = session.Save(c.Request, c.Writer)

	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Current staff account
// @Tags         auth
// @Produce      json
// @Success      200 {object} models.Staff
// @Failure      401 {object} map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	staff := middleware.StaffFromContext(c)
	if staff == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, staff)
}
