package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventflow/internal/models"
	"eventflow/internal/repositories"
	"eventflow/internal/services"
)

// AdminHandler serves the staff-only control surface: attendee management,
// state toggles, ticket policy, CSV import and attendance stats.
type AdminHandler struct {
	checkins *services.CheckInService
	swag     *services.SwagService
	policy   *services.PolicyService
	importer *services.ImportService
	feed     *services.DashboardFeed
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	checkins *services.CheckInService,
	swag *services.SwagService,
	policy *services.PolicyService,
	importer *services.ImportService,
	feed *services.DashboardFeed,
) *AdminHandler {
	return &AdminHandler{
		checkins: checkins,
		swag:     swag,
		policy:   policy,
		importer: importer,
		feed:     feed,
	}
}

// ListAttendees godoc
// @Summary      List attendees
// @Tags         admin
// @Produce      json
// @Param        q query string false "Match against email and name"
// @Param        ticket_type query string false "Filter by ticket type"
// @Param        checked_in query bool false "Filter by check-in state"
// @Param        limit query int false "Page size (default 50)"
// @Param        offset query int false "Page offset"
// @Success      200 {object} map[string]interface{}
// @Router       /admin/attendees [get]
func (h *AdminHandler) ListAttendees(c *gin.Context) {
	filters := repositories.AttendeeSearchFilters{
		Query:      c.Query("q"),
		TicketType: c.Query("ticket_type"),
	}

	if raw := c.Query("checked_in"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			filters.CheckedIn = &value
		}
	}
	filters.Limit, _ = strconv.Atoi(c.Query("limit"))
	filters.Offset, _ = strconv.Atoi(c.Query("offset"))

	attendees, total, err := h.checkins.Search(filters)
	if err != nil {
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attendees": attendees,
		"total":     total,
	})
}

// GetAttendee godoc
// @Summary      Get one attendee
// @Tags         admin
// @Produce      json
// @Param        id path string true "Ticket id"
// @Success      200 {object} models.Attendee
// @Failure      404 {object} map[string]string
// @Router       /admin/attendees/{id} [get]
func (h *AdminHandler) GetAttendee(c *gin.Context) {
	attendee, err := h.checkins.GetAttendee(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrAttendeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendee not found"})
			return
		}
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

// UpdateAttendee godoc
// @Summary      Edit attendee details
// @Description  Updates descriptive fields only. Check-in and swag state move through their own endpoints.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket id"
// @Param        request body models.AttendeeUpdateRequest true "Fields to update"
// @Success      200 {object} models.Attendee
// @Router       /admin/attendees/{id} [patch]
func (h *AdminHandler) UpdateAttendee(c *gin.Context) {
	var req models.AttendeeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	h.feed.Suppress(id)

	attendee, err := h.checkins.UpdateAttendee(id, &req)
	if err != nil {
		if errors.Is(err, models.ErrAttendeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendee not found"})
			return
		}
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

// ToggleCheckInRequest sets the desired check-in state.
type ToggleCheckInRequest struct {
	CheckedIn *bool `json:"checked_in" binding:"required"`
}

// SetCheckedIn godoc
// @Summary      Toggle check-in state
// @Description  Staff error-correction path. Sets the flag directly, stamping or clearing the check-in time; no policy check applies.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket id"
// @Param        request body ToggleCheckInRequest true "Desired state"
// @Success      200 {object} models.Attendee
// @Router       /admin/attendees/{id}/checkin [put]
func (h *AdminHandler) SetCheckedIn(c *gin.Context) {
	var req ToggleCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CheckedIn == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checked_in is required"})
		return
	}

	id := c.Param("id")
	h.feed.Suppress(id)

	attendee, err := h.checkins.SetCheckedIn(id, *req.CheckedIn)
	if err != nil {
		if errors.Is(err, models.ErrAttendeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendee not found"})
			return
		}
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

// ToggleSwagRequest sets the desired swag state.
type ToggleSwagRequest struct {
	SwagReceived *bool `json:"swag_received" binding:"required"`
}

// SetSwagReceived godoc
// @Summary      Toggle swag state
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket id"
// @Param        request body ToggleSwagRequest true "Desired state"
// @Success      200 {object} models.Attendee
// @Router       /admin/attendees/{id}/swag [put]
func (h *AdminHandler) SetSwagReceived(c *gin.Context) {
	var req ToggleSwagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SwagReceived == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "swag_received is required"})
		return
	}

	id := c.Param("id")
	h.feed.Suppress(id)

	attendee, err := h.swag.SetSwagReceived(id, *req.SwagReceived)
	if err != nil {
		if errors.Is(err, models.ErrAttendeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendee not found"})
			return
		}
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

// GetPolicy godoc
// @Summary      Get the ticket policy
// @Tags         admin
// @Produce      json
// @Success      200 {object} models.TicketPolicy
// @Router       /admin/policy [get]
func (h *AdminHandler) GetPolicy(c *gin.Context) {
	policy, err := h.policy.ActiveTicketTypes()
	if err != nil {
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, policy)
}

// SetPolicyRequest replaces the active ticket-type set.
type SetPolicyRequest struct {
	ActiveTypes []string `json:"active_types"`
}

// SetPolicy godoc
// @Summary      Replace the ticket policy
// @Description  The submitted set replaces the stored one wholesale.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body SetPolicyRequest true "Full active set"
// @Success      200 {object} models.TicketPolicy
// @Router       /admin/policy [put]
func (h *AdminHandler) SetPolicy(c *gin.Context) {
	var req SetPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := h.policy.SetActiveTicketTypes(req.ActiveTypes)
	if err != nil {
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, policy)
}

// ImportAttendees godoc
// @Summary      Import attendees from CSV
// @Description  Upserts rows from a registration export. Existing rows keep their check-in and swag state.
// @Tags         admin
// @Accept       mpfd
// @Produce      json
// @Param        file formData file true "CSV file (ID, Ticket Type, First Name, Last Name, Email)"
// @Success      200 {object} map[string]int
// @Router       /admin/attendees/import [post]
func (h *AdminHandler) ImportAttendees(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}
	defer file.Close()

	count, err := h.importer.Import(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// Stats godoc
// @Summary      Attendance stats
// @Tags         admin
// @Produce      json
// @Success      200 {object} models.AttendanceStats
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.checkins.Stats()
	if err != nil {
		storageError(c)
		return
	}

	c.JSON(http.StatusOK, stats)
}
