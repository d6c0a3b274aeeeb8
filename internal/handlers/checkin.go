package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventflow/internal/models"
	"eventflow/internal/services"
)

// CheckInHandler serves the self-service check-in endpoint.
type CheckInHandler struct {
	service *services.CheckInService
	baseURL string
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(service *services.CheckInService, baseURL string) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		baseURL: baseURL,
	}
}

// CheckInRequest is the self-service check-in request body.
type CheckInRequest struct {
	Email string `json:"email" binding:"required"`
}

// CheckInResponse is the self-service check-in response body.
type CheckInResponse struct {
	Status         models.CheckInStatus `json:"status"`
	Success        bool                 `json:"success"`
	Message        string               `json:"message"`
	Attendee       *models.Attendee     `json:"attendee,omitempty"`
	Tickets        []*models.Attendee   `json:"tickets,omitempty"`
	CheckedInTypes []string             `json:"checked_in_types,omitempty"`

	// ClaimURLs maps ticket id to the swag-claim URL rendered as a QR
	// code by the client.
	ClaimURLs map[string]string `json:"claim_urls,omitempty"`
}

// CheckIn godoc
// @Summary      Check in by email
// @Description  Checks in every eligible ticket registered under the email. Re-submitting after a successful check-in is a no-op that returns the current state.
// @Tags         checkin
// @Accept       json
// @Produce      json
// @Param        request body CheckInRequest true "Attendee email"
// @Success      200 {object} CheckInResponse
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /checkin [post]
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	result, err := h.service.CheckInByEmail(req.Email)
	if err != nil {
		storageError(c)
		return
	}

	resp := CheckInResponse{
		Status:         result.Status,
		Success:        result.Status.Success(),
		Message:        result.Status.Message(),
		Tickets:        result.Tickets,
		CheckedInTypes: result.CheckedInTypes,
	}

	if len(result.Tickets) > 0 {
		resp.Attendee = result.Tickets[0]
	}

	if len(result.ClaimTokens) > 0 {
		resp.ClaimURLs = make(map[string]string, len(result.ClaimTokens))
		for id, token := range result.ClaimTokens {
			resp.ClaimURLs[id] = h.baseURL + "/swag/" + token
		}
	}

	c.JSON(http.StatusOK, resp)
}

// storageError reports a persistence failure. Each business outcome has its
// own message; this one means "unconfirmed, retry".
func storageError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "storage_error",
		"success": false,
		"message": "A database error occurred. Please try again or contact support.",
	})
}
