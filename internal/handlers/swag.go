package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventflow/internal/models"
	"eventflow/internal/services"
)

// SwagHandler serves the swag-claim surfaces: the attendee's claim link and
// the staff scanner. Both run through the same claim transition.
type SwagHandler struct {
	service *services.SwagService
	feed    *services.DashboardFeed
}

// NewSwagHandler creates a new swag handler
func NewSwagHandler(service *services.SwagService, feed *services.DashboardFeed) *SwagHandler {
	return &SwagHandler{
		service: service,
		feed:    feed,
	}
}

// ClaimResponse is the swag-claim response body.
type ClaimResponse struct {
	Status   models.ClaimStatus `json:"status"`
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Attendee *models.Attendee   `json:"attendee,omitempty"`
}

// Claim godoc
// @Summary      Claim swag with a token
// @Description  Validates the claim token from a QR code and marks swag received, exactly once per ticket.
// @Tags         swag
// @Produce      json
// @Param        token path string true "Claim token"
// @Success      200 {object} ClaimResponse
// @Failure      400 {object} ClaimResponse
// @Failure      404 {object} ClaimResponse
// @Failure      409 {object} ClaimResponse
// @Failure      500 {object} map[string]string
// @Router       /swag/{token} [post]
func (h *SwagHandler) Claim(c *gin.Context) {
	h.claim(c, c.Param("token"))
}

// ScanRequest carries scanned QR content, either the bare token or the full
// claim URL.
type ScanRequest struct {
	Content string `json:"content" binding:"required"`
}

// Scan godoc
// @Summary      Staff swag scan
// @Description  Claims swag from staff-scanned QR content. Same transition and outcomes as the attendee claim link.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body ScanRequest true "Scanned QR content"
// @Success      200 {object} ClaimResponse
// @Router       /admin/swag/scan [post]
func (h *SwagHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scanned content is required"})
		return
	}

	token := services.ExtractToken(req.Content)

	// The operator is looking at the result already; mute the dashboard
	// echo before the claim event can arrive.
	if data, err := h.service.VerifyToken(token); err == nil {
		h.feed.Suppress(data.TicketID)
	}

	h.claim(c, token)
}

func (h *SwagHandler) claim(c *gin.Context, token string) {
	result, err := h.service.ClaimSwag(token)
	if err != nil {
		storageError(c)
		return
	}

	c.JSON(claimStatusCode(result.Status), ClaimResponse{
		Status:   result.Status,
		Success:  result.Status.Success(),
		Message:  result.Status.Message(),
		Attendee: result.Attendee,
	})
}

func claimStatusCode(status models.ClaimStatus) int {
	switch status {
	case models.ClaimCompleted, models.ClaimAlreadyDone:
		return http.StatusOK
	case models.ClaimInvalidToken:
		return http.StatusBadRequest
	case models.ClaimTicketNotFound:
		return http.StatusNotFound
	case models.ClaimNotCheckedIn:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
