package handlers

import (
	"net/http"

	"farmwatch-backend/internal/notifier"
	"farmwatch-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	pipeline *notifier.Pipeline
}

func NewAlertHandler(pipeline *notifier.Pipeline) *AlertHandler {
	return &AlertHandler{
		pipeline: pipeline,
	}
}

// GetAlerts retrieves the current alert list, newest first
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	alerts := h.pipeline.Alerts()
	utils.SuccessResponse(c, http.StatusOK, "Alerts retrieved successfully", alerts)
}

// GetAlertStatistics retrieves alert counters for the dashboard badge
func (h *AlertHandler) GetAlertStatistics(c *gin.Context) {
	alerts := h.pipeline.Alerts()

	stats := map[string]interface{}{
		"total":          len(alerts),
		"unacknowledged": h.pipeline.UnacknowledgedCount(),
	}

	utils.SuccessResponse(c, http.StatusOK, "Alert statistics retrieved successfully", stats)
}

// AcknowledgeAlert marks an alert as acknowledged; acknowledging an unknown
// id is a no-op, not an error
func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	alertID := c.Param("id")
	if alertID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Alert ID is required", nil)
		return
	}

	h.pipeline.Acknowledge(alertID)
	utils.SuccessResponse(c, http.StatusOK, "Alert acknowledged", nil)
}

// AcknowledgeAllAlerts marks every current alert as acknowledged
func (h *AlertHandler) AcknowledgeAllAlerts(c *gin.Context) {
	h.pipeline.AcknowledgeAll()
	utils.SuccessResponse(c, http.StatusOK, "All alerts acknowledged", nil)
}

// DismissAlert removes an alert from the list
func (h *AlertHandler) DismissAlert(c *gin.Context) {
	alertID := c.Param("id")
	if alertID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Alert ID is required", nil)
		return
	}

	h.pipeline.Dismiss(alertID)
	utils.SuccessResponse(c, http.StatusOK, "Alert dismissed successfully", nil)
}

// TestMotion submits a synthetic motion event through the full pipeline,
// the backend equivalent of the dashboard's test button
func (h *AlertHandler) TestMotion(c *gin.Context) {
	ok := h.pipeline.SubmitMotion(c.Request.Context(), "test-device", "test-location")
	if !ok {
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to send motion alert", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Motion alert sent successfully", nil)
}
