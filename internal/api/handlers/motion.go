package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"farmwatch-backend/internal/models"
	"farmwatch-backend/internal/motion"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	defaultDevice   = "esp32-unknown"
	defaultLocation = "unknown-location"
)

// MotionHandler serves the device-facing motion endpoint. The wire format
// is fixed: ESP32 firmware in the field depends on it, so these handlers
// answer with raw response shapes instead of the utils.APIResponse
// envelope used by the dashboard API.
type MotionHandler struct {
	store     motion.Store
	strict    bool
	validator *validator.Validate
}

// NewMotionHandler creates a motion handler. With strict enabled the
// submission body must carry deviceId and location; otherwise defaults are
// substituted for missing fields.
func NewMotionHandler(store motion.Store, strict bool) *MotionHandler {
	return &MotionHandler{
		store:     store,
		strict:    strict,
		validator: validator.New(),
	}
}

type motionSubmission struct {
	DeviceID string `json:"deviceId" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// Submit handles POST /api/motion. The timestamp is assigned here, not
// taken from the device, so pollers see one authoritative ordering.
func (h *MotionHandler) Submit(c *gin.Context) {
	var req motionSubmission
	if err := c.ShouldBindJSON(&req); err != nil && h.strict {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if h.strict {
		if err := h.validator.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId and location are required"})
			return
		}
	}

	device := req.DeviceID
	if device == "" {
		device = defaultDevice
	}
	location := req.Location
	if location == "" {
		location = defaultLocation
	}

	timestamp := time.Now().UnixMilli()
	event := models.MotionEvent{
		Device:    device,
		Location:  location,
		Timestamp: timestamp,
		Message:   models.MotionMessage(location, timestamp),
	}

	if err := h.store.Put(c.Request.Context(), event); err != nil {
		log.Printf("Failed to store motion event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Internal server error",
		})
		return
	}

	log.Printf("MOTION ALERT: device=%s location=%s timestamp=%d", device, location, timestamp)

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"timestamp": timestamp,
		"message":   event.Message,
		"device":    device,
		"location":  location,
		"notify":    true,
	})
}

// Poll handles GET /api/motion?since=N for dashboard polling. The check is
// level-triggered: the same since value returns the same answer until the
// slot changes.
func (h *MotionHandler) Poll(c *gin.Context) {
	since, err := strconv.ParseInt(c.Query("since"), 10, 64)
	if err != nil {
		since = 0
	}

	event, err := h.store.Since(c.Request.Context(), since)
	if err != nil {
		log.Printf("Failed to read motion slot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Internal server error",
		})
		return
	}

	if event == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "hasNewMotion": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "hasNewMotion": true, "motion": event})
}

// Preflight answers OPTIONS /api/motion; the CORS headers themselves come
// from the cors middleware.
func (h *MotionHandler) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// MethodNotAllowed answers any verb without a registered handler.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}
