package models

import "time"

const (
	AlertTypeSecurity   = "security"
	AlertTypeWeather    = "weather"
	AlertTypeDevice     = "device"
	AlertTypeIrrigation = "irrigation"
	AlertTypeNutrient   = "nutrient"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Alert is a display record held in memory by the notification pipeline.
// Alerts are not persisted; they live until dismissed or until the process
// ends.
type Alert struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	DeviceID     string    `json:"deviceId,omitempty"`
	Location     string    `json:"location,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// NewMotionAlert builds the security alert for a motion event detected at
// the given millisecond timestamp.
func NewMotionAlert(device, location string, timestamp int64) Alert {
	return Alert{
		ID:        MotionAlertID(timestamp, device),
		Type:      AlertTypeSecurity,
		Severity:  SeverityWarning,
		Title:     "Motion Detected",
		Message:   MotionMessage(location, timestamp),
		DeviceID:  device,
		Location:  location,
		Timestamp: time.UnixMilli(timestamp),
	}
}
