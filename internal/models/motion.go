package models

import (
	"fmt"
	"time"
)

// MotionEvent is one detected-motion occurrence as recorded by the event
// source. Timestamp is assigned by the source at submission time
// (milliseconds since epoch) so all pollers see a single authoritative
// ordering regardless of device clocks.
type MotionEvent struct {
	Device    string `json:"device"`
	Location  string `json:"location"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// MotionMessage builds the human-readable message stored alongside a motion
// event.
func MotionMessage(location string, timestamp int64) string {
	readable := time.UnixMilli(timestamp).Format("2006-01-02 15:04:05")
	return fmt.Sprintf("Motion detected at %s - %s", location, readable)
}

// MotionAlertID derives a stable alert identifier from the event timestamp
// and device, so the same underlying event always maps to the same alert.
func MotionAlertID(timestamp int64, device string) string {
	return fmt.Sprintf("motion-%d-%s", timestamp, device)
}
