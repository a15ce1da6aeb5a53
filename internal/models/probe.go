package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProbeStatusOnline      = "online"
	ProbeStatusOffline     = "offline"
	ProbeStatusMaintenance = "maintenance"
)

type Probe struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name" validate:"required"`
	FieldName      string             `bson:"field_name" json:"fieldName" validate:"required"`
	Status         string             `bson:"status" json:"status"`
	BatteryLevel   float64            `bson:"battery_level" json:"batteryLevel"`
	WifiStrength   float64            `bson:"wifi_strength" json:"wifiStrength"`
	WaterTankLevel float64            `bson:"water_tank_level" json:"waterTankLevel"`
	CurrentReading *SensorReading     `bson:"current_reading,omitempty" json:"currentReading,omitempty"`
	LastActive     time.Time          `bson:"last_active" json:"lastActive"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

type SensorReading struct {
	SoilMoisture float64   `bson:"soil_moisture" json:"soilMoisture"`
	Temperature  float64   `bson:"temperature" json:"temperature"`
	Humidity     float64   `bson:"humidity" json:"humidity"`
	PH           float64   `bson:"ph" json:"pH"`
	Nitrogen     float64   `bson:"nitrogen" json:"nitrogen"`
	Phosphorus   float64   `bson:"phosphorus" json:"phosphorus"`
	Potassium    float64   `bson:"potassium" json:"potassium"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}
