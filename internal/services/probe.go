package services

import (
	"errors"
	"time"

	"farmwatch-backend/internal/models"
)

// staleThreshold is how long a probe may go without a reading before it is
// reported offline.
const staleThreshold = 10 * time.Minute

// ProbeStore is the repository contract the service needs; satisfied by
// *repository.ProbeRepository.
type ProbeStore interface {
	Create(probe *models.Probe) (*models.Probe, error)
	FindByID(id string) (*models.Probe, error)
	FindAll() ([]*models.Probe, error)
	FindByStatus(status string) ([]*models.Probe, error)
	Update(id string, probe *models.Probe) (*models.Probe, error)
	UpdateReading(id string, reading *models.SensorReading) (*models.Probe, error)
	Delete(id string) error
}

type ProbeService struct {
	probeRepo ProbeStore
	now       func() time.Time
}

func NewProbeService(probeRepo ProbeStore) *ProbeService {
	return &ProbeService{
		probeRepo: probeRepo,
		now:       time.Now,
	}
}

type CreateProbeRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=100"`
	FieldName      string  `json:"fieldName" validate:"required,min=1,max=100"`
	BatteryLevel   float64 `json:"batteryLevel" validate:"omitempty,min=0,max=100"`
	WifiStrength   float64 `json:"wifiStrength" validate:"omitempty,min=0,max=100"`
	WaterTankLevel float64 `json:"waterTankLevel" validate:"omitempty,min=0,max=100"`
}

type UpdateProbeRequest struct {
	Name           string   `json:"name,omitempty"`
	FieldName      string   `json:"fieldName,omitempty"`
	Status         string   `json:"status,omitempty" validate:"omitempty,oneof=online offline maintenance"`
	BatteryLevel   *float64 `json:"batteryLevel,omitempty" validate:"omitempty,min=0,max=100"`
	WifiStrength   *float64 `json:"wifiStrength,omitempty" validate:"omitempty,min=0,max=100"`
	WaterTankLevel *float64 `json:"waterTankLevel,omitempty" validate:"omitempty,min=0,max=100"`
}

type IngestReadingRequest struct {
	SoilMoisture float64 `json:"soilMoisture" validate:"min=0,max=100"`
	Temperature  float64 `json:"temperature" validate:"min=-50,max=80"`
	Humidity     float64 `json:"humidity" validate:"min=0,max=100"`
	PH           float64 `json:"pH" validate:"min=0,max=14"`
	Nitrogen     float64 `json:"nitrogen" validate:"min=0"`
	Phosphorus   float64 `json:"phosphorus" validate:"min=0"`
	Potassium    float64 `json:"potassium" validate:"min=0"`
}

func (s *ProbeService) GetAllProbes() ([]*models.Probe, error) {
	probes, err := s.probeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	for _, probe := range probes {
		s.applyStaleStatus(probe)
	}

	return probes, nil
}

func (s *ProbeService) GetProbeByID(id string) (*models.Probe, error) {
	probe, err := s.probeRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	s.applyStaleStatus(probe)
	return probe, nil
}

func (s *ProbeService) GetProbesByStatus(status string) ([]*models.Probe, error) {
	return s.probeRepo.FindByStatus(status)
}

func (s *ProbeService) CreateProbe(req *CreateProbeRequest) (*models.Probe, error) {
	now := s.now()

	// A probe is offline until its first reading arrives.
	probe := &models.Probe{
		Name:           req.Name,
		FieldName:      req.FieldName,
		Status:         models.ProbeStatusOffline,
		BatteryLevel:   req.BatteryLevel,
		WifiStrength:   req.WifiStrength,
		WaterTankLevel: req.WaterTankLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return s.probeRepo.Create(probe)
}

func (s *ProbeService) UpdateProbe(id string, req *UpdateProbeRequest) (*models.Probe, error) {
	probe, err := s.probeRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("probe not found")
	}

	if req.Name != "" {
		probe.Name = req.Name
	}
	if req.FieldName != "" {
		probe.FieldName = req.FieldName
	}
	if req.Status != "" {
		probe.Status = req.Status
	}
	if req.BatteryLevel != nil {
		probe.BatteryLevel = *req.BatteryLevel
	}
	if req.WifiStrength != nil {
		probe.WifiStrength = *req.WifiStrength
	}
	if req.WaterTankLevel != nil {
		probe.WaterTankLevel = *req.WaterTankLevel
	}
	probe.UpdatedAt = s.now()

	return s.probeRepo.Update(id, probe)
}

func (s *ProbeService) DeleteProbe(id string) error {
	if _, err := s.probeRepo.FindByID(id); err != nil {
		return errors.New("probe not found")
	}

	return s.probeRepo.Delete(id)
}

// IngestReading records a sensor reading and marks the probe online.
func (s *ProbeService) IngestReading(id string, req *IngestReadingRequest) (*models.Probe, error) {
	reading := &models.SensorReading{
		SoilMoisture: req.SoilMoisture,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		PH:           req.PH,
		Nitrogen:     req.Nitrogen,
		Phosphorus:   req.Phosphorus,
		Potassium:    req.Potassium,
		Timestamp:    s.now(),
	}

	return s.probeRepo.UpdateReading(id, reading)
}

// applyStaleStatus downgrades the reported status of probes that stopped
// sending readings. The stored document is untouched; the next reading
// flips the probe back online anyway.
func (s *ProbeService) applyStaleStatus(probe *models.Probe) {
	if probe.Status != models.ProbeStatusOnline {
		return
	}
	if s.now().Sub(probe.LastActive) > staleThreshold {
		probe.Status = models.ProbeStatusOffline
	}
}
