package services

import (
	"errors"
	"testing"
	"time"

	"farmwatch-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProbeStore keeps probes in a map keyed by name-as-id; enough for
// service-level behavior without Mongo.
type stubProbeStore struct {
	probes  map[string]*models.Probe
	findErr error
}

func newStubProbeStore() *stubProbeStore {
	return &stubProbeStore{probes: make(map[string]*models.Probe)}
}

func (s *stubProbeStore) Create(probe *models.Probe) (*models.Probe, error) {
	s.probes[probe.Name] = probe
	return probe, nil
}

func (s *stubProbeStore) FindByID(id string) (*models.Probe, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	probe, ok := s.probes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return probe, nil
}

func (s *stubProbeStore) FindAll() ([]*models.Probe, error) {
	var probes []*models.Probe
	for _, p := range s.probes {
		probes = append(probes, p)
	}
	return probes, nil
}

func (s *stubProbeStore) FindByStatus(status string) ([]*models.Probe, error) {
	var probes []*models.Probe
	for _, p := range s.probes {
		if p.Status == status {
			probes = append(probes, p)
		}
	}
	return probes, nil
}

func (s *stubProbeStore) Update(id string, probe *models.Probe) (*models.Probe, error) {
	s.probes[id] = probe
	return probe, nil
}

func (s *stubProbeStore) UpdateReading(id string, reading *models.SensorReading) (*models.Probe, error) {
	probe, ok := s.probes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	probe.CurrentReading = reading
	probe.Status = models.ProbeStatusOnline
	probe.LastActive = reading.Timestamp
	return probe, nil
}

func (s *stubProbeStore) Delete(id string) error {
	if _, ok := s.probes[id]; !ok {
		return errors.New("not found")
	}
	delete(s.probes, id)
	return nil
}

func newTestProbeService(store *stubProbeStore, now time.Time) *ProbeService {
	svc := NewProbeService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateProbeStartsOffline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestProbeService(newStubProbeStore(), now)

	probe, err := svc.CreateProbe(&CreateProbeRequest{
		Name:      "probe-1",
		FieldName: "north-field",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProbeStatusOffline, probe.Status)
	assert.Equal(t, now, probe.CreatedAt)
	assert.Nil(t, probe.CurrentReading)
}

func TestIngestReadingMarksProbeOnline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newStubProbeStore()
	svc := newTestProbeService(store, now)

	_, err := svc.CreateProbe(&CreateProbeRequest{Name: "probe-1", FieldName: "north-field"})
	require.NoError(t, err)

	probe, err := svc.IngestReading("probe-1", &IngestReadingRequest{
		SoilMoisture: 42.5,
		Temperature:  21.0,
		Humidity:     60.0,
		PH:           6.8,
		Nitrogen:     12,
		Phosphorus:   8,
		Potassium:    15,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProbeStatusOnline, probe.Status)
	require.NotNil(t, probe.CurrentReading)
	assert.Equal(t, 42.5, probe.CurrentReading.SoilMoisture)
	assert.Equal(t, now, probe.CurrentReading.Timestamp)
	assert.Equal(t, now, probe.LastActive)
}

func TestStaleProbeReportedOffline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newStubProbeStore()
	store.probes["probe-1"] = &models.Probe{
		Name:       "probe-1",
		Status:     models.ProbeStatusOnline,
		LastActive: now.Add(-11 * time.Minute),
	}
	store.probes["probe-2"] = &models.Probe{
		Name:       "probe-2",
		Status:     models.ProbeStatusOnline,
		LastActive: now.Add(-2 * time.Minute),
	}
	svc := newTestProbeService(store, now)

	probes, err := svc.GetAllProbes()
	require.NoError(t, err)

	byName := make(map[string]string)
	for _, p := range probes {
		byName[p.Name] = p.Status
	}
	assert.Equal(t, models.ProbeStatusOffline, byName["probe-1"])
	assert.Equal(t, models.ProbeStatusOnline, byName["probe-2"])
}

func TestStaleCheckSkipsMaintenanceProbes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newStubProbeStore()
	store.probes["probe-1"] = &models.Probe{
		Name:       "probe-1",
		Status:     models.ProbeStatusMaintenance,
		LastActive: now.Add(-2 * time.Hour),
	}
	svc := newTestProbeService(store, now)

	probe, err := svc.GetProbeByID("probe-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProbeStatusMaintenance, probe.Status)
}

func TestUpdateProbeAppliesPartialFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newStubProbeStore()
	svc := newTestProbeService(store, now)

	_, err := svc.CreateProbe(&CreateProbeRequest{
		Name:         "probe-1",
		FieldName:    "north-field",
		BatteryLevel: 80,
	})
	require.NoError(t, err)

	battery := 55.0
	probe, err := svc.UpdateProbe("probe-1", &UpdateProbeRequest{
		FieldName:    "greenhouse",
		BatteryLevel: &battery,
	})
	require.NoError(t, err)

	assert.Equal(t, "probe-1", probe.Name)
	assert.Equal(t, "greenhouse", probe.FieldName)
	assert.Equal(t, 55.0, probe.BatteryLevel)
}

func TestUpdateProbeNotFound(t *testing.T) {
	svc := newTestProbeService(newStubProbeStore(), time.Now())

	_, err := svc.UpdateProbe("missing", &UpdateProbeRequest{FieldName: "x"})
	assert.EqualError(t, err, "probe not found")
}

func TestDeleteProbeNotFound(t *testing.T) {
	svc := newTestProbeService(newStubProbeStore(), time.Now())

	err := svc.DeleteProbe("missing")
	assert.EqualError(t, err, "probe not found")
}
