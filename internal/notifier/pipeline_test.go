package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"farmwatch-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a scriptable motion source for pipeline tests.
type stubSource struct {
	mu           sync.Mutex
	submitResult *SubmitResult
	submitErr    error
	pollResult   *PollResult
	pollErr      error
	polledSince  []int64
}

func (s *stubSource) Submit(_ context.Context, _, _ string) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.submitResult, nil
}

func (s *stubSource) Poll(_ context.Context, since int64) (*PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polledSince = append(s.polledSince, since)
	if s.pollErr != nil {
		return nil, s.pollErr
	}
	if s.pollResult == nil {
		return &PollResult{OK: true}, nil
	}
	return s.pollResult, nil
}

func (s *stubSource) setPoll(result *PollResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollResult = result
	s.pollErr = err
}

func newTestPipeline(source Source) *Pipeline {
	return NewPipeline(source, NewBus(), DefaultConfig())
}

func pollResultFor(device string, ts int64) *PollResult {
	return &PollResult{
		OK:           true,
		HasNewMotion: true,
		Motion: &models.MotionEvent{
			Device:    device,
			Location:  "north-field",
			Timestamp: ts,
			Message:   models.MotionMessage("north-field", ts),
		},
	}
}

func TestDedupBroadcastThenPoll(t *testing.T) {
	source := &stubSource{}
	pipeline := newTestPipeline(source)

	// Local broadcast lands first with a client-assigned timestamp.
	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})
	require.Len(t, pipeline.Alerts(), 1)

	// The poller then reports the same physical event with the
	// server-assigned timestamp, 800ms later.
	source.setPoll(pollResultFor("esp32-01", 1800), nil)
	pipeline.pollOnce(context.Background())

	alerts := pipeline.Alerts()
	assert.Len(t, alerts, 1)
	// The duplicate still advances the cursor so the stale slot is not
	// reprocessed forever.
	assert.Equal(t, int64(1800), pipeline.cursor())
}

func TestDedupPollThenBroadcast(t *testing.T) {
	source := &stubSource{}
	pipeline := newTestPipeline(source)

	source.setPoll(pollResultFor("esp32-01", 1000), nil)
	pipeline.pollOnce(context.Background())
	require.Len(t, pipeline.Alerts(), 1)

	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1800})
	assert.Len(t, pipeline.Alerts(), 1)
}

func TestDedupKeepsDistinctDevices(t *testing.T) {
	pipeline := newTestPipeline(&stubSource{})

	// Two devices firing within the fuzzy window are two real events.
	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})
	pipeline.handleSignal(Signal{DeviceID: "esp32-02", Location: "south-field", Timestamp: 1500})

	alerts := pipeline.Alerts()
	require.Len(t, alerts, 2)
	// Newest first.
	assert.Equal(t, "esp32-02", alerts[0].DeviceID)
	assert.Equal(t, "esp32-01", alerts[1].DeviceID)
}

func TestSameDeviceOutsideWindowIsNewAlert(t *testing.T) {
	pipeline := newTestPipeline(&stubSource{})

	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})
	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 4000})

	assert.Len(t, pipeline.Alerts(), 2)
}

func TestPollFailureSkipsCycle(t *testing.T) {
	source := &stubSource{}
	pipeline := newTestPipeline(source)

	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})
	before := pipeline.cursor()

	source.setPoll(nil, errors.New("connection refused"))
	pipeline.pollOnce(context.Background())

	assert.Len(t, pipeline.Alerts(), 1)
	assert.Equal(t, before, pipeline.cursor())
}

func TestSubmitMotionFailure(t *testing.T) {
	source := &stubSource{submitErr: errors.New("connection refused")}
	bus := NewBus()
	pipeline := NewPipeline(source, bus, DefaultConfig())

	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	ok := pipeline.SubmitMotion(context.Background(), "esp32-01", "north-field")
	assert.False(t, ok)
	assert.Empty(t, pipeline.Alerts())
	// A failed submission must not broadcast.
	assert.Empty(t, ch)
}

func TestSubmitMotionRejectedBySource(t *testing.T) {
	source := &stubSource{submitResult: &SubmitResult{OK: false, Error: "Internal server error"}}
	pipeline := newTestPipeline(source)

	ok := pipeline.SubmitMotion(context.Background(), "esp32-01", "north-field")
	assert.False(t, ok)
}

func TestSubmitMotionPublishesEchoedIdentity(t *testing.T) {
	source := &stubSource{submitResult: &SubmitResult{
		OK:       true,
		Device:   "esp32-unknown",
		Location: "unknown-location",
	}}
	bus := NewBus()
	pipeline := NewPipeline(source, bus, DefaultConfig())

	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	ok := pipeline.SubmitMotion(context.Background(), "", "")
	require.True(t, ok)

	select {
	case sig := <-ch:
		// The broadcast carries the identity the source stored, not the
		// raw caller input, so dedup lines up with the poll path.
		assert.Equal(t, "esp32-unknown", sig.DeviceID)
		assert.Equal(t, "unknown-location", sig.Location)
		assert.NotZero(t, sig.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("expected a local broadcast after a successful submission")
	}
}

func TestAcknowledgeUnknownIDIsNoOp(t *testing.T) {
	pipeline := newTestPipeline(&stubSource{})
	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})

	pipeline.Acknowledge("motion-9999-ghost")

	alerts := pipeline.Alerts()
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Acknowledged)
}

func TestAcknowledgeAndDismiss(t *testing.T) {
	pipeline := newTestPipeline(&stubSource{})
	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})
	pipeline.handleSignal(Signal{DeviceID: "esp32-02", Location: "south-field", Timestamp: 1000})
	require.Equal(t, 2, pipeline.UnacknowledgedCount())

	id := models.MotionAlertID(1000, "esp32-01")
	pipeline.Acknowledge(id)
	assert.Equal(t, 1, pipeline.UnacknowledgedCount())

	// Acknowledging twice changes nothing.
	pipeline.Acknowledge(id)
	assert.Equal(t, 1, pipeline.UnacknowledgedCount())

	pipeline.AcknowledgeAll()
	assert.Equal(t, 0, pipeline.UnacknowledgedCount())

	pipeline.Dismiss(id)
	assert.Len(t, pipeline.Alerts(), 1)

	pipeline.Dismiss("motion-9999-ghost")
	assert.Len(t, pipeline.Alerts(), 1)
}

func TestPipelineRunLoopDeliversBusSignals(t *testing.T) {
	source := &stubSource{}
	bus := NewBus()
	pipeline := NewPipeline(source, bus, Config{PollInterval: time.Hour})

	pipeline.Start()
	defer pipeline.Stop()

	bus.Publish(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: time.Now().UnixMilli()})

	assert.Eventually(t, func() bool {
		return len(pipeline.Alerts()) == 1
	}, time.Second, 10*time.Millisecond)

	// Stop is idempotent.
	pipeline.Stop()
	pipeline.Stop()
}

func TestPipelineBroadcastHook(t *testing.T) {
	pipeline := newTestPipeline(&stubSource{})

	var mu sync.Mutex
	var pushed []models.Alert
	pipeline.SetAlertBroadcast(func(a models.Alert) {
		mu.Lock()
		pushed = append(pushed, a)
		mu.Unlock()
	})

	pipeline.handleSignal(Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushed) == 1
	}, time.Second, 10*time.Millisecond)
}
