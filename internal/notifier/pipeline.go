package notifier

import (
	"context"
	"log"
	"sync"
	"time"

	"farmwatch-backend/internal/models"
)

// dedupWindow is the fuzzy-match window for motion alerts: the broadcast
// path carries a client-assigned timestamp, the poll path a server-assigned
// one, so the same physical event can show up twice with a small skew.
const dedupWindow = 2 * time.Second

// Config controls the pipeline's polling behavior.
type Config struct {
	// PollInterval is how often the source is asked for new motion.
	PollInterval time.Duration
	// Lookback is how far behind "now" the poll cursor starts, so events
	// submitted just before startup are still observed without replaying
	// old ones. Defaults to one poll interval.
	Lookback time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		Lookback:     5 * time.Second,
	}
}

// Pipeline watches a motion event source and maintains the in-memory alert
// list served to the dashboard. New events arrive on two independent paths:
// the periodic poll against the source, and the local bus signal published
// right after a successful submission from this process. The deduplication
// rule treats the two paths as interchangeable, so delivery order between
// them does not matter.
//
// All alert-list mutation happens under the pipeline's mutex; polling is
// additionally serialized by the run loop, so a slow poll response can
// never interleave with a newer one, and the cursor only moves forward.
type Pipeline struct {
	source  Source
	bus     *Bus
	config  Config
	onAlert func(models.Alert)

	mu       sync.RWMutex
	lastSeen int64
	alerts   []models.Alert

	subID    int
	signals  <-chan Signal
	done     chan struct{}
	stopOnce sync.Once
}

func NewPipeline(source Source, bus *Bus, config Config) *Pipeline {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.Lookback <= 0 {
		config.Lookback = config.PollInterval
	}
	return &Pipeline{
		source: source,
		bus:    bus,
		config: config,
		done:   make(chan struct{}),
	}
}

// SetAlertBroadcast registers a hook invoked for every accepted alert.
// Must be set before Start.
func (p *Pipeline) SetAlertBroadcast(fn func(models.Alert)) {
	p.onAlert = fn
}

// Start subscribes to the local bus and launches the run loop.
func (p *Pipeline) Start() {
	p.mu.Lock()
	p.lastSeen = time.Now().Add(-p.config.Lookback).UnixMilli()
	p.mu.Unlock()

	p.subID, p.signals = p.bus.Subscribe()
	go p.run()

	log.Printf("Motion pipeline started (poll interval %s)", p.config.PollInterval)
}

// Stop cancels the poll timer and unsubscribes from the bus. Idempotent.
// An in-flight poll is not force-cancelled; its result is applied through
// the same forward-only cursor and dedup checks, so it cannot corrupt
// state.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.bus.Unsubscribe(p.subID)
		log.Println("Motion pipeline stopped")
	})
}

func (p *Pipeline) run() {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.pollOnce(context.Background())
		case sig, ok := <-p.signals:
			if !ok {
				return
			}
			p.handleSignal(sig)
		case <-p.done:
			return
		}
	}
}

// SubmitMotion reports a motion detection to the source and, on success,
// publishes the local signal so same-process listeners update immediately.
// Failures are logged and reported as false, never raised to the caller.
func (p *Pipeline) SubmitMotion(ctx context.Context, deviceID, location string) bool {
	result, err := p.source.Submit(ctx, deviceID, location)
	if err != nil {
		log.Printf("Failed to send motion alert: %v", err)
		return false
	}
	if !result.OK {
		log.Printf("Motion alert rejected by source: %s", result.Error)
		return false
	}

	// The source echoes back the device and location it stored (defaults
	// substituted), which keeps the broadcast path consistent with what a
	// later poll will report.
	p.bus.Publish(Signal{
		DeviceID:  result.Device,
		Location:  result.Location,
		Timestamp: time.Now().UnixMilli(),
	})
	return true
}

// pollOnce asks the source for anything newer than the current cursor. Any
// failure skips the cycle without touching state; the next tick retries
// naturally.
func (p *Pipeline) pollOnce(ctx context.Context) {
	result, err := p.source.Poll(ctx, p.cursor())
	if err != nil {
		log.Printf("Motion poll failed: %v", err)
		return
	}
	if !result.OK || !result.HasNewMotion || result.Motion == nil {
		return
	}

	event := result.Motion
	candidate := models.NewMotionAlert(event.Device, event.Location, event.Timestamp)
	if event.Message != "" {
		candidate.Message = event.Message
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Advance the cursor even for duplicates so a stale slot is not
	// reprocessed forever. The cursor never moves backward.
	if event.Timestamp > p.lastSeen {
		p.lastSeen = event.Timestamp
	}
	if p.isDuplicateLocked(candidate) {
		return
	}
	p.acceptLocked(candidate)
}

// handleSignal mirrors pollOnce for the local broadcast path. Signals do
// not move the poll cursor; the poller owns it.
func (p *Pipeline) handleSignal(sig Signal) {
	ts := sig.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	candidate := models.NewMotionAlert(sig.DeviceID, sig.Location, ts)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDuplicateLocked(candidate) {
		return
	}
	p.acceptLocked(candidate)
}

// isDuplicateLocked implements the deduplication rule: a candidate is a
// duplicate when an existing alert has the same id, or is a security alert
// for the same device within the fuzzy window. Matching on device keeps two
// real detections from different devices distinct even when they land
// within the window of each other.
func (p *Pipeline) isDuplicateLocked(candidate models.Alert) bool {
	for i := range p.alerts {
		existing := &p.alerts[i]
		if existing.ID == candidate.ID {
			return true
		}
		if existing.Type != models.AlertTypeSecurity || existing.DeviceID != candidate.DeviceID {
			continue
		}
		delta := existing.Timestamp.Sub(candidate.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta < dedupWindow {
			return true
		}
	}
	return false
}

func (p *Pipeline) acceptLocked(alert models.Alert) {
	p.alerts = append([]models.Alert{alert}, p.alerts...)
	if p.onAlert != nil {
		// The hook fans out to websocket clients and must not block the
		// run loop.
		go p.onAlert(alert)
	}
}

func (p *Pipeline) cursor() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSeen
}

// Alerts returns a copy of the current alert list, newest first.
func (p *Pipeline) Alerts() []models.Alert {
	p.mu.RLock()
	defer p.mu.RUnlock()

	alerts := make([]models.Alert, len(p.alerts))
	copy(alerts, p.alerts)
	return alerts
}

// Acknowledge marks the alert with the given id as acknowledged.
// Idempotent; no-op for unknown ids.
func (p *Pipeline) Acknowledge(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.alerts {
		if p.alerts[i].ID == id {
			p.alerts[i].Acknowledged = true
			return
		}
	}
}

// AcknowledgeAll marks every current alert as acknowledged.
func (p *Pipeline) AcknowledgeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.alerts {
		p.alerts[i].Acknowledged = true
	}
}

// Dismiss removes the alert with the given id. No-op for unknown ids.
func (p *Pipeline) Dismiss(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.alerts {
		if p.alerts[i].ID == id {
			p.alerts = append(p.alerts[:i], p.alerts[i+1:]...)
			return
		}
	}
}

// UnacknowledgedCount reports how many alerts still need attention.
func (p *Pipeline) UnacknowledgedCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for i := range p.alerts {
		if !p.alerts[i].Acknowledged {
			count++
		}
	}
	return count
}
