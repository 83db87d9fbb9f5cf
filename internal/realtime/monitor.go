package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eassist/internal/metrics"
	"eassist/internal/observe"
	"eassist/internal/utils"
)

// DefaultInterval is the monitor's tick cadence.
const DefaultInterval = 2 * time.Second

// stopTimeout bounds how long Stop waits for the loop to exit.
const stopTimeout = 5 * time.Second

// Monitor drives periodic metric collection: each tick pulls a snapshot,
// evaluates alerts, and pushes updates to subscribed channels. One monitor
// runs per process with an explicit start/stop lifecycle.
type Monitor struct {
	provider  metrics.Provider
	evaluator *AlertEvaluator
	hub       *Hub
	interval  time.Duration
	logger    *utils.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMonitor(provider metrics.Provider, evaluator *AlertEvaluator, hub *Hub, interval time.Duration, logger *utils.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		provider:  provider,
		evaluator: evaluator,
		hub:       hub,
		interval:  interval,
		logger:    logger,
	}
}

// Start launches the background tick loop. Calling Start while the loop is
// already running is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop(ctx)
	}()
	m.logf("System monitor started (interval %s)", m.interval)
}

// Stop signals the loop to exit, cancelling any in-flight collection, and
// waits up to stopTimeout for it to finish. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logf("System monitor stopped")
	case <-time.After(stopTimeout):
		m.logf("System monitor stop timed out after %s", stopTimeout)
	}
}

// Running reports whether the tick loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// loop runs ticks until the context is cancelled. The next tick begins one
// interval after the previous collection finishes, so cadence drifts with
// collection latency rather than holding a fixed schedule.
func (m *Monitor) loop(ctx context.Context) {
	for {
		m.tick(ctx)
		select {
		case <-time.After(m.interval):
		case <-ctx.Done():
			return
		}
	}
}

// tick collects one snapshot and disseminates it. Collection failures become
// error payloads on the system channel; nothing here can kill the loop.
func (m *Monitor) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	observe.MonitorTicks.Inc()

	snap, err := m.provider.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		observe.CollectionFailures.Inc()
		m.logf("Monitor collection error: %v", err)
		m.hub.Broadcast(ChannelSystem, EventSystemUpdate, ErrorPayload{Error: err.Error()})
		return
	}

	m.hub.Broadcast(ChannelSystem, EventSystemUpdate, snap.SystemStats())
	m.hub.Broadcast(ChannelNetwork, EventNetworkUpdate, snap.NetworkUpdate())
	m.hub.Broadcast(ChannelProcesses, EventProcessUpdate, snap.ProcessUpdate())

	for _, alert := range m.evaluator.Evaluate(snap, time.Now()) {
		observe.AlertsFired.WithLabelValues(alert.Type).Inc()
		m.hub.Broadcast(ChannelAlerts, EventAlert, alert)
	}
}

// Fetch answers a request_update for one channel with a fresh reading. The
// alerts channel has no on-demand form; only pushed alerts exist.
func (m *Monitor) Fetch(ctx context.Context, channel string) (string, any, error) {
	var event string
	switch channel {
	case ChannelSystem:
		event = EventSystemUpdate
	case ChannelNetwork:
		event = EventNetworkUpdate
	case ChannelProcesses:
		event = EventProcessUpdate
	default:
		return EventError, nil, fmt.Errorf("no on-demand data for channel %q", channel)
	}

	snap, err := m.provider.Snapshot(ctx)
	if err != nil {
		return event, nil, err
	}
	switch channel {
	case ChannelSystem:
		return event, snap.SystemStats(), nil
	case ChannelNetwork:
		return event, snap.NetworkUpdate(), nil
	default:
		return event, snap.ProcessUpdate(), nil
	}
}

func (m *Monitor) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Write(fmt.Sprintf(format, args...))
	}
}
