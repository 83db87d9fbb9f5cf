package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"eassist/internal/models"
)

// fakeProvider returns a canned snapshot and counts calls.
type fakeProvider struct {
	calls int64
	snap  *models.MetricsSnapshot
	err   error
}

func (p *fakeProvider) Snapshot(ctx context.Context) (*models.MetricsSnapshot, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	return p.snap, nil
}

func (p *fakeProvider) callCount() int64 { return atomic.LoadInt64(&p.calls) }

func TestMonitorStartStopIdempotent(t *testing.T) {
	provider := &fakeProvider{snap: snapshot(10, 10, 10)}
	m := NewMonitor(provider, NewAlertEvaluator(0), NewHub(nil), 10*time.Millisecond, nil)

	m.Start()
	m.Start()
	if !m.Running() {
		t.Fatal("monitor should be running after Start")
	}

	m.Stop()
	if m.Running() {
		t.Fatal("monitor should not be running after Stop")
	}
	m.Stop()
}

func TestMonitorTicksAndBroadcasts(t *testing.T) {
	provider := &fakeProvider{snap: snapshot(95, 10, 10)}
	hub := NewHub(nil)
	evaluator := NewAlertEvaluator(time.Hour)
	m := NewMonitor(provider, evaluator, hub, 10*time.Millisecond, nil)

	conn := &fakeConn{}
	c := hub.Register(conn)
	defer hub.Disconnect(c)
	if err := hub.Subscribe(c, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := hub.Subscribe(c, ChannelAlerts); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	m.Start()
	defer m.Stop()

	waitForEvent(t, conn, EventSystemUpdate)
	waitForEvent(t, conn, EventAlert)

	if provider.callCount() == 0 {
		t.Error("provider was never called")
	}
}

func TestMonitorCollectionErrorBecomesPayload(t *testing.T) {
	provider := &fakeProvider{err: errors.New("sensors offline")}
	hub := NewHub(nil)
	m := NewMonitor(provider, NewAlertEvaluator(0), hub, 10*time.Millisecond, nil)

	conn := &fakeConn{}
	c := hub.Register(conn)
	defer hub.Disconnect(c)
	if err := hub.Subscribe(c, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	m.Start()
	defer m.Stop()

	// The loop must survive the failure and keep ticking.
	waitForEvent(t, conn, EventSystemUpdate)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && provider.callCount() < 3 {
		time.Sleep(5 * time.Millisecond)
	}
	if provider.callCount() < 3 {
		t.Fatalf("expected loop to keep ticking after errors, got %d calls", provider.callCount())
	}
}

func TestMonitorFetch(t *testing.T) {
	provider := &fakeProvider{snap: snapshot(10, 20, 30)}
	m := NewMonitor(provider, NewAlertEvaluator(0), NewHub(nil), time.Second, nil)

	event, payload, err := m.Fetch(context.Background(), ChannelSystem)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if event != EventSystemUpdate {
		t.Errorf("expected %s, got %s", EventSystemUpdate, event)
	}
	if payload == nil {
		t.Error("expected payload")
	}

	if _, _, err := m.Fetch(context.Background(), ChannelAlerts); err == nil {
		t.Error("alerts channel has no on-demand data, expected error")
	}
	if _, _, err := m.Fetch(context.Background(), "bogus"); err == nil {
		t.Error("expected error for unknown channel")
	}
}
