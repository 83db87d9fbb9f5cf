package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeConn records written frames in memory.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	failed bool
	closed bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("write failed")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, raw := range f.frames {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		out = append(out, env.Event)
	}
	return out
}

// waitForEvent polls until the connection has seen the event or times out.
func waitForEvent(t *testing.T, f *fakeConn, event string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range f.events() {
			if e == event {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q event, saw %v", event, f.events())
}

func TestRegisterSendsGreeting(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	waitForEvent(t, conn, EventConnected)
	if h.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", h.ClientCount())
	}
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	h := NewHub(nil)
	connA, connB := &fakeConn{}, &fakeConn{}
	a := h.Register(connA)
	b := h.Register(connB)
	defer h.Disconnect(a)
	defer h.Disconnect(b)

	if err := h.Subscribe(a, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := h.Subscribe(b, ChannelAlerts); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	h.Broadcast(ChannelSystem, EventSystemUpdate, map[string]string{"x": "y"})
	waitForEvent(t, connA, EventSystemUpdate)

	for _, e := range connB.events() {
		if e == EventSystemUpdate {
			t.Fatal("client subscribed to alerts received a system update")
		}
	}
}

func TestSubscribeUnknownChannel(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	if err := h.Subscribe(c, "nonsense"); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	if err := h.Subscribe(c, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := h.Subscribe(c, ChannelSystem); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if subs := h.Subscriptions(c); len(subs) != 1 {
		t.Errorf("expected 1 subscription, got %v", subs)
	}
}

func TestUnsubscribeNeverJoined(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	// Must not panic or error.
	h.Unsubscribe(c, ChannelNetwork)
	if subs := h.Subscriptions(c); len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %v", subs)
	}
}

func TestDisconnectTwice(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)

	h.Disconnect(c)
	h.Disconnect(c)
	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Error("connection should be closed after disconnect")
	}
}

func TestDisconnectedClientGetsNothing(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	if err := h.Subscribe(c, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	h.Disconnect(c)

	before := len(conn.events())
	h.Broadcast(ChannelSystem, EventSystemUpdate, nil)
	time.Sleep(20 * time.Millisecond)
	if after := len(conn.events()); after != before {
		t.Errorf("disconnected client received %d new frames", after-before)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{failed: true}
	c := h.Register(conn)
	if err := h.Subscribe(c, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// The greeting write fails, so the writer goroutine reports the client
	// dead and the hub removes it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && h.ClientCount() > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Fatalf("failing client should be dropped, still %d registered", h.ClientCount())
	}
}

func TestHandleMessageSubscribeDefaultsToSystem(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	h.HandleMessage(context.Background(), c, []byte(`{"event":"subscribe"}`))
	waitForEvent(t, conn, EventSubscribed)

	subs := h.Subscriptions(c)
	if len(subs) != 1 || subs[0] != ChannelSystem {
		t.Errorf("expected subscription to system, got %v", subs)
	}
}

func TestHandleMessageUnknownChannel(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	h.HandleMessage(context.Background(), c, []byte(`{"event":"subscribe","data":{"channel":"bogus"}}`))
	waitForEvent(t, conn, EventError)
	if len(h.Subscriptions(c)) != 0 {
		t.Error("unknown channel must not create a subscription")
	}
}

func TestHandleMessageMalformed(t *testing.T) {
	h := NewHub(nil)
	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	h.HandleMessage(context.Background(), c, []byte(`{not json`))
	waitForEvent(t, conn, EventError)
}

type staticFetcher struct {
	event   string
	payload any
	err     error
}

func (f *staticFetcher) Fetch(context.Context, string) (string, any, error) {
	return f.event, f.payload, f.err
}

func TestHandleMessageRequestUpdate(t *testing.T) {
	h := NewHub(nil)
	h.SetFetcher(&staticFetcher{event: EventSystemUpdate, payload: map[string]int{"cpu": 1}})

	connA, connB := &fakeConn{}, &fakeConn{}
	a := h.Register(connA)
	b := h.Register(connB)
	defer h.Disconnect(a)
	defer h.Disconnect(b)
	if err := h.Subscribe(b, ChannelSystem); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	h.HandleMessage(context.Background(), a, []byte(`{"event":"request_update","data":{"channel":"system"}}`))
	waitForEvent(t, connA, EventSystemUpdate)

	// The reply goes to the requester only, not to channel subscribers.
	for _, e := range connB.events() {
		if e == EventSystemUpdate {
			t.Fatal("request_update reply leaked to another client")
		}
	}
}

func TestHandleMessageRequestUpdateError(t *testing.T) {
	h := NewHub(nil)
	h.SetFetcher(&staticFetcher{event: EventSystemUpdate, err: fmt.Errorf("collector down")})

	conn := &fakeConn{}
	c := h.Register(conn)
	defer h.Disconnect(c)

	h.HandleMessage(context.Background(), c, []byte(`{"event":"request_update"}`))
	waitForEvent(t, conn, EventSystemUpdate)

	var found bool
	conn.mu.Lock()
	for _, raw := range conn.frames {
		var env struct {
			Event string       `json:"event"`
			Data  ErrorPayload `json:"data"`
		}
		if json.Unmarshal(raw, &env) == nil && env.Event == EventSystemUpdate && env.Data.Error == "collector down" {
			found = true
		}
	}
	conn.mu.Unlock()
	if !found {
		t.Error("expected error payload in system_update reply")
	}
}
