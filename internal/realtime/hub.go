package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"eassist/internal/observe"
	"eassist/internal/utils"
)

// Topic channels clients can subscribe to.
const (
	ChannelSystem    = "system"
	ChannelNetwork   = "network"
	ChannelProcesses = "processes"
	ChannelAlerts    = "alerts"
)

// Outbound event names.
const (
	EventConnected     = "connected"
	EventSubscribed    = "subscribed"
	EventUnsubscribed  = "unsubscribed"
	EventSystemUpdate  = "system_update"
	EventNetworkUpdate = "network_update"
	EventProcessUpdate = "process_update"
	EventAlert         = "alert"
	EventError         = "error"
)

var validChannels = map[string]struct{}{
	ChannelSystem:    {},
	ChannelNetwork:   {},
	ChannelProcesses: {},
	ChannelAlerts:    {},
}

// envelope is the wire frame for every message in either direction.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound mirrors envelope for marshaling arbitrary payloads.
type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// channelRequest is the payload of subscribe/unsubscribe/request_update.
type channelRequest struct {
	Channel string `json:"channel"`
}

// ErrorPayload replaces a normal update when collection fails.
type ErrorPayload struct {
	Error string `json:"error"`
}

// Fetcher produces the current payload for one channel on demand; the hub uses
// it to answer request_update messages for the requester only.
type Fetcher interface {
	Fetch(ctx context.Context, channel string) (event string, payload any, err error)
}

// Hub tracks channel membership and fans events out to subscribers. Delivery
// is best-effort: a slow or dead connection is dropped, never waited on.
type Hub struct {
	mu      sync.RWMutex
	members map[*Client]map[string]struct{}

	fetcher Fetcher
	logger  *utils.Logger
}

func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		members: make(map[*Client]map[string]struct{}),
		logger:  logger,
	}
}

// SetFetcher wires the on-demand data source used by request_update. Set once
// during startup, before any client connects.
func (h *Hub) SetFetcher(f Fetcher) { h.fetcher = f }

// Register adds a new connection with an empty channel set and starts its
// writer. The returned client receives a "connected" greeting.
func (h *Hub) Register(conn Conn) *Client {
	c := newClient(conn)
	h.mu.Lock()
	h.members[c] = make(map[string]struct{})
	h.mu.Unlock()
	observe.ConnectedClients.Inc()

	go c.writePump(h.dropClient)

	h.sendTo(c, EventConnected, map[string]any{
		"message":       "Connected to Endpoint Assist",
		"connection_id": c.ID,
	})
	h.logf("Client %s connected", c.ID)
	return c
}

// Subscribe joins the client to a channel. Joining twice has no further
// effect; unknown channels are rejected.
func (h *Hub) Subscribe(c *Client, channel string) error {
	if _, ok := validChannels[channel]; !ok {
		return fmt.Errorf("unknown channel %q", channel)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.members[c]
	if !ok {
		return fmt.Errorf("connection not registered")
	}
	set[channel] = struct{}{}
	return nil
}

// Unsubscribe leaves a channel; leaving a channel the client never joined is
// a no-op.
func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.members[c]; ok {
		delete(set, channel)
	}
}

// Disconnect removes the connection from every channel and closes it. Safe to
// call more than once; only the first call does work.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	_, present := h.members[c]
	delete(h.members, c)
	h.mu.Unlock()
	if present {
		observe.ConnectedClients.Dec()
		h.logf("Client %s disconnected", c.ID)
	}
	c.close()
}

// Broadcast delivers an event to every subscriber of the channel. Clients
// whose queue is full are dropped after the sweep so one stalled connection
// cannot block the rest.
func (h *Hub) Broadcast(channel, event string, payload any) {
	msg, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		h.logf("Broadcast marshal error for %s: %v", event, err)
		return
	}

	var dead []*Client
	h.mu.RLock()
	for c, set := range h.members {
		if _, ok := set[channel]; !ok {
			continue
		}
		if !c.enqueue(msg) {
			dead = append(dead, c)
		}
	}
	h.mu.RUnlock()
	observe.Broadcasts.WithLabelValues(channel).Inc()

	for _, c := range dead {
		h.logf("Dropping client %s: send queue full", c.ID)
		observe.DroppedClients.Inc()
		h.Disconnect(c)
	}
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

// Subscriptions returns a copy of the client's current channel set.
func (h *Hub) Subscriptions(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.members[c]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for ch := range set {
		out = append(out, ch)
	}
	return out
}

// HandleMessage dispatches one inbound frame from a client.
func (h *Hub) HandleMessage(ctx context.Context, c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendTo(c, EventError, ErrorPayload{Error: "malformed message"})
		return
	}
	var req channelRequest
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.sendTo(c, EventError, ErrorPayload{Error: "malformed message data"})
			return
		}
	}
	if req.Channel == "" {
		req.Channel = ChannelSystem
	}

	switch env.Event {
	case "subscribe":
		if err := h.Subscribe(c, req.Channel); err != nil {
			h.sendTo(c, EventError, ErrorPayload{Error: err.Error()})
			return
		}
		h.sendTo(c, EventSubscribed, map[string]string{
			"channel": req.Channel,
			"message": fmt.Sprintf("Subscribed to %s updates", req.Channel),
		})
	case "unsubscribe":
		h.Unsubscribe(c, req.Channel)
		h.sendTo(c, EventUnsubscribed, map[string]string{"channel": req.Channel})
	case "request_update":
		h.handleRequestUpdate(ctx, c, req.Channel)
	default:
		h.sendTo(c, EventError, ErrorPayload{Error: fmt.Sprintf("unknown event %q", env.Event)})
	}
}

// handleRequestUpdate fetches fresh data for one channel and replies to the
// requesting connection only.
func (h *Hub) handleRequestUpdate(ctx context.Context, c *Client, channel string) {
	if h.fetcher == nil {
		h.sendTo(c, EventError, ErrorPayload{Error: "updates unavailable"})
		return
	}
	event, payload, err := h.fetcher.Fetch(ctx, channel)
	if err != nil {
		if event == "" {
			event = EventError
		}
		h.sendTo(c, event, ErrorPayload{Error: err.Error()})
		return
	}
	h.sendTo(c, event, payload)
}

// sendTo queues an event for a single client, dropping the client on overflow.
func (h *Hub) sendTo(c *Client, event string, payload any) {
	msg, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		h.logf("Send marshal error for %s: %v", event, err)
		return
	}
	if !c.enqueue(msg) {
		h.logf("Dropping client %s: send queue full", c.ID)
		observe.DroppedClients.Inc()
		h.Disconnect(c)
	}
}

// dropClient is the write-failure callback from the client's writer goroutine.
func (h *Hub) dropClient(c *Client, err error) {
	h.logf("Write to client %s failed: %v", c.ID, err)
	observe.DroppedClients.Inc()
	h.Disconnect(c)
}

func (h *Hub) logf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Write(fmt.Sprintf(format, args...))
	}
}
