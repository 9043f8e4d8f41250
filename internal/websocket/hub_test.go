package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"dating-service/internal/matching"
)

type fakeMatchmaker struct {
	mu       sync.Mutex
	requests []string
	releases map[string]string // userID -> reason
	partners map[string]string
}

func newFakeMatchmaker() *fakeMatchmaker {
	return &fakeMatchmaker{
		releases: make(map[string]string),
		partners: make(map[string]string),
	}
}

func (m *fakeMatchmaker) RequestMatch(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, userID)
}

func (m *fakeMatchmaker) ReleasePair(userID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[userID] = reason
}

func (m *fakeMatchmaker) PartnerOf(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[userID]
	return p, ok
}

func (m *fakeMatchmaker) releaseReason(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.releases[userID]
	return r, ok
}

type fakePresence struct {
	mu      sync.Mutex
	online  map[string]bool
	changes int
}

func newFakePresence() *fakePresence {
	return &fakePresence{online: make(map[string]bool)}
}

func (p *fakePresence) SetUserOnline(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = true
	p.changes++
	return nil
}

func (p *fakePresence) SetUserOffline(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = false
	p.changes++
	return nil
}

func (p *fakePresence) isOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func newTestHub() (*Hub, *fakeMatchmaker, *fakePresence) {
	mm := newFakeMatchmaker()
	pres := newFakePresence()
	hub := NewHub(pres, 10*time.Millisecond, nil)
	hub.SetMatchmaker(mm)
	return hub, mm, pres
}

// drain decodes every message currently queued on the client.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("bad message on send channel: %v", err)
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestRegisterTracksConnectionsPerUser(t *testing.T) {
	hub, _, pres := newTestHub()

	// Two tabs for alice, one for bob.
	a1 := NewClient(hub, nil, "alice")
	a2 := NewClient(hub, nil, "alice")
	b1 := NewClient(hub, nil, "bob")
	hub.registerClient(a1)
	hub.registerClient(a2)
	hub.registerClient(b1)

	if hub.ConnectionCount("alice") != 2 {
		t.Errorf("alice has %d connections, want 2", hub.ConnectionCount("alice"))
	}
	if !pres.isOnline("alice") || !pres.isOnline("bob") {
		t.Error("both users should be mirrored online")
	}

	hub.BroadcastToUser("alice", NewQueueEmptyMessage("m1", "alice"))
	if len(drain(t, a1)) != 1 || len(drain(t, a2)) != 1 {
		t.Error("broadcast should reach every connection of the user")
	}
	if len(drain(t, b1)) != 0 {
		t.Error("broadcast must not leak to other users")
	}
}

func TestBroadcastToAbsentUserIsNoop(t *testing.T) {
	hub, _, _ := newTestHub()
	// Must not panic or error.
	hub.BroadcastToUser("ghost", NewQueueEmptyMessage("m1", "ghost"))
}

func TestUnregisterLastConnectionCleansUp(t *testing.T) {
	hub, mm, pres := newTestHub()

	a1 := NewClient(hub, nil, "alice")
	a2 := NewClient(hub, nil, "alice")
	hub.registerClient(a1)
	hub.registerClient(a2)
	hub.joinLobby("alice")

	hub.unregisterClient(a1)
	if hub.ConnectionCount("alice") != 1 {
		t.Fatalf("alice has %d connections, want 1", hub.ConnectionCount("alice"))
	}
	if _, released := mm.releaseReason("alice"); released {
		t.Error("release must wait for the last connection to close")
	}
	if !pres.isOnline("alice") {
		t.Error("alice still has a live connection, must stay online")
	}

	hub.unregisterClient(a2)
	if hub.ConnectionCount("alice") != 0 {
		t.Error("all connections should be gone")
	}
	if hub.LobbySize() != 0 {
		t.Error("lobby membership should be removed with the last connection")
	}
	if reason, _ := mm.releaseReason("alice"); reason != matching.ReleaseReasonDisconnected {
		t.Errorf("release reason = %q, want %q", reason, matching.ReleaseReasonDisconnected)
	}
	if pres.isOnline("alice") {
		t.Error("alice should be mirrored offline")
	}
}

func TestLobbyBroadcastIsDebounced(t *testing.T) {
	hub, _, _ := newTestHub()

	a := NewClient(hub, nil, "alice")
	b := NewClient(hub, nil, "bob")
	c := NewClient(hub, nil, "carol")
	hub.registerClient(a)
	hub.registerClient(b)
	hub.registerClient(c)

	// A burst of joins within the debounce window.
	hub.joinLobby("alice")
	hub.joinLobby("bob")
	hub.joinLobby("carol")

	time.Sleep(50 * time.Millisecond)

	for name, cl := range map[string]*Client{"alice": a, "bob": b, "carol": c} {
		msgs := drain(t, cl)
		if len(msgs) != 1 {
			t.Fatalf("%s received %d lobby broadcasts, want 1 (debounced)", name, len(msgs))
		}
		if msgs[0].Type != MessageTypeLobbySize {
			t.Errorf("%s received %s, want %s", name, msgs[0].Type, MessageTypeLobbySize)
		}
		if size, ok := msgs[0].Data["size"].(float64); !ok || int(size) != 3 {
			t.Errorf("%s saw lobby size %v, want 3", name, msgs[0].Data["size"])
		}
	}
}

func TestLobbyJoinIsIdempotent(t *testing.T) {
	hub, _, _ := newTestHub()
	hub.joinLobby("alice")
	hub.joinLobby("alice")
	if hub.LobbySize() != 1 {
		t.Errorf("lobby size = %d, want 1", hub.LobbySize())
	}
	hub.leaveLobby("alice")
	hub.leaveLobby("alice")
	if hub.LobbySize() != 0 {
		t.Errorf("lobby size = %d, want 0", hub.LobbySize())
	}
}

func TestSignalRelayReachesPartner(t *testing.T) {
	hub, mm, _ := newTestHub()
	mm.partners["alice"] = "bob"
	mm.partners["bob"] = "alice"

	a := NewClient(hub, nil, "alice")
	b := NewClient(hub, nil, "bob")
	hub.registerClient(a)
	hub.registerClient(b)

	offer := &Message{
		ID:     "offer-1",
		Type:   MessageTypeCallOffer,
		UserID: "alice",
		Data:   map[string]interface{}{"sdp": "v=0 ..."},
	}
	hub.handleClientMessage(&ClientMessage{Client: a, Message: offer})

	msgs := drain(t, b)
	if len(msgs) != 1 {
		t.Fatalf("partner received %d messages, want 1", len(msgs))
	}
	got := msgs[0]
	if got.Type != MessageTypeCallOffer || got.UserID != "alice" {
		t.Errorf("relayed envelope = (%s from %s), want (call.offer from alice)", got.Type, got.UserID)
	}
	if got.Data["sdp"] != "v=0 ..." {
		t.Errorf("payload not relayed verbatim: %v", got.Data)
	}
	if len(drain(t, a)) != 0 {
		t.Error("sender must not receive its own relayed signal")
	}
}

func TestSignalWithoutPartnerReportsError(t *testing.T) {
	hub, _, _ := newTestHub()
	a := NewClient(hub, nil, "alice")
	hub.registerClient(a)

	hub.handleClientMessage(&ClientMessage{Client: a, Message: &Message{
		ID:   "offer-1",
		Type: MessageTypeCallOffer,
		Data: map[string]interface{}{},
	}})

	msgs := drain(t, a)
	if len(msgs) != 1 || msgs[0].Type != MessageTypeError {
		t.Fatalf("sender should get exactly one error event, got %v", msgs)
	}
}

func TestLeaveAndEndCallReleaseWithReason(t *testing.T) {
	hub, mm, _ := newTestHub()
	a := NewClient(hub, nil, "alice")
	b := NewClient(hub, nil, "bob")
	hub.registerClient(a)
	hub.registerClient(b)

	hub.handleClientMessage(&ClientMessage{Client: a, Message: &Message{Type: MessageTypeLeaveCall}})
	hub.handleClientMessage(&ClientMessage{Client: b, Message: &Message{Type: MessageTypeEndCall}})

	if reason, _ := mm.releaseReason("alice"); reason != matching.ReleaseReasonLeft {
		t.Errorf("alice release reason = %q, want %q", reason, matching.ReleaseReasonLeft)
	}
	if reason, _ := mm.releaseReason("bob"); reason != matching.ReleaseReasonEnded {
		t.Errorf("bob release reason = %q, want %q", reason, matching.ReleaseReasonEnded)
	}
}

func TestRequestMatchDispatchesToEngine(t *testing.T) {
	hub, mm, _ := newTestHub()
	a := NewClient(hub, nil, "alice")
	hub.registerClient(a)

	hub.handleClientMessage(&ClientMessage{Client: a, Message: &Message{Type: MessageTypeRequestMatch}})

	deadline := time.Now().Add(time.Second)
	for {
		mm.mu.Lock()
		n := len(mm.requests)
		mm.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("match request never reached the engine")
		}
		time.Sleep(time.Millisecond)
	}
}
