package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dating-service/internal/matching"
)

var ErrClientDisconnected = fmt.Errorf("client disconnected")

// DefaultLobbyDebounce is how long lobby join/leave bursts are allowed to
// settle before one size broadcast goes out.
const DefaultLobbyDebounce = 300 * time.Millisecond

// Matchmaker is the engine surface the hub dispatches inbound events to.
type Matchmaker interface {
	RequestMatch(ctx context.Context, userID string)
	ReleasePair(userID, reason string)
	PartnerOf(userID string) (string, bool)
}

// PresenceMirror reflects connect/disconnect into external presence
// storage. Failures are logged and swallowed; the in-memory registry is
// the source of truth.
type PresenceMirror interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
}

type ClientMessage struct {
	Client  *Client
	Message *Message
}

// Hub is the presence registry: it owns the per-user connection sets and
// the lobby membership, and dispatches inbound events. Map access is
// guarded by mu; register/unregister/inbound arrive over channels on the
// run loop, while broadcasts may be called from engine goroutines.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Client lookup by user ID; a user may hold several connections
	userClients map[string]map[*Client]bool

	// Users currently inside the dating lobby
	lobby map[string]bool

	register   chan *Client
	unregister chan *Client
	inbound    chan *ClientMessage

	matchmaker Matchmaker
	presence   PresenceMirror

	lobbyDebounce *Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu  sync.RWMutex
	log *slog.Logger
}

func NewHub(presence PresenceMirror, lobbyDebounce time.Duration, log *slog.Logger) *Hub {
	if lobbyDebounce <= 0 {
		lobbyDebounce = DefaultLobbyDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string]map[*Client]bool),
		lobby:       make(map[string]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inbound:     make(chan *ClientMessage),
		presence:    presence,
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
	}
	hub.lobbyDebounce = NewDebouncer(lobbyDebounce, hub.broadcastLobbySize)
	return hub
}

// SetMatchmaker wires the engine in after construction; hub and engine
// reference each other, so one side is attached late.
func (h *Hub) SetMatchmaker(m Matchmaker) {
	h.matchmaker = m
}

// Run drives the hub's event loop until Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.inbound:
			h.handleClientMessage(clientMsg)

		case <-h.ctx.Done():
			h.log.Info("WebSocket hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.lobbyDebounce.Stop()
	h.cancel()
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	first := h.userClients[client.userID] == nil
	if first {
		h.userClients[client.userID] = make(map[*Client]bool)
	}
	h.userClients[client.userID][client] = true
	h.mu.Unlock()

	h.log.Info("Client registered", "clientID", client.id, "userID", client.userID)

	if first && h.presence != nil {
		if err := h.presence.SetUserOnline(h.ctx, client.userID); err != nil {
			h.log.Error("Failed to mirror user online", "userID", client.userID, "error", err)
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	last := false
	if conns, ok := h.userClients[client.userID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.userClients, client.userID)
			last = true
		}
	}
	wasInLobby := false
	if last && h.lobby[client.userID] {
		delete(h.lobby, client.userID)
		wasInLobby = true
	}
	h.mu.Unlock()

	client.closeSendChannel()
	h.log.Info("Client unregistered", "clientID", client.id, "userID", client.userID, "lastConnection", last)

	if !last {
		return
	}

	// The user's final connection is gone: drop the lobby seat, free any
	// queue entry (releasing a partner if matched), and mirror offline.
	if wasInLobby {
		h.lobbyDebounce.Trigger()
	}
	if h.matchmaker != nil {
		h.matchmaker.ReleasePair(client.userID, matching.ReleaseReasonDisconnected)
	}
	if h.presence != nil {
		if err := h.presence.SetUserOffline(h.ctx, client.userID); err != nil {
			h.log.Error("Failed to mirror user offline", "userID", client.userID, "error", err)
		}
	}
}

func (h *Hub) handleClientMessage(cm *ClientMessage) {
	msg := cm.Message
	userID := cm.Client.userID

	switch msg.Type {
	case MessageTypeJoinLobby:
		h.joinLobby(userID)

	case MessageTypeLeaveLobby:
		h.leaveLobby(userID)

	case MessageTypeRequestMatch:
		// The search blocks across retries; never run it on the hub loop.
		go h.matchmaker.RequestMatch(h.ctx, userID)

	case MessageTypeCallOffer, MessageTypeCallAccept:
		h.relaySignal(cm.Client, msg)

	case MessageTypeLeaveCall:
		h.matchmaker.ReleasePair(userID, matching.ReleaseReasonLeft)

	case MessageTypeEndCall:
		h.matchmaker.ReleasePair(userID, matching.ReleaseReasonEnded)

	default:
		cm.Client.sendError("INVALID_TYPE", "Unknown message type")
	}
}

// relaySignal forwards an offer/accept payload verbatim to the sender's
// current partner. No partner means the pair is gone (released or never
// existed); the sender is told instead of silently dropping the call.
func (h *Hub) relaySignal(from *Client, msg *Message) {
	partner, ok := h.matchmaker.PartnerOf(from.userID)
	if !ok {
		from.sendError("NO_PARTNER", "No active call partner")
		return
	}
	h.BroadcastToUser(partner, NewSignalMessage(msg.ID, msg.Type, from.userID, msg.Data))
}

func (h *Hub) joinLobby(userID string) {
	h.mu.Lock()
	h.lobby[userID] = true
	h.mu.Unlock()

	h.log.Debug("User joined lobby", "userID", userID)
	h.lobbyDebounce.Trigger()
}

func (h *Hub) leaveLobby(userID string) {
	h.mu.Lock()
	delete(h.lobby, userID)
	h.mu.Unlock()

	h.log.Debug("User left lobby", "userID", userID)
	h.lobbyDebounce.Trigger()
}

// broadcastLobbySize sends the settled lobby population to every member.
// Runs on the debouncer's timer goroutine.
func (h *Hub) broadcastLobbySize() {
	h.mu.RLock()
	members := make([]string, 0, len(h.lobby))
	for userID := range h.lobby {
		members = append(members, userID)
	}
	h.mu.RUnlock()

	msg := NewLobbySizeMessage(uuid.New().String(), len(members))
	for _, userID := range members {
		h.BroadcastToUser(userID, msg)
	}
}

// BroadcastToUser fans an event out to every live connection of userID.
// A user with no connections is a silent no-op: presence may have dropped
// between decision and delivery.
func (h *Hub) BroadcastToUser(userID string, msg *Message) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.userClients[userID]))
	for client := range h.userClients[userID] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	for _, client := range conns {
		if err := client.SendMessage(msg); err != nil {
			h.log.Debug("Broadcast delivery failed", "userID", userID, "clientID", client.id, "error", err)
		}
	}
}

// LobbySize reports the current lobby population.
func (h *Hub) LobbySize() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.lobby)
}

// ConnectionCount reports the number of live connections for userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// The hub implements matching.Notifier: matchmaking outcomes fan out to
// the user's live connections.

func (h *Hub) QueueEmpty(userID string) {
	h.BroadcastToUser(userID, NewQueueEmptyMessage(uuid.New().String(), userID))
}

func (h *Hub) MatchFound(userID string, self, partner matching.Profile) {
	h.BroadcastToUser(userID, NewMatchFoundMessage(uuid.New().String(), userID, self, partner))
}

func (h *Hub) CallTimeout(userID string) {
	h.BroadcastToUser(userID, NewCallTimeoutMessage(uuid.New().String(), userID))
}

func (h *Hub) CallEnded(userID, partnerID, reason string) {
	h.BroadcastToUser(userID, NewCallEndedMessage(uuid.New().String(), userID, partnerID, reason))
}
