package websocket

import (
	"fmt"
	"time"

	"dating-service/internal/matching"
)

// MessageType enumerates every event on the wire. The set is closed:
// anything else is rejected before dispatch.
type MessageType string

const (
	// Inbound (client -> server)
	MessageTypeJoinLobby    MessageType = "lobby.join"
	MessageTypeLeaveLobby   MessageType = "lobby.leave"
	MessageTypeRequestMatch MessageType = "match.request"
	MessageTypeCallOffer    MessageType = "call.offer"
	MessageTypeCallAccept   MessageType = "call.accept"
	MessageTypeLeaveCall    MessageType = "call.leave"
	MessageTypeEndCall      MessageType = "call.end"

	// Outbound (server -> client)
	MessageTypeLobbySize   MessageType = "lobby.size"
	MessageTypeQueueEmpty  MessageType = "match.queue_empty"
	MessageTypeMatchFound  MessageType = "match.found"
	MessageTypeCallTimeout MessageType = "call.timeout"
	MessageTypeCallEnded   MessageType = "call.ended"
	MessageTypeCallLeft    MessageType = "call.left"
	MessageTypeError       MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// IsValid checks membership in the closed set.
func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeJoinLobby, MessageTypeLeaveLobby, MessageTypeRequestMatch,
		MessageTypeCallOffer, MessageTypeCallAccept, MessageTypeLeaveCall, MessageTypeEndCall,
		MessageTypeLobbySize, MessageTypeQueueEmpty, MessageTypeMatchFound,
		MessageTypeCallTimeout, MessageTypeCallEnded, MessageTypeCallLeft, MessageTypeError:
		return true
	default:
		return false
	}
}

// Inbound reports whether clients are allowed to send this type.
func (mt MessageType) Inbound() bool {
	switch mt {
	case MessageTypeJoinLobby, MessageTypeLeaveLobby, MessageTypeRequestMatch,
		MessageTypeCallOffer, MessageTypeCallAccept, MessageTypeLeaveCall, MessageTypeEndCall:
		return true
	default:
		return false
	}
}

// Message is the wire envelope for every event.
type Message struct {
	ID        string                 `json:"id"`
	Type      MessageType            `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
	UserID    string                 `json:"user_id,omitempty"`
}

// Validate checks the envelope before dispatch.
func (m *Message) Validate() error {
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid message type: %s", m.Type)
	}
	if m.Data == nil {
		m.Data = make(map[string]interface{})
	}
	return nil
}

// Typed payloads for outbound events.

type LobbySizeData struct {
	Size int `json:"size"`
}

type MatchFoundData struct {
	Profile        matching.Profile `json:"profile"`         // the receiver's own profile
	PartnerProfile matching.Profile `json:"partner_profile"` // the matched partner's profile
}

type CallEndedData struct {
	PartnerID string `json:"partner_id"`
	Reason    string `json:"reason"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates an outbound envelope with the given type and payload.
func NewMessage(id string, msgType MessageType, userID string, data map[string]interface{}) *Message {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Message{
		ID:        id,
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// NewLobbySizeMessage reports the current lobby population.
func NewLobbySizeMessage(id string, size int) *Message {
	return NewMessage(id, MessageTypeLobbySize, "", map[string]interface{}{
		"size": size,
	})
}

// NewQueueEmptyMessage tells a fresh requester nobody else is seeking yet.
func NewQueueEmptyMessage(id, userID string) *Message {
	return NewMessage(id, MessageTypeQueueEmpty, userID, nil)
}

// NewMatchFoundMessage carries both profiles to one side of a new pair.
func NewMatchFoundMessage(id, userID string, self, partner matching.Profile) *Message {
	return NewMessage(id, MessageTypeMatchFound, userID, map[string]interface{}{
		"profile":         self,
		"partner_profile": partner,
	})
}

// NewCallTimeoutMessage reports an exhausted matchmaking search.
func NewCallTimeoutMessage(id, userID string) *Message {
	return NewMessage(id, MessageTypeCallTimeout, userID, nil)
}

// NewCallEndedMessage reports a released pair. The type is call.left when
// the partner walked out mid-call, call.ended otherwise.
func NewCallEndedMessage(id, userID, partnerID, reason string) *Message {
	msgType := MessageTypeCallEnded
	if reason == matching.ReleaseReasonLeft {
		msgType = MessageTypeCallLeft
	}
	return NewMessage(id, msgType, userID, map[string]interface{}{
		"partner_id": partnerID,
		"reason":     reason,
	})
}

// NewErrorMessage creates an error event.
func NewErrorMessage(id, userID, code, message string) *Message {
	return NewMessage(id, MessageTypeError, userID, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

// NewSignalMessage wraps a relayed signaling payload (offer/accept). The
// payload passes through verbatim; only the sender id is stamped on.
func NewSignalMessage(id string, msgType MessageType, fromUserID string, payload map[string]interface{}) *Message {
	return NewMessage(id, msgType, fromUserID, payload)
}
