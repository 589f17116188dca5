package domain

import "encoding/json"

type EventType string

// Inbound events.
const (
	EventCreateSession   EventType = "create-session"
	EventJoinSession     EventType = "join-session"
	EventProvideState    EventType = "provide-state"
	EventPlaybackControl EventType = "playback-control"
	EventSyncState       EventType = "sync-state"
	EventTransferHost    EventType = "transfer-host"
	EventChatMessage     EventType = "chat-message"
	EventMediaShare      EventType = "media-share"
	EventLeaveSession    EventType = "leave-session"
	EventPing            EventType = "ping"
)

// Outbound events. playback-control, sync-state, chat-message and
// media-share are reused in both directions.
const (
	EventConnected       EventType = "connected"
	EventSessionCreated  EventType = "session-created"
	EventSessionJoined   EventType = "session-joined"
	EventUserJoined      EventType = "user-joined"
	EventRequestState    EventType = "request-state"
	EventHostTransferred EventType = "host-transferred"
	EventUserLeft        EventType = "user-left"
	EventSessionEnded    EventType = "session-ended"
	EventAck             EventType = "ack"
	EventError           EventType = "error"
	EventPong            EventType = "pong"
)

const SessionEndedMessage = "Host has left the session"

// Event is the wire envelope in both directions.
type Event struct {
	Type    EventType `json:"type"`
	ID      string    `json:"id,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

type Connected struct {
	UserID ConnID `json:"userId"`
}

type SessionCreated struct {
	Code SessionCode `json:"code"`
}

type SessionJoined struct {
	Code   SessionCode `json:"code"`
	IsHost bool        `json:"isHost"`
	Name   string      `json:"name"`
}

type UserJoined struct {
	UserID ConnID `json:"userId"`
	Name   string `json:"name,omitempty"`
	IsHost bool   `json:"isHost"`
}

type RequestState struct {
	ForUser ConnID `json:"forUser"`
}

type HostTransferred struct {
	NewHostID ConnID `json:"newHostId"`
}

type ChatMessage struct {
	ID      string          `json:"id"`
	User    string          `json:"user"`
	Message string          `json:"message"`
	Time    json.RawMessage `json:"time,omitempty"`
}

type MediaShare struct {
	User     string `json:"user"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
}

type UserLeft struct {
	UserID ConnID `json:"userId"`
	Name   string `json:"name"`
}

type SessionEnded struct {
	Message string `json:"message"`
}

type Ack struct {
	OK bool `json:"ok"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
