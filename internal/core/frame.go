package core

import (
	"encoding/json"

	"github.com/vardhanngg/socket-v/internal/domain"
)

// EncodeEvent builds the wire frame for a server-originated event.
func EncodeEvent(t domain.EventType, payload any) (Frame, error) {
	return json.Marshal(domain.Event{Type: t, Payload: payload})
}
