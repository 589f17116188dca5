package orch

import (
	"encoding/json"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

// ChatMessage broadcasts text to the caller's session, sender included.
// The sender's recorded name wins over the supplied one.
func (o *Orchestrator) ChatMessage(caller domain.ConnID, user, message string, at json.RawMessage) {
	room, ok := o.currentRoom(caller)
	if !ok {
		return
	}
	p, _ := o.Registry.Participant(caller)
	name := p.Name
	if name == "" {
		name = domain.NormalizeName(user)
	}
	o.publish(room, caller, domain.EventChatMessage, domain.ChatMessage{
		ID:      ulid.Make().String(),
		User:    name,
		Message: message,
		Time:    at,
	})
}

// MediaShare announces an uploaded file to the session named by code.
func (o *Orchestrator) MediaShare(caller domain.ConnID, code domain.SessionCode, fileURL, fileType, user string) {
	room, ok := o.Rooms.Get(code)
	if !ok {
		return
	}
	if strings.TrimSpace(user) == "" {
		p, _ := o.Registry.Participant(caller)
		user = p.DisplayName()
	}
	o.publish(room, caller, domain.EventMediaShare, domain.MediaShare{User: user, FileURL: fileURL, FileType: fileType})
}

func (o *Orchestrator) publish(room core.RoomService, from domain.ConnID, t domain.EventType, payload any) {
	f, err := o.encode(t, payload)
	if err != nil {
		return
	}
	res, err := room.Broadcast(from, f, core.Everyone)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("event", string(t)).Msg("broadcast skipped")
		return
	}
	o.applyPolicy(room, res)
}
