package orch

import (
	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/app"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

// Orchestrator coordinates connection contexts and sessions.
// Every handler runs to completion for one caller; errors are meant for that caller only.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
}

func New(registry *app.Registry, rooms core.RoomManager, policy app.Policy) *Orchestrator {
	return &Orchestrator{Registry: registry, Rooms: rooms, Policy: policy}
}

// Connect registers a fresh connection and greets it with its id.
func (o *Orchestrator) Connect(id domain.ConnID, sig core.SignalConnection, cancel func()) {
	o.Registry.BindSignal(id, sig, cancel)
	o.emit(id, domain.EventConnected, domain.Connected{UserID: id})
}

// Disconnect is an implicit leave followed by dropping the connection context.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	if code, ok := o.Registry.SessionOf(id); ok {
		o.leave(id, code)
	}
	if _, ok := o.Registry.Unbind(id); ok {
		log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnected")
	}
	// A transfer-host racing this disconnect may have handed id a room after it left.
	o.endHostedBy(id)
}

// endHostedBy ends every live session whose host is id.
func (o *Orchestrator) endHostedBy(id domain.ConnID) {
	for _, info := range o.Rooms.List() {
		if info.HostID == id {
			o.leave(id, info.Code)
		}
	}
}

func (o *Orchestrator) emit(to domain.ConnID, t domain.EventType, payload any) {
	f, err := core.EncodeEvent(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", string(t)).Msg("encode failed")
		return
	}
	if err := o.Registry.Send(to, f); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(to)).Str("event", string(t)).Msg("send failed")
	}
}

func (o *Orchestrator) encode(t domain.EventType, payload any) (core.Frame, error) {
	f, err := core.EncodeEvent(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", string(t)).Msg("encode failed")
		return nil, domain.ErrBadPayload
	}
	return f, nil
}

// applyPolicy handles connections whose buffers overflowed during a broadcast.
func (o *Orchestrator) applyPolicy(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("conn", string(slow)).Msg("kicking slow consumer")
			o.Registry.Cancel(slow)
		case app.NoAction:
		}
	}
}

// currentRoom resolves the caller's session through its membership.
func (o *Orchestrator) currentRoom(id domain.ConnID) (core.RoomService, bool) {
	code, ok := o.Registry.SessionOf(id)
	if !ok {
		return nil, false
	}
	return o.Rooms.Get(code)
}
