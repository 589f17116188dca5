package orch

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

const (
	actionControlPlayback = "control playback"
	actionTransferHost    = "transfer host"
	actionProvideState    = "provide state"
)

// ProvideState answers a request-state by sending the host's state to one member.
func (o *Orchestrator) ProvideState(caller, forUser domain.ConnID, state json.RawMessage) error {
	room, ok := o.currentRoom(caller)
	if !ok {
		return domain.ErrInvalidSession
	}
	f, err := o.encode(domain.EventSyncState, state)
	if err != nil {
		return err
	}
	var sendErr error
	err = room.AsHost(caller, func() {
		sendErr = o.Registry.Send(forUser, f)
	})
	switch {
	case errors.Is(err, domain.ErrNotHost):
		return &domain.NotHostError{Action: actionProvideState}
	case errors.Is(err, core.ErrRoomClosed):
		return domain.ErrInvalidSession
	case err != nil:
		return err
	}
	if sendErr != nil {
		log.Debug().Err(sendErr).Str("module", "orch").Str("for", string(forUser)).Msg("state not delivered")
	}
	return nil
}

// PlaybackControl relays a host command to every member, host included.
func (o *Orchestrator) PlaybackControl(caller domain.ConnID, data json.RawMessage) error {
	room, ok := o.currentRoom(caller)
	if !ok {
		return &domain.NotHostError{Action: actionControlPlayback}
	}
	f, err := o.encode(domain.EventPlaybackControl, data)
	if err != nil {
		return err
	}
	res, err := room.BroadcastAsHost(caller, f, core.Everyone)
	if err != nil {
		return &domain.NotHostError{Action: actionControlPlayback}
	}
	o.applyPolicy(room, res)
	return nil
}

// SyncState relays host state to everyone but the host. Non-hosts are ignored.
func (o *Orchestrator) SyncState(caller domain.ConnID, state json.RawMessage) {
	room, ok := o.currentRoom(caller)
	if !ok {
		return
	}
	f, err := o.encode(domain.EventSyncState, state)
	if err != nil {
		return
	}
	res, err := room.BroadcastAsHost(caller, f, core.Others)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(caller)).Msg("sync-state ignored")
		return
	}
	o.applyPolicy(room, res)
}

// TransferHost hands authority over code to newHost. newHost is not checked for membership,
// but a newHost without a live connection ends the session.
func (o *Orchestrator) TransferHost(caller domain.ConnID, code domain.SessionCode, newHost domain.ConnID) error {
	room, ok := o.Rooms.Get(code)
	if !ok {
		return domain.ErrInvalidSession
	}
	f, err := o.encode(domain.EventHostTransferred, domain.HostTransferred{NewHostID: newHost})
	if err != nil {
		return err
	}
	res, err := room.TransferHost(caller, newHost, f)
	switch {
	case errors.Is(err, domain.ErrNotHost):
		return &domain.NotHostError{Action: actionTransferHost}
	case errors.Is(err, core.ErrRoomClosed):
		return domain.ErrInvalidSession
	case err != nil:
		return err
	}
	o.applyPolicy(room, res)
	// The new host may have disconnected while the transfer was in flight.
	if _, ok := o.Registry.Signal(newHost); !ok {
		log.Info().Str("module", "orch").Str("code", string(code)).Str("to", string(newHost)).Msg("new host is gone, ending session")
		o.leave(newHost, code)
	}
	return nil
}
