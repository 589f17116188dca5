package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/domain"
)

type provideStatePayload struct {
	ForUser string          `json:"forUser" validate:"required"`
	State   json.RawMessage `json:"state"`
}

type transferHostPayload struct {
	Code      string `json:"code" validate:"required"`
	NewHostID string `json:"newHostId" validate:"required"`
}

func (ctl *SignalWSController) handleProvideState(cl *client, env envelope) {
	var p provideStatePayload
	if err := ctl.decode(env, &p); err != nil {
		ctl.sendError(cl.conn, domain.ErrBadPayload)
		return
	}
	if err := ctl.Orch.ProvideState(cl.id, domain.ConnID(p.ForUser), p.State); err != nil {
		ctl.sendError(cl.conn, err)
	}
}

func (ctl *SignalWSController) handlePlaybackControl(cl *client, env envelope) {
	if err := ctl.Orch.PlaybackControl(cl.id, env.Payload); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(cl.id)).Msg("playback rejected")
		ctl.sendError(cl.conn, err)
	}
}

func (ctl *SignalWSController) handleSyncState(cl *client, env envelope) {
	ctl.Orch.SyncState(cl.id, env.Payload)
}

func (ctl *SignalWSController) handleTransferHost(cl *client, env envelope) {
	var p transferHostPayload
	if err := ctl.decode(env, &p); err != nil {
		ctl.sendError(cl.conn, domain.ErrBadPayload)
		return
	}
	if err := ctl.Orch.TransferHost(cl.id, domain.ParseCode(p.Code), domain.ConnID(p.NewHostID)); err != nil {
		ctl.sendError(cl.conn, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cl.id)).Str("to", p.NewHostID).Msg("transfer host")
}
