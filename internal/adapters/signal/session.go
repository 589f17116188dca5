package signal

import (
	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/domain"
)

type joinPayload struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"max=256"`
}

type leavePayload struct {
	Code string `json:"code" validate:"required"`
}

func (ctl *SignalWSController) handleCreate(cl *client, env envelope) {
	code, err := ctl.Orch.CreateSession(cl.id)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(cl.id)).Msg("create session")
		ctl.sendError(cl.conn, err)
		ctl.ack(cl.conn, env, false)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cl.id)).Str("code", string(code)).Msg("create")
	ctl.ack(cl.conn, env, true)
}

func (ctl *SignalWSController) handleJoin(cl *client, env envelope) {
	var p joinPayload
	if err := ctl.decode(env, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(cl.conn, domain.ErrInvalidSession)
		ctl.ack(cl.conn, env, false)
		return
	}
	res, err := ctl.Orch.JoinSession(cl.id, domain.ParseCode(p.Code), p.Name)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("conn", string(cl.id)).Str("code", p.Code).Msg("join rejected")
		ctl.sendError(cl.conn, err)
		ctl.ack(cl.conn, env, false)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cl.id)).Str("code", string(res.Code)).Msg("join")
	ctl.ack(cl.conn, env, true)
}

func (ctl *SignalWSController) handleLeave(cl *client, env envelope) {
	var p leavePayload
	if err := ctl.decode(env, &p); err != nil {
		if code, ok := ctl.Orch.Registry.SessionOf(cl.id); ok {
			p.Code = string(code)
		} else {
			ctl.ack(cl.conn, env, false)
			return
		}
	}
	log.Info().Str("module", "signal").Str("conn", string(cl.id)).Str("code", p.Code).Msg("leave")
	ctl.Orch.LeaveSession(cl.id, domain.ParseCode(p.Code))
	ctl.ack(cl.conn, env, true)
}
