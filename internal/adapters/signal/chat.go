package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/domain"
)

type chatPayload struct {
	User    string          `json:"user" validate:"max=256"`
	Message string          `json:"message" validate:"required,max=4000"`
	Time    json.RawMessage `json:"time"`
}

type mediaSharePayload struct {
	Code     string `json:"code" validate:"required"`
	FileURL  string `json:"fileUrl" validate:"required"`
	FileType string `json:"fileType"`
	User     string `json:"user" validate:"max=256"`
}

func (ctl *SignalWSController) allow(cl *client) bool {
	if ctl.Limiter == nil || ctl.Limiter.Allow(cl.rateKey()) {
		return true
	}
	log.Warn().Str("module", "signal").Str("conn", string(cl.id)).Msg("rate limited")
	ctl.sendError(cl.conn, domain.ErrRateLimited)
	return false
}

func (ctl *SignalWSController) handleChat(cl *client, env envelope) {
	if !ctl.allow(cl) {
		return
	}
	var p chatPayload
	if err := ctl.decode(env, &p); err != nil {
		ctl.sendError(cl.conn, domain.ErrBadPayload)
		return
	}
	ctl.Orch.ChatMessage(cl.id, p.User, p.Message, p.Time)
}

func (ctl *SignalWSController) handleMediaShare(cl *client, env envelope) {
	if !ctl.allow(cl) {
		return
	}
	var p mediaSharePayload
	if err := ctl.decode(env, &p); err != nil {
		ctl.sendError(cl.conn, domain.ErrBadPayload)
		return
	}
	ctl.Orch.MediaShare(cl.id, domain.ParseCode(p.Code), p.FileURL, p.FileType, p.User)
}
