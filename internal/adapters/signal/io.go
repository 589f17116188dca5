package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/domain"
)

const writeWait = 5 * time.Second

type envelope struct {
	Type    domain.EventType `json:"type"`
	ID      string           `json:"id,omitempty"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.opts.PingPeriod * 10 / 9
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, cl *client) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(cl.id)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(cl.id)
		cl.conn.Close()
	}()

	ws := cl.conn.conn
	ws.SetReadLimit(ctl.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(cl.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(cl.id)).Msg("readPump read error")
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
			ctl.handleSignal(cl, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(cl *client, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(cl.id)).Msg("bad json")
		ctl.sendError(cl.conn, domain.ErrBadPayload)
		return
	}

	switch env.Type {
	case domain.EventCreateSession:
		ctl.handleCreate(cl, env)
	case domain.EventJoinSession:
		ctl.handleJoin(cl, env)
	case domain.EventLeaveSession:
		ctl.handleLeave(cl, env)
	case domain.EventProvideState:
		ctl.handleProvideState(cl, env)
	case domain.EventPlaybackControl:
		ctl.handlePlaybackControl(cl, env)
	case domain.EventSyncState:
		ctl.handleSyncState(cl, env)
	case domain.EventTransferHost:
		ctl.handleTransferHost(cl, env)
	case domain.EventChatMessage:
		ctl.handleChat(cl, env)
	case domain.EventMediaShare:
		ctl.handleMediaShare(cl, env)
	case domain.EventPing:
		ctl.handlePing(cl.conn, env)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown signal")
	}
}

// decode fills v from the envelope payload and validates it.
func (ctl *SignalWSController) decode(env envelope, v any) error {
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return err
		}
	}
	return ctl.validate.Struct(v)
}

func (ctl *SignalWSController) sendEvent(c *WsSignalConn, ev domain.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, err error) {
	ctl.sendEvent(c, domain.Event{Type: domain.EventError, Payload: domain.ErrorMessage{Message: err.Error()}})
}

// ack answers requests that carried an id; fire-and-forget requests get nothing.
func (ctl *SignalWSController) ack(c *WsSignalConn, env envelope, ok bool) {
	if env.ID == "" {
		return
	}
	ctl.sendEvent(c, domain.Event{Type: domain.EventAck, ID: env.ID, Payload: domain.Ack{OK: ok}})
}
