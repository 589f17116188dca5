package signal

import "github.com/vardhanngg/socket-v/internal/domain"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn, env envelope) {
	ctl.sendEvent(conn, domain.Event{Type: domain.EventPong, ID: env.ID})
}
