package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

var ErrUnknownConnection = errors.New("unknown connection")

type connEntry struct {
	Participant domain.Participant
	Signal      core.SignalConnection
	Cancel      context.CancelFunc
}

// Registry holds one connection context per live connection.
// It is the only place that knows which session a connection belongs to.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) BindSignal(id domain.ConnID, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{
		Participant: *domain.NewParticipant(id),
		Signal:      sig,
		Cancel:      cancel,
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound signal")
}

// Unbind drops the connection context and returns what it last held.
func (r *Registry) Unbind(id domain.ConnID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind signal")
	return e.Participant, true
}

func (r *Registry) Participant(id domain.ConnID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Participant, true
	}
	return domain.Participant{}, false
}

func (r *Registry) Signal(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Signal, true
	}
	return nil, false
}

// SessionOf resolves the caller's current session by membership.
func (r *Registry) SessionOf(id domain.ConnID) (domain.SessionCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.Participant.Code == "" {
		return "", false
	}
	return e.Participant.Code, true
}

// JoinSession records membership. An empty name keeps the recorded one.
func (r *Registry) JoinSession(id domain.ConnID, code domain.SessionCode, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Participant.Code = code
	if name != "" {
		e.Participant.Name = name
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("code", string(code)).Str("name", e.Participant.Name).Msg("updated session")
	return true
}

// LeaveSession clears membership only if it still points at code.
func (r *Registry) LeaveSession(id domain.ConnID, code domain.SessionCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.Participant.Code != code {
		return false
	}
	e.Participant.Code = ""
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("code", string(code)).Msg("removed session association")
	return true
}

// Send delivers a frame to exactly one connection.
func (r *Registry) Send(id domain.ConnID, f core.Frame) error {
	sig, ok := r.Signal(id)
	if !ok {
		return ErrUnknownConnection
	}
	return sig.TrySend(f)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Cancel stops the connection's pumps; the adapter then reports a disconnect.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}
