package orch

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/app"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

type JoinResult struct {
	Code   domain.SessionCode
	IsHost bool
	Name   string
}

// CreateSession makes the caller host of a new session, leaving any previous one first.
func (o *Orchestrator) CreateSession(caller domain.ConnID) (domain.SessionCode, error) {
	sig, ok := o.Registry.Signal(caller)
	if !ok {
		return "", app.ErrUnknownConnection
	}
	if prev, ok := o.Registry.SessionOf(caller); ok {
		o.leave(caller, prev)
	}
	p, _ := o.Registry.Participant(caller)

	room := o.Rooms.Create(core.Member{ID: caller, Name: p.DisplayName(), Signal: sig})
	code := room.Session().Code
	o.Registry.JoinSession(caller, code, "")

	o.emit(caller, domain.EventSessionCreated, domain.SessionCreated{Code: code})
	o.emit(caller, domain.EventUserJoined, domain.UserJoined{UserID: caller, Name: p.Name, IsHost: true})
	log.Info().Str("module", "orch").Str("conn", string(caller)).Str("code", string(code)).Msg("session created")
	return code, nil
}

// JoinSession adds the caller to code and asks the host for the current state.
func (o *Orchestrator) JoinSession(caller domain.ConnID, code domain.SessionCode, name string) (JoinResult, error) {
	room, ok := o.Rooms.Get(code)
	if !ok {
		return JoinResult{}, domain.ErrInvalidSession
	}
	sig, ok := o.Registry.Signal(caller)
	if !ok {
		return JoinResult{}, app.ErrUnknownConnection
	}
	name = domain.NormalizeName(name)

	var announceErr error
	s, res, err := room.AddMember(core.Member{ID: caller, Name: name, Signal: sig}, func(s domain.Session) core.Frame {
		f, err := o.encode(domain.EventUserJoined, domain.UserJoined{UserID: caller, Name: name, IsHost: s.HostID == caller})
		announceErr = err
		return f
	})
	if err != nil {
		if errors.Is(err, core.ErrRoomClosed) {
			return JoinResult{}, domain.ErrInvalidSession
		}
		return JoinResult{}, err
	}

	// Only an accepted join touches the previous session and the recorded name.
	if prev, ok := o.Registry.SessionOf(caller); ok && prev != code {
		o.leave(caller, prev)
	}
	o.Registry.JoinSession(caller, code, name)
	if room.Closed() {
		o.Registry.LeaveSession(caller, code)
	}
	if announceErr != nil {
		log.Warn().Err(announceErr).Str("module", "orch").Str("code", string(code)).Msg("join announce skipped")
	}
	o.applyPolicy(room, res)

	isHost := s.HostID == caller
	o.emit(caller, domain.EventSessionJoined, domain.SessionJoined{Code: code, IsHost: isHost, Name: name})
	if !isHost {
		o.emit(s.HostID, domain.EventRequestState, domain.RequestState{ForUser: caller})
	}
	log.Info().Str("module", "orch").Str("conn", string(caller)).Str("code", string(code)).Bool("host", isHost).Msg("joined session")
	return JoinResult{Code: code, IsHost: isHost, Name: name}, nil
}

// LeaveSession removes the caller from code. Unknown codes are ignored.
func (o *Orchestrator) LeaveSession(caller domain.ConnID, code domain.SessionCode) {
	o.leave(caller, code)
}

func (o *Orchestrator) leave(caller domain.ConnID, code domain.SessionCode) {
	room, ok := o.Rooms.Get(code)
	if !ok {
		o.Registry.LeaveSession(caller, code)
		return
	}
	p, _ := o.Registry.Participant(caller)
	left, err := o.encode(domain.EventUserLeft, domain.UserLeft{UserID: caller, Name: p.DisplayName()})
	if err != nil {
		return
	}
	ended, err := o.encode(domain.EventSessionEnded, domain.SessionEnded{Message: domain.SessionEndedMessage})
	if err != nil {
		return
	}

	res, err := room.Leave(caller, left, ended)
	o.Registry.LeaveSession(caller, code)
	if err != nil {
		// The room already ended; whoever closed it also unregisters it.
		return
	}
	if !res.Removed {
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(caller)).Str("code", string(code)).Msg("left session")

	if res.Ended {
		o.Rooms.Remove(code, room)
		for _, id := range res.Remaining {
			o.Registry.LeaveSession(id, code)
		}
		log.Info().Str("module", "orch").Str("code", string(code)).Int("members", len(res.Remaining)).Msg("session ended by host")
	}
	o.applyPolicy(room, res.Published)
}
