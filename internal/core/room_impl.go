package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/domain"
)

// roomImpl is a threadsafe in-memory session.
// It never closes adapter-owned resources.
type roomImpl struct {
	mu      sync.RWMutex
	session domain.Session
	members map[domain.ConnID]Member
	closed  bool
}

// NewRoomService creates a session whose first member is its host.
func NewRoomService(code domain.SessionCode, host Member) RoomService {
	r := &roomImpl{
		session: domain.NewSession(code, host.ID),
		members: make(map[domain.ConnID]Member),
	}
	r.members[host.ID] = host
	return r
}

func (r *roomImpl) Session() domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

func (r *roomImpl) IsHost(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.closed && r.session.HostID == id
}

func (r *roomImpl) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) AddMember(m Member, announce func(s domain.Session) Frame) (domain.Session, PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.Session{}, PublishResult{}, ErrRoomClosed
	}
	r.members[m.ID] = m
	log.Info().Str("module", "core.room").Str("code", string(r.session.Code)).Str("conn", string(m.ID)).Msg("member added")

	var res PublishResult
	if announce != nil {
		res = r.publishLocked("", announce(r.session), Everyone)
	}
	return r.session, res, nil
}

func (r *roomImpl) Leave(id domain.ConnID, left, ended Frame) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return LeaveResult{}, ErrRoomClosed
	}
	_, isMember := r.members[id]
	isHost := r.session.HostID == id
	if !isMember && !isHost {
		return LeaveResult{}, nil
	}
	delete(r.members, id)
	log.Info().Str("module", "core.room").Str("code", string(r.session.Code)).Str("conn", string(id)).Bool("host", isHost).Msg("member removed")

	res := LeaveResult{Removed: true}
	if isMember {
		res.Published = r.publishLocked("", left, Everyone)
	}
	if !isHost {
		return res, nil
	}

	fin := r.publishLocked("", ended, Everyone)
	res.Published.SendTo += fin.SendTo
	res.Published.Dropped = append(res.Published.Dropped, fin.Dropped...)
	res.Ended = true
	res.Remaining = make([]domain.ConnID, 0, len(r.members))
	for mid := range r.members {
		res.Remaining = append(res.Remaining, mid)
	}
	r.members = make(map[domain.ConnID]Member)
	r.closed = true
	log.Info().Str("module", "core.room").Str("code", string(r.session.Code)).Int("notified", len(res.Remaining)).Msg("session ended")
	return res, nil
}

func (r *roomImpl) Broadcast(from domain.ConnID, data Frame, to Audience) (PublishResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return PublishResult{}, ErrRoomClosed
	}
	return r.publishLocked(from, data, to), nil
}

func (r *roomImpl) BroadcastAsHost(caller domain.ConnID, data Frame, to Audience) (PublishResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return PublishResult{}, ErrRoomClosed
	}
	if r.session.HostID != caller {
		return PublishResult{}, domain.ErrNotHost
	}
	return r.publishLocked(caller, data, to), nil
}

func (r *roomImpl) TransferHost(caller, newHost domain.ConnID, announce Frame) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, ErrRoomClosed
	}
	if r.session.HostID != caller {
		return PublishResult{}, domain.ErrNotHost
	}
	r.session.HostID = newHost
	log.Info().Str("module", "core.room").Str("code", string(r.session.Code)).Str("from", string(caller)).Str("to", string(newHost)).Msg("host transferred")
	return r.publishLocked("", announce, Everyone), nil
}

func (r *roomImpl) AsHost(caller domain.ConnID, fn func()) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.session.HostID != caller {
		return domain.ErrNotHost
	}
	fn()
	return nil
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.members))
	for id, m := range r.members {
		out = append(out, MemberDTO{ID: id, Name: m.Name, IsHost: id == r.session.HostID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// publishLocked fans data out without blocking; callers hold r.mu.
func (r *roomImpl) publishLocked(from domain.ConnID, data Frame, to Audience) PublishResult {
	res := PublishResult{}
	for id, m := range r.members {
		if to == Others && id == from {
			continue
		}
		if err := m.Signal.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
