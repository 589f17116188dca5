package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

// RoomManagerImpl maps session codes to live rooms.
// Its lock is never held while a room lock is taken.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.SessionCode]core.RoomService
	codes core.CodeGenerator
}

func NewRoomManager(codes core.CodeGenerator) core.RoomManager {
	if codes == nil {
		codes = core.NewCodeGenerator()
	}
	return &RoomManagerImpl{
		rooms: make(map[domain.SessionCode]core.RoomService),
		codes: codes,
	}
}

// Create registers a new session hosted by host under a code no live session uses.
func (f *RoomManagerImpl) Create(host core.Member) core.RoomService {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := f.codes.Generate()
	for attempts := 1; ; attempts++ {
		if _, taken := f.rooms[code]; !taken {
			break
		}
		log.Debug().Str("module", "app.rooms").Str("code", string(code)).Int("attempt", attempts).Msg("code collision")
		code = f.codes.Generate()
	}
	room := core.NewRoomService(code, host)
	f.rooms[code] = room
	log.Info().Str("module", "app.rooms").Str("code", string(code)).Str("host", string(host.ID)).Msg("session created")
	return room
}

func (f *RoomManagerImpl) Get(code domain.SessionCode) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[code]
	return room, ok
}

// Remove deletes code only while it still maps to room.
func (f *RoomManagerImpl) Remove(code domain.SessionCode, room core.RoomService) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.rooms[code]; !ok || cur != room {
		return false
	}
	delete(f.rooms, code)
	log.Info().Str("module", "app.rooms").Str("code", string(code)).Msg("session removed")
	return true
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	rooms := make([]core.RoomService, 0, len(f.rooms))
	for _, r := range f.rooms {
		rooms = append(rooms, r)
	}
	f.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		s := r.Session()
		out = append(out, core.RoomInfo{
			Code:        s.Code,
			HostID:      s.HostID,
			CreatedAt:   s.CreatedAt,
			MemberCount: r.MemberCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
