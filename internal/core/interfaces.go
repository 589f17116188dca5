package core

import (
	"errors"
	"time"

	"github.com/vardhanngg/socket-v/internal/domain"
)

// Frame is an encoded outbound event.
type Frame []byte

var (
	ErrBackpressure = errors.New("send buffer full")
	ErrRoomClosed   = errors.New("room closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Member binds a participant to its transport endpoint.
// This is what a room stores and fans out to.
type Member struct {
	ID     domain.ConnID
	Name   string
	Signal SignalConnection
}

// Audience selects who receives a room broadcast.
type Audience int

const (
	Everyone Audience = iota
	Others
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}

// LeaveResult describes what happened to the room after a member left.
type LeaveResult struct {
	Removed   bool
	Ended     bool
	Remaining []domain.ConnID
	Published PublishResult
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID     domain.ConnID `json:"userId"`
	Name   string        `json:"name"`
	IsHost bool          `json:"isHost"`
}

// RoomService is the core-facing API of a session.
// It owns the membership set and host authority but never touches transport resources.
// Host checks and the sends they guard happen under the same lock.
type RoomService interface {
	Session() domain.Session
	IsHost(id domain.ConnID) bool
	Closed() bool
	MemberCount() int
	MembersSnapshot() []MemberDTO

	// AddMember registers m and announces it with the frame built by announce.
	AddMember(m Member, announce func(s domain.Session) Frame) (domain.Session, PublishResult, error)
	// Leave removes id. When id is the host the room ends and stops accepting members.
	Leave(id domain.ConnID, left, ended Frame) (LeaveResult, error)

	Broadcast(from domain.ConnID, data Frame, to Audience) (PublishResult, error)
	BroadcastAsHost(caller domain.ConnID, data Frame, to Audience) (PublishResult, error)
	TransferHost(caller, newHost domain.ConnID, announce Frame) (PublishResult, error)
	// AsHost runs fn while caller is guaranteed to be the host. fn must not call back into the room.
	AsHost(caller domain.ConnID, fn func()) error
}

type RoomInfo struct {
	Code        domain.SessionCode `json:"code"`
	HostID      domain.ConnID      `json:"hostId"`
	CreatedAt   time.Time          `json:"createdAt"`
	MemberCount int                `json:"memberCount"`
}

type RoomDetails struct {
	RoomInfo
	Members []MemberDTO `json:"members"`
}

// RoomManager is the session registry keyed by code.
type RoomManager interface {
	Create(host Member) RoomService
	Get(code domain.SessionCode) (RoomService, bool)
	Remove(code domain.SessionCode, room RoomService) bool
	List() []RoomInfo
}
