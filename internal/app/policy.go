package app

import (
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a connection whose send buffer overflowed.
type Policy interface {
	OnBackPressure(room core.RoomService, member domain.ConnID) BackpressureAction
}

// SimplePolicy disconnects slow consumers.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.RoomService, domain.ConnID) BackpressureAction {
	return KickMember
}

// TolerantPolicy keeps slow consumers and lets frames drop.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(core.RoomService, domain.ConnID) BackpressureAction {
	return NoAction
}
