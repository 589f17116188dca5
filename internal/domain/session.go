package domain

import (
	"strings"
	"time"
)

const CodeLength = 6

// SessionCode is the short shareable key of a session.
type SessionCode string

// ParseCode normalizes user input; codes are always upper case.
func ParseCode(raw string) SessionCode {
	return SessionCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// Session is a room with exactly one host.
type Session struct {
	Code      SessionCode `json:"code"`
	HostID    ConnID      `json:"hostId"`
	CreatedAt time.Time   `json:"createdAt"`
}

func NewSession(code SessionCode, host ConnID) Session {
	return Session{Code: code, HostID: host, CreatedAt: time.Now()}
}
