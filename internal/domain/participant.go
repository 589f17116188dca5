// Package domain contains entities without transport or lifecycle logic, just meta-data.
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultDisplayName = "Guest"
	MaxDisplayNameLen  = 36
)

// ConnID identifies one live connection. It is never reused.
type ConnID string

// Participant is the connection context: who is talking and which session
// they currently belong to. Code is empty when the participant is in no session.
type Participant struct {
	ID   ConnID      `json:"userId"`
	Name string      `json:"name,omitempty"`
	Code SessionCode `json:"code,omitempty"`
}

// NewParticipant keeps construction obvious for adapters.
func NewParticipant(id ConnID) *Participant {
	return &Participant{ID: id}
}

func (p *Participant) InSession() bool { return p.Code != "" }

// DisplayName returns the recorded name or the default one.
func (p *Participant) DisplayName() string {
	if p.Name == "" {
		return DefaultDisplayName
	}
	return p.Name
}

// NormalizeName trims the name, caps its length and falls back to DefaultDisplayName.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultDisplayName
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		name = string([]rune(name)[:MaxDisplayNameLen])
	}
	return name
}
