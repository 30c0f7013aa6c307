package domain

import (
	"strings"
	"time"
)

// SessionSetup is the announced configuration of a roleplay session.
type SessionSetup struct {
	FRP       string
	LEO       string
	House     string
	AORP      string
	Peacetime string
}

// Option sets offered for each setup field.
var (
	FRPOptions       = []string{"60", "65", "75", "90"}
	LEOOptions       = []string{"Active", "Inactive"}
	HouseOptions     = []string{"Enabled", "Disabled"}
	AORPOptions      = []string{"Greenville", "Highway", "Brookmere", "Horton"}
	PeacetimeOptions = []string{"Normal", "Strict", "Off"}
)

// Session is the per-channel record created by startup or reinvites.
type Session struct {
	ChannelID string
	Goal      int
	HostID    string
	MessageID string
	Link      string
	Setup     *SessionSetup
	StartedAt time.Time
}

// SessionLog tracks the running time of a session started with startup.
type SessionLog struct {
	ChannelID string
	HostID    string
	Start     time.Time
}

// MatchOption returns the canonical spelling of value within options,
// compared case-insensitively.
func MatchOption(value string, options []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt, true
		}
	}
	return "", false
}
