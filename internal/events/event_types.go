package events

import (
	"time"

	"github.com/spec-kit/community-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketClaimed       EventType = "ticket_claimed"
	EventTicketClosed        EventType = "ticket_closed"
	EventSessionStarted      EventType = "session_started"
	EventSessionReinvites    EventType = "session_reinvites"
	EventSessionReleased     EventType = "session_released"
	EventSessionEnded        EventType = "session_ended"
	EventVehicleRegistered   EventType = "vehicle_registered"
	EventVehicleUnregistered EventType = "vehicle_unregistered"
	EventMemberStruck        EventType = "member_struck"
	EventMemberWarned        EventType = "member_warned"
	EventNoteAdded           EventType = "note_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// ActorOf converts an interaction actor.
func ActorOf(a domain.Actor) Actor {
	return Actor{UserID: a.UserID, Name: a.Name()}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChannelID string      `json:"channel_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ChannelName string                `json:"channel_name"`
	OwnerID     string                `json:"owner_id"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	Sequence    int64                 `json:"sequence"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	ChannelName     string `json:"channel_name"`
	ClaimedBy       string `json:"claimed_by"`
	PreviousClaimer string `json:"previous_claimer,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ChannelName string `json:"channel_name"`
	OwnerID     string `json:"owner_id"`
}

// SessionPayload accompanies startup, reinvites and release.
type SessionPayload struct {
	Goal  int                  `json:"goal,omitempty"`
	Link  string               `json:"link,omitempty"`
	Setup *domain.SessionSetup `json:"setup,omitempty"`
}

// SessionEndedPayload carries the session log summary. Logged is false
// when the channel had no session log; Duration is nil when the start
// time was unknown.
type SessionEndedPayload struct {
	Logged   bool           `json:"logged"`
	HostID   string         `json:"host_id,omitempty"`
	Start    time.Time      `json:"start,omitempty"`
	End      time.Time      `json:"end"`
	Duration *time.Duration `json:"duration,omitempty"`
}

// VehiclePayload accompanies vehicle registry mutations.
type VehiclePayload struct {
	Vehicle domain.Vehicle `json:"vehicle"`
	Removed int            `json:"removed,omitempty"`
}

// DisciplinePayload accompanies strikes, warnings and notes.
type DisciplinePayload struct {
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"`
	Total    int    `json:"total,omitempty"`
}
