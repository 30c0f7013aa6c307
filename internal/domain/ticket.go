package domain

import (
	"errors"
	"fmt"

	"github.com/spec-kit/community-bot/internal/topic"
)

// TicketType enumerates the panel's ticket categories.
type TicketType string

const (
	TicketTypeModerationAppeal   TicketType = "Moderation Appeal"
	TicketTypeCivilianSupport    TicketType = "Civilian Support"
	TicketTypeMemberReport       TicketType = "Member Report"
	TicketTypeSupportTicket      TicketType = "Support Ticket"
	TicketTypePartnershipRequest TicketType = "Partnership Request"
)

// TicketTypes lists every type in panel order.
var TicketTypes = []TicketType{
	TicketTypeModerationAppeal,
	TicketTypeCivilianSupport,
	TicketTypeMemberReport,
	TicketTypeSupportTicket,
	TicketTypePartnershipRequest,
}

// Valid reports whether t is a known ticket type.
func (t TicketType) Valid() bool {
	for _, known := range TicketTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TicketStatus is monotonic: open to closed, never back.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority is fixed when the ticket is created.
type TicketPriority string

const (
	TicketPriorityNormal TicketPriority = "Normal"
	TicketPriorityHigh   TicketPriority = "High"
)

// Topic keys of the ticket schema.
const (
	KeySchema    = "v"
	KeyOwner     = "owner_id"
	KeyType      = "type"
	KeyStatus    = "status"
	KeyPriority  = "priority"
	KeyClaimedBy = "claimed_by"

	legacyKeyOwner = "ticket_owner"
	unclaimed      = "None"
)

// TicketSchemaVersion is the only schema this build understands. Version 1
// topics carry no explicit version key.
const TicketSchemaVersion = "1"

var ticketKeyOrder = []string{KeySchema, KeyOwner, KeyType, KeyStatus, KeyPriority, KeyClaimedBy}

var (
	// ErrNotTicket means the topic carries no ticket state at all.
	ErrNotTicket = errors.New("channel carries no ticket state")
	// ErrCorruptTicket means ticket state is present but unusable.
	ErrCorruptTicket = errors.New("ticket state is corrupt")
)

// TicketState is the ticket record stored in a channel topic.
type TicketState struct {
	OwnerID   string
	Type      TicketType
	Status    TicketStatus
	Priority  TicketPriority
	ClaimedBy string

	// Extra preserves unknown keys so rewrites never drop them.
	Extra map[string]string
}

// Ticket pairs decoded state with the channel that carries it.
type Ticket struct {
	ChannelID   string
	ChannelName string
	Sequence    int64
	State       TicketState
}

// IsOpen reports whether the ticket is still open.
func (s TicketState) IsOpen() bool {
	return s.Status == TicketStatusOpen
}

// IsClaimed reports whether a staff member claimed the ticket.
func (s TicketState) IsClaimed() bool {
	return s.ClaimedBy != ""
}

// Claim returns a copy claimed by staffID.
func (s TicketState) Claim(staffID string) TicketState {
	s.ClaimedBy = staffID
	return s
}

// Closed returns the terminal copy: status closed and the claim removed.
func (s TicketState) Closed() TicketState {
	s.Status = TicketStatusClosed
	s.ClaimedBy = ""
	return s
}

// Fields flattens the state into topic key/values. An open ticket always
// carries claimed_by (None when unclaimed); a closed one never does.
func (s TicketState) Fields() map[string]string {
	out := make(map[string]string, len(s.Extra)+5)
	for k, v := range s.Extra {
		out[k] = v
	}
	out[KeyOwner] = s.OwnerID
	out[KeyType] = string(s.Type)
	out[KeyStatus] = string(s.Status)
	out[KeyPriority] = string(s.Priority)
	switch {
	case s.Status == TicketStatusClosed:
	case s.ClaimedBy == "":
		out[KeyClaimedBy] = unclaimed
	default:
		out[KeyClaimedBy] = s.ClaimedBy
	}
	return out
}

// EncodeTopic renders the state in canonical key order.
func (s TicketState) EncodeTopic() (string, error) {
	return topic.Encode(s.Fields(), ticketKeyOrder...)
}

// ParseTicketTopic decodes a channel topic. It returns ErrNotTicket when
// the topic has no owner key and an error wrapping ErrCorruptTicket when
// the owner is present but the rest of the record is unusable.
func ParseTicketTopic(raw string) (TicketState, error) {
	fields := topic.Decode(raw)

	owner, ok := fields[KeyOwner]
	if !ok {
		owner, ok = fields[legacyKeyOwner]
	}
	if !ok {
		return TicketState{}, ErrNotTicket
	}
	if owner == "" {
		return TicketState{}, fmt.Errorf("%w: empty owner", ErrCorruptTicket)
	}
	if v, has := fields[KeySchema]; has && v != TicketSchemaVersion {
		return TicketState{}, fmt.Errorf("%w: unsupported schema version %q", ErrCorruptTicket, v)
	}

	state := TicketState{
		OwnerID:  owner,
		Type:     TicketType(fields[KeyType]),
		Status:   TicketStatus(fields[KeyStatus]),
		Priority: TicketPriority(fields[KeyPriority]),
	}
	if !state.Type.Valid() {
		return TicketState{}, fmt.Errorf("%w: unknown type %q", ErrCorruptTicket, state.Type)
	}
	switch state.Status {
	case TicketStatusOpen, TicketStatusClosed:
	default:
		return TicketState{}, fmt.Errorf("%w: unknown status %q", ErrCorruptTicket, state.Status)
	}
	switch state.Priority {
	case TicketPriorityNormal, TicketPriorityHigh:
	default:
		return TicketState{}, fmt.Errorf("%w: unknown priority %q", ErrCorruptTicket, state.Priority)
	}
	if claimed := fields[KeyClaimedBy]; claimed != "" && claimed != unclaimed {
		state.ClaimedBy = claimed
	}

	for k, v := range fields {
		switch k {
		case KeySchema, KeyOwner, legacyKeyOwner, KeyType, KeyStatus, KeyPriority, KeyClaimedBy:
			continue
		}
		if state.Extra == nil {
			state.Extra = map[string]string{}
		}
		state.Extra[k] = v
	}
	return state, nil
}
