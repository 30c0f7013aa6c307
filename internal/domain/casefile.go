package domain

import "time"

// HistoryType classifies casefile history entries.
type HistoryType string

const (
	HistoryTicketOpen HistoryType = "ticket_open"
	HistoryStrike     HistoryType = "strike"
	HistoryWarning    HistoryType = "warning"
	HistoryNote       HistoryType = "note"
)

// HistoryEntry is an immutable casefile event.
type HistoryEntry struct {
	Type      HistoryType
	Action    string
	ByID      string
	Extra     string
	Timestamp time.Time
}

// Note is an internal staff note about a member.
type Note struct {
	Text      string
	ByID      string
	Timestamp time.Time
}

// Casefile aggregates everything recorded about one member.
type Casefile struct {
	UserID              string
	Strikes             int
	CivilianInfractions int
	Notes               []Note
	History             []HistoryEntry
	Vehicles            []Vehicle
	// UnregisterUses is the remaining allowance; negative means unlimited.
	UnregisterUses int
}

// RecentNotes returns at most n of the latest notes, oldest first.
func (c Casefile) RecentNotes(n int) []Note {
	if len(c.Notes) <= n {
		return c.Notes
	}
	return c.Notes[len(c.Notes)-n:]
}

// RecentHistory returns at most n of the latest entries, oldest first.
func (c Casefile) RecentHistory(n int) []HistoryEntry {
	if len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}
