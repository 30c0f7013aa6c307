package domain

import "github.com/spec-kit/community-bot/internal/auth"

// Actor is the member behind an interaction.
type Actor struct {
	UserID      string
	Username    string
	DisplayName string
	RoleIDs     []string
	// Capabilities is derived from RoleIDs by the role table when the
	// interaction is classified.
	Capabilities auth.Capabilities
}

// Mention renders a user mention.
func (a Actor) Mention() string {
	return MentionUser(a.UserID)
}

// Name prefers the display name.
func (a Actor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// MentionUser renders a user mention for id.
func MentionUser(id string) string {
	return "<@" + id + ">"
}

// MentionRole renders a role mention for id.
func MentionRole(id string) string {
	return "<@&" + id + ">"
}

// MentionChannel renders a channel link for id.
func MentionChannel(id string) string {
	return "<#" + id + ">"
}
