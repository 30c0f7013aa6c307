// Package platform is the port between the bot's services and the chat
// platform. Services depend only on the Platform interface; the discord
// subpackage implements it over the gateway and platformtest provides an
// in-memory fake.
package platform

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a channel, member or message does not exist.
var ErrNotFound = errors.New("platform: not found")

// Platform is every chat-platform operation the bot consumes.
type Platform interface {
	// SendMessage posts to a channel and returns the new message id.
	SendMessage(ctx context.Context, channelID string, msg Message) (string, error)
	// EditTopic replaces a channel's topic.
	EditTopic(ctx context.Context, channelID, topic string) error
	// SetOverwrites replaces a channel's permission overwrites.
	SetOverwrites(ctx context.Context, channelID string, overwrites []Overwrite) error
	// CreateChannel creates a text channel.
	CreateChannel(ctx context.Context, req CreateChannelRequest) (*Channel, error)
	// DeleteChannel removes a channel, recording reason in the audit log.
	DeleteChannel(ctx context.Context, channelID, reason string) error
	// EditComponents replaces a message's components, keeping its content.
	EditComponents(ctx context.Context, channelID, messageID string, components []Component) error
	// AddReaction reacts to a message. Emoji is unicode or name:id.
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	// MessageHistory returns at most limit of the latest messages, oldest first.
	MessageHistory(ctx context.Context, channelID string, limit int) ([]HistoryMessage, error)
	// Channel resolves a channel by id.
	Channel(ctx context.Context, channelID string) (*Channel, error)
	// CategoryChannels lists text channels under a category.
	CategoryChannels(ctx context.Context, categoryID string) ([]Channel, error)
	// Member resolves a community member by user id.
	Member(ctx context.Context, userID string) (*Member, error)
	// SendDM delivers a direct message.
	SendDM(ctx context.Context, userID string, msg Message) error
	// BotUserID is the bot's own user id.
	BotUserID() string
}

// Channel is a text channel.
type Channel struct {
	ID       string
	Name     string
	Topic    string
	ParentID string
}

// Member is a community member.
type Member struct {
	UserID      string
	Username    string
	DisplayName string
	RoleIDs     []string
	RoleNames   []string
	Bot         bool
}

// Mention renders a user mention for the member.
func (m Member) Mention() string {
	return "<@" + m.UserID + ">"
}

// Name prefers the display name.
func (m Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// HistoryMessage is one entry of a channel's history.
type HistoryMessage struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Content     string
	Attachments []string
	CreatedAt   time.Time
}

// OverwriteTarget says whether an overwrite applies to a role or a member.
type OverwriteTarget int

const (
	TargetRole OverwriteTarget = iota
	TargetMember
)

// Overwrite is a channel permission overwrite over the three permissions
// the bot manages. False means explicitly denied.
type Overwrite struct {
	ID          string
	Target      OverwriteTarget
	View        bool
	Send        bool
	ReadHistory bool
}

// Allow is a full view/send/history grant.
func Allow(id string, target OverwriteTarget) Overwrite {
	return Overwrite{ID: id, Target: target, View: true, Send: true, ReadHistory: true}
}

// ReadOnly grants view and history but denies send.
func ReadOnly(id string, target OverwriteTarget) Overwrite {
	return Overwrite{ID: id, Target: target, View: true, ReadHistory: true}
}

// Deny denies view, send and history.
func Deny(id string, target OverwriteTarget) Overwrite {
	return Overwrite{ID: id, Target: target}
}

// CreateChannelRequest describes a new text channel.
type CreateChannelRequest struct {
	Name       string
	ParentID   string
	Topic      string
	Overwrites []Overwrite
	Reason     string
}

// Message is an outbound message.
type Message struct {
	Content    string
	Embed      *Embed
	Components []Component
	// MentionRoles and MentionUsers whitelist pings; MentionEveryone
	// allows @everyone. Nothing else pings.
	MentionRoles    []string
	MentionUsers    []string
	MentionEveryone bool
}

// Embed is a rich message body.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
	ImageURL    string
	Timestamp   time.Time
	Color       int
}

// EmbedField is one name/value row of an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// ComponentKind enumerates interactive components.
type ComponentKind int

const (
	ComponentButton ComponentKind = iota
	ComponentLinkButton
	ComponentSelect
)

// ButtonStyle mirrors the platform's button palette.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonDanger
)

// Component is a button, link button or select menu.
type Component struct {
	Kind        ComponentKind
	CustomID    string
	Label       string
	URL         string
	Style       ButtonStyle
	Disabled    bool
	Placeholder string
	Options     []SelectOption
}

// SelectOption is one entry of a select menu.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}
