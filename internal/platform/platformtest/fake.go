// Package platformtest provides an in-memory platform.Platform for tests.
package platformtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spec-kit/community-bot/internal/platform"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("platformtest: injected failure")

// SentMessage records one SendMessage call.
type SentMessage struct {
	ChannelID string
	MessageID string
	Message   platform.Message
}

// Reaction records one AddReaction call.
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// DM records one SendDM call.
type DM struct {
	UserID  string
	Message platform.Message
}

// ComponentEdit records one EditComponents call.
type ComponentEdit struct {
	ChannelID  string
	MessageID  string
	Components []platform.Component
}

// Op names an operation for failure injection and call ordering.
type Op string

const (
	OpSendMessage    Op = "send_message"
	OpEditTopic      Op = "edit_topic"
	OpSetOverwrites  Op = "set_overwrites"
	OpCreateChannel  Op = "create_channel"
	OpDeleteChannel  Op = "delete_channel"
	OpAddReaction    Op = "add_reaction"
	OpEditComponents Op = "edit_components"
	OpMessageHistory Op = "message_history"
	OpSendDM         Op = "send_dm"
)

// Fake is a goroutine-safe in-memory platform.
type Fake struct {
	mu sync.Mutex

	botID      string
	nextID     int
	channels   map[string]*platform.Channel
	overwrites map[string][]platform.Overwrite
	members    map[string]platform.Member
	history    map[string][]platform.HistoryMessage
	failures   map[Op]error
	// failEmoji makes AddReaction fail for one specific emoji.
	failEmoji map[string]bool

	Sent      []SentMessage
	Reactions []Reaction
	Edits     []ComponentEdit
	DMs       []DM
	Deleted   []string
	Calls     []Op
	// TopicLog keeps every topic written, in order, per channel.
	TopicLog map[string][]string
}

// New returns an empty fake whose bot user id is "bot".
func New() *Fake {
	return &Fake{
		botID:      "bot",
		channels:   map[string]*platform.Channel{},
		overwrites: map[string][]platform.Overwrite{},
		members:    map[string]platform.Member{},
		history:    map[string][]platform.HistoryMessage{},
		failures:   map[Op]error{},
		failEmoji:  map[string]bool{},
		TopicLog:   map[string][]string{},
	}
}

// AddChannel seeds a channel.
func (f *Fake) AddChannel(ch platform.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := ch
	f.channels[ch.ID] = &c
}

// AddMember seeds a member.
func (f *Fake) AddMember(m platform.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[m.UserID] = m
}

// AddHistory appends messages to a channel's history.
func (f *Fake) AddHistory(channelID string, msgs ...platform.HistoryMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[channelID] = append(f.history[channelID], msgs...)
}

// Fail makes op return err (ErrInjected when err is nil) until cleared.
func (f *Fake) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	f.failures[op] = err
}

// Clear removes an injected failure.
func (f *Fake) Clear(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

// FailEmoji makes reactions with emoji fail.
func (f *Fake) FailEmoji(emoji string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failEmoji[emoji] = true
}

// ChannelByID returns a copy of a channel, if present.
func (f *Fake) ChannelByID(id string) (platform.Channel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[id]
	if !ok {
		return platform.Channel{}, false
	}
	return *ch, true
}

// Overwrites returns the current overwrites of a channel.
func (f *Fake) Overwrites(channelID string) []platform.Overwrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Overwrite(nil), f.overwrites[channelID]...)
}

// OverwriteFor finds the overwrite for id on a channel.
func (f *Fake) OverwriteFor(channelID, id string) (platform.Overwrite, bool) {
	for _, ow := range f.Overwrites(channelID) {
		if ow.ID == id {
			return ow, true
		}
	}
	return platform.Overwrite{}, false
}

// MessagesTo returns messages sent to a channel.
func (f *Fake) MessagesTo(channelID string) []platform.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []platform.Message
	for _, s := range f.Sent {
		if s.ChannelID == channelID {
			out = append(out, s.Message)
		}
	}
	return out
}

// CallCount counts recorded calls of op.
func (f *Fake) CallCount(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *Fake) record(op Op) error {
	f.Calls = append(f.Calls, op)
	return f.failures[op]
}

func (f *Fake) newID() string {
	f.nextID++
	return fmt.Sprintf("%d", 1000+f.nextID)
}

func (f *Fake) SendMessage(_ context.Context, channelID string, msg platform.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpSendMessage); err != nil {
		return "", err
	}
	id := f.newID()
	f.Sent = append(f.Sent, SentMessage{ChannelID: channelID, MessageID: id, Message: msg})
	return id, nil
}

func (f *Fake) EditTopic(_ context.Context, channelID, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpEditTopic); err != nil {
		return err
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return platform.ErrNotFound
	}
	ch.Topic = topic
	f.TopicLog[channelID] = append(f.TopicLog[channelID], topic)
	return nil
}

func (f *Fake) SetOverwrites(_ context.Context, channelID string, overwrites []platform.Overwrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpSetOverwrites); err != nil {
		return err
	}
	if _, ok := f.channels[channelID]; !ok {
		return platform.ErrNotFound
	}
	f.overwrites[channelID] = append([]platform.Overwrite(nil), overwrites...)
	return nil
}

func (f *Fake) CreateChannel(_ context.Context, req platform.CreateChannelRequest) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpCreateChannel); err != nil {
		return nil, err
	}
	ch := &platform.Channel{ID: "ch-" + f.newID(), Name: req.Name, Topic: req.Topic, ParentID: req.ParentID}
	f.channels[ch.ID] = ch
	f.overwrites[ch.ID] = append([]platform.Overwrite(nil), req.Overwrites...)
	f.TopicLog[ch.ID] = append(f.TopicLog[ch.ID], req.Topic)
	out := *ch
	return &out, nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpDeleteChannel); err != nil {
		return err
	}
	if _, ok := f.channels[channelID]; !ok {
		return platform.ErrNotFound
	}
	delete(f.channels, channelID)
	f.Deleted = append(f.Deleted, channelID)
	return nil
}

func (f *Fake) EditComponents(_ context.Context, channelID, messageID string, components []platform.Component) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpEditComponents); err != nil {
		return err
	}
	f.Edits = append(f.Edits, ComponentEdit{
		ChannelID:  channelID,
		MessageID:  messageID,
		Components: append([]platform.Component(nil), components...),
	})
	return nil
}

func (f *Fake) AddReaction(_ context.Context, channelID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpAddReaction); err != nil {
		return err
	}
	if f.failEmoji[emoji] {
		return ErrInjected
	}
	f.Reactions = append(f.Reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (f *Fake) MessageHistory(_ context.Context, channelID string, limit int) ([]platform.HistoryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpMessageHistory); err != nil {
		return nil, err
	}
	msgs := f.history[channelID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]platform.HistoryMessage(nil), msgs...), nil
}

func (f *Fake) Channel(_ context.Context, channelID string) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	out := *ch
	return &out, nil
}

func (f *Fake) CategoryChannels(_ context.Context, categoryID string) ([]platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[categoryID]; !ok {
		return nil, platform.ErrNotFound
	}
	var out []platform.Channel
	for _, ch := range f.channels {
		if ch.ParentID == categoryID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (f *Fake) Member(_ context.Context, userID string) (*platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return &m, nil
}

func (f *Fake) SendDM(_ context.Context, userID string, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpSendDM); err != nil {
		return err
	}
	f.DMs = append(f.DMs, DM{UserID: userID, Message: msg})
	return nil
}

func (f *Fake) BotUserID() string {
	return f.botID
}

var _ platform.Platform = (*Fake)(nil)
