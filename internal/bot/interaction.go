package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/platform"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// Kind distinguishes slash commands from component interactions.
type Kind int

const (
	KindCommand Kind = iota
	KindComponent
)

// Interaction is an inbound slash command or component use.
type Interaction struct {
	Kind Kind
	// Name is the command name or the component custom id.
	Name      string
	ChannelID string
	Actor     domain.Actor
	Options   map[string]string
	// Values holds select menu choices.
	Values []string
	// MessageID is the message carrying the component, if any.
	MessageID string
}

// Option returns a trimmed option value, "" when absent.
func (i *Interaction) Option(name string) string {
	return strings.TrimSpace(i.Options[name])
}

// IntOption parses an integer option, returning fallback when absent.
func (i *Interaction) IntOption(name string, fallback int) (int, error) {
	raw := i.Option(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name+" must be a whole number.", map[string]any{"field": name, "value": raw})
	}
	return n, nil
}

// Reply is a response to an interaction.
type Reply struct {
	platform.Message
	Ephemeral bool
}

// Ephemeral is a text reply only the caller sees.
func Ephemeral(content string) Reply {
	return Reply{Message: platform.Message{Content: content}, Ephemeral: true}
}

// Public wraps a message visible to the whole channel.
func Public(msg platform.Message) Reply {
	return Reply{Message: msg}
}

// Responder acknowledges an interaction. Respond or Defer must be called
// exactly once; Followup only after one of them.
type Responder interface {
	Respond(ctx context.Context, reply Reply) error
	Defer(ctx context.Context, ephemeral bool) error
	Followup(ctx context.Context, reply Reply) error
}

// Context carries one interaction through its handler.
type Context struct {
	In *Interaction

	mu    sync.Mutex
	resp  Responder
	acked bool
}

// Reply answers the interaction, using a followup once it has been
// acknowledged.
func (c *Context) Reply(ctx context.Context, reply Reply) error {
	c.mu.Lock()
	acked := c.acked
	c.acked = true
	c.mu.Unlock()
	if acked {
		return c.resp.Followup(ctx, reply)
	}
	return c.resp.Respond(ctx, reply)
}

// Defer acknowledges the interaction privately ahead of slow work.
func (c *Context) Defer(ctx context.Context) error {
	c.mu.Lock()
	if c.acked {
		c.mu.Unlock()
		return nil
	}
	c.acked = true
	c.mu.Unlock()
	return c.resp.Defer(ctx, true)
}

// Followup posts after the interaction has been acknowledged.
func (c *Context) Followup(ctx context.Context, reply Reply) error {
	return c.resp.Followup(ctx, reply)
}
