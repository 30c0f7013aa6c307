package bot

import (
	"context"

	"github.com/spec-kit/community-bot/internal/auth"
)

// Message is an inbound channel message.
type Message struct {
	ChannelID string
	AuthorID  string
	FromBot   bool
}

func (r *Router) registerCommunityCommands() {
	r.command("serverad", auth.RequireStaff(), r.serverAd)
	r.command("comingsoon", auth.Public(), r.comingSoon)
}

func (r *Router) serverAd(ctx context.Context, c *Context) error {
	if err := c.Defer(ctx); err != nil {
		return err
	}
	if err := r.community.PostServerAd(ctx, c.In.Actor, c.In.ChannelID); err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Server advertisement posted."))
}

func (r *Router) comingSoon(ctx context.Context, c *Context) error {
	if err := c.Defer(ctx); err != nil {
		return err
	}
	if err := r.community.PostComingSoon(ctx, c.In.ChannelID); err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Shown coming soon."))
}

// HandleMessage serves a message posted in the guild.
func (r *Router) HandleMessage(ctx context.Context, m Message) {
	if r.community == nil {
		return
	}
	r.community.MessagePosted(ctx, m.ChannelID, m.FromBot)
}
