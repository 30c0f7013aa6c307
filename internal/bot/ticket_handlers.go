package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/service"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

func (r *Router) registerTicketCommands() {
	r.command("panel", auth.RequireStaff(), r.panel)
	r.command("close", auth.Public(), r.close)
	r.command("claim", auth.RequireHighCommandPlus(), r.claim)

	r.component(service.CustomIDTicketTypeSelect, auth.Public(), r.openTicket)
	r.component(service.CustomIDTicketClose, auth.Public(), r.close)
}

func (r *Router) panel(ctx context.Context, c *Context) error {
	if err := c.Defer(ctx); err != nil {
		return err
	}
	if err := r.tickets.PostPanel(ctx, c.In.Actor, c.In.ChannelID); err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Support panel posted."))
}

func (r *Router) openTicket(ctx context.Context, c *Context) error {
	if len(c.In.Values) == 0 {
		return apperrors.NewValidationError("Select a ticket type.", nil)
	}
	if err := c.Defer(ctx); err != nil {
		return err
	}
	ticket, err := r.tickets.Create(ctx, c.In.Actor, domain.TicketType(c.In.Values[0]))
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Your ticket has been created: "+domain.MentionChannel(ticket.ChannelID)))
}

// close is shared by the slash command and the close button. Ownership is
// checked by the ticket service since it needs the decoded topic.
func (r *Router) close(ctx context.Context, c *Context) error {
	notify := func(ctx context.Context, content string) {
		if err := c.Followup(ctx, Ephemeral(content)); err != nil {
			r.logger.Warn("close follow-up failed", zap.String("channel_id", c.In.ChannelID), zap.Error(err))
		}
	}
	if _, err := r.tickets.Close(ctx, c.In.Actor, c.In.ChannelID, notify); err != nil {
		return err
	}
	secs := int(r.tickets.CloseDelay().Seconds())
	err := c.Reply(ctx, Ephemeral(fmt.Sprintf("Ticket will be closed in %d seconds...", secs)))
	if c.In.Kind == KindComponent && c.In.MessageID != "" {
		components := []platform.Component{service.DisabledCloseButton()}
		if editErr := r.platform.EditComponents(ctx, c.In.ChannelID, c.In.MessageID, components); editErr != nil {
			r.logger.Warn("close button not disabled", zap.String("channel_id", c.In.ChannelID), zap.Error(editErr))
		}
	}
	return err
}

func (r *Router) claim(ctx context.Context, c *Context) error {
	ticket, err := r.tickets.Claim(ctx, c.In.Actor, c.In.ChannelID)
	if err != nil {
		return err
	}
	return c.Reply(ctx, Public(service.ClaimAnnouncement(ticket, c.In.Actor)))
}
