package bot

import (
	"context"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/service"
)

func (r *Router) registerSessionCommands() {
	r.command("startup", auth.RequireStaff(), r.startup)
	r.command("reinvites", auth.RequireStaff(), r.reinvites)
	r.command("release", auth.RequireStaff(), r.release)
	r.command("end", auth.RequireStaff(), r.end)
}

func setupInput(in *Interaction) service.SetupInput {
	return service.SetupInput{
		FRP:       in.Option("frp"),
		LEO:       in.Option("leo"),
		House:     in.Option("hc"),
		AORP:      in.Option("aorp"),
		Peacetime: in.Option("peacetime"),
	}
}

func (r *Router) startup(ctx context.Context, c *Context) error {
	goal, err := c.In.IntOption("goal", service.DefaultSessionGoal)
	if err != nil {
		return err
	}
	if err := c.Defer(ctx); err != nil {
		return err
	}
	if _, err := r.sessions.Startup(ctx, c.In.Actor, c.In.ChannelID, goal); err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Startup posted."))
}

func (r *Router) reinvites(ctx context.Context, c *Context) error {
	goal, err := c.In.IntOption("goal", service.DefaultSessionGoal)
	if err != nil {
		return err
	}
	if err := c.Defer(ctx); err != nil {
		return err
	}
	_, err = r.sessions.Reinvites(ctx, c.In.Actor, c.In.ChannelID, service.ReinvitesInput{
		Link:  c.In.Option("link"),
		Goal:  goal,
		Setup: setupInput(c.In),
	})
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Reinvites started."))
}

func (r *Router) release(ctx context.Context, c *Context) error {
	if err := c.Defer(ctx); err != nil {
		return err
	}
	err := r.sessions.Release(ctx, c.In.Actor, c.In.ChannelID, service.ReleaseInput{
		Link:  c.In.Option("link"),
		Setup: setupInput(c.In),
	})
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Session released to Civilians."))
}

func (r *Router) end(ctx context.Context, c *Context) error {
	if err := c.Defer(ctx); err != nil {
		return err
	}
	if _, err := r.sessions.End(ctx, c.In.Actor, c.In.ChannelID); err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Session ended."))
}
