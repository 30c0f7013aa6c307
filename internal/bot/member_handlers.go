package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/service"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

const casefileEntries = 10

func (r *Router) registerMemberCommands() {
	r.command("help", auth.Public(), r.help)
	r.command("whois", auth.Public(), r.whois)
	r.command("registervehicle", auth.Public(), r.registerVehicle)
	r.command("unregistervehicle", auth.Public(), r.unregisterVehicle)
	r.command("vehicles", auth.Public(), r.listVehicles)
	r.command("warn", auth.RequireStaff(), r.warn)
	r.command("strike", auth.RequireHighCommandPlus(), r.strike)
	r.command("note", auth.RequireStaff(), r.note)
}

// resolveMember loads the "member" option, defaulting to the caller.
func (r *Router) resolveMember(ctx context.Context, c *Context, required bool) (platform.Member, error) {
	id := c.In.Option("member")
	if id == "" {
		if required {
			return platform.Member{}, apperrors.NewValidationError("A member is required.", map[string]any{"field": "member"})
		}
		self := platform.Member{
			UserID:      c.In.Actor.UserID,
			Username:    c.In.Actor.Username,
			DisplayName: c.In.Actor.DisplayName,
			RoleIDs:     c.In.Actor.RoleIDs,
		}
		if m, err := r.platform.Member(ctx, self.UserID); err == nil {
			return *m, nil
		}
		return self, nil
	}

	m, err := r.platform.Member(ctx, id)
	if errors.Is(err, platform.ErrNotFound) {
		return platform.Member{}, apperrors.NewNotFound("member", map[string]any{"user_id": id})
	}
	if err != nil {
		return platform.Member{}, apperrors.NewCollaboratorFailure("resolve member", err)
	}
	return *m, nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func (r *Router) help(ctx context.Context, c *Context) error {
	caps := c.In.Actor.Capabilities
	var b strings.Builder
	for _, spec := range Commands() {
		rt, ok := r.commands[spec.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s **/%s** — %s\n> Can Use: %s\n", service.EmojiArrow, spec.Name, spec.Description, yesNo(rt.gate(caps)))
	}
	return c.Reply(ctx, Public(platform.Message{Embed: &platform.Embed{
		Title:       "__**All Command Information**__",
		Description: strings.TrimSuffix(b.String(), "\n"),
		Color:       service.BotColor,
	}}))
}

func (r *Router) whois(ctx context.Context, c *Context) error {
	member, err := r.resolveMember(ctx, c, false)
	if err != nil {
		return err
	}
	caps := r.roles.CapabilitiesOf(member.RoleIDs)
	cf, err := r.casefiles.Casefile(ctx, member.UserID, caps.IsBooster)
	if err != nil {
		return err
	}

	roles := strings.Join(member.RoleNames, ", ")
	if roles == "" {
		roles = "None"
	}
	fields := []platform.EmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (%s)", member.Mention(), member.UserID)},
		{Name: "Roles", Value: roles},
		{Name: "Staff?", Value: yesNo(caps.IsStaff), Inline: true},
		{Name: "High Command?", Value: yesNo(caps.IsHighCommand), Inline: true},
		{Name: "Ownership?", Value: yesNo(caps.IsOwnership), Inline: true},
		{Name: "Admin/Dev?", Value: yesNo(caps.IsAdmin), Inline: true},
		{Name: "Server Booster (High Priority)?", Value: yesNo(caps.IsBooster), Inline: true},
		{Name: "Staff Strikes", Value: strconv.Itoa(cf.Strikes)},
		{Name: "Civilian Infractions", Value: strconv.Itoa(cf.CivilianInfractions)},
		{Name: "Registered Vehicles", Value: vehicleList(cf.Vehicles)},
		{Name: "Unregister Uses Remaining", Value: usesText(cf.UnregisterUses)},
	}
	// Notes and history are internal to staff.
	if c.In.Actor.Capabilities.IsStaff {
		var notes, history []string
		for _, n := range cf.RecentNotes(casefileEntries) {
			notes = append(notes, n.Timestamp.UTC().Format(time.RFC3339)+" — "+n.Text)
		}
		for _, h := range cf.RecentHistory(casefileEntries) {
			history = append(history, h.Timestamp.UTC().Format(time.RFC3339)+" — "+h.Action)
		}
		fields = append(fields,
			platform.EmbedField{Name: "Internal Notes (last 10)", Value: joinOrNone(notes)},
			platform.EmbedField{Name: "Recent History (last 10)", Value: joinOrNone(history)},
		)
	}

	return c.Reply(ctx, Reply{
		Message: platform.Message{Embed: &platform.Embed{
			Title:     "🔎 Whois — " + member.Name(),
			Fields:    fields,
			Timestamp: r.clock.Now(),
			Color:     service.BotColor,
		}},
		Ephemeral: !c.In.Actor.Capabilities.IsStaff,
	})
}

func (r *Router) registerVehicle(ctx context.Context, c *Context) error {
	v, err := r.vehicles.Register(ctx, c.In.Actor, domain.Vehicle{
		Year:  c.In.Option("year"),
		Make:  c.In.Option("make"),
		Model: c.In.Option("model"),
		Color: c.In.Option("color"),
		Plate: c.In.Option("plate"),
		State: c.In.Option("state"),
		Usage: c.In.Option("usage"),
	})
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Vehicle registered: "+v.Summary()))
}

func (r *Router) unregisterVehicle(ctx context.Context, c *Context) error {
	res, err := r.vehicles.Unregister(ctx, c.In.Actor, c.In.Option("plate"))
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral(fmt.Sprintf("Removed %d vehicle(s). Unregister uses remaining: %s",
		len(res.Removed), usesText(res.Remaining))))
}

func (r *Router) listVehicles(ctx context.Context, c *Context) error {
	member, err := r.resolveMember(ctx, c, false)
	if err != nil {
		return err
	}
	caps := r.roles.CapabilitiesOf(member.RoleIDs)
	vehicles := r.vehicles.List(member.UserID)
	return c.Reply(ctx, Reply{
		Message: platform.Message{Embed: &platform.Embed{
			Title:       "🚗 Vehicles — " + member.Name(),
			Description: vehicleList(vehicles),
			Fields: []platform.EmbedField{
				{Name: "Slots", Value: fmt.Sprintf("%d/%d", len(vehicles), service.SlotsFor(caps.IsBooster)), Inline: true},
				{Name: "Unregister Uses", Value: usesText(r.vehicles.RemainingUnregisters(member.UserID, caps.IsBooster)), Inline: true},
			},
			Color: service.BotColor,
		}},
		Ephemeral: true,
	})
}

func (r *Router) warn(ctx context.Context, c *Context) error {
	target, err := r.resolveMember(ctx, c, true)
	if err != nil {
		return err
	}
	total, err := r.casefiles.Warn(ctx, c.In.Actor, target, c.In.Option("reason"))
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral(fmt.Sprintf("Warned %s. Total infractions: %d", target.Mention(), total)))
}

func (r *Router) strike(ctx context.Context, c *Context) error {
	target, err := r.resolveMember(ctx, c, true)
	if err != nil {
		return err
	}
	total, err := r.casefiles.Strike(ctx, c.In.Actor, target, c.In.Option("reason"))
	if err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral(fmt.Sprintf("Struck %s. Total strikes: %d", target.Mention(), total)))
}

func (r *Router) note(ctx context.Context, c *Context) error {
	target, err := r.resolveMember(ctx, c, true)
	if err != nil {
		return err
	}
	if err := r.casefiles.Note(ctx, c.In.Actor, target, c.In.Option("note")); err != nil {
		return err
	}
	return c.Reply(ctx, Ephemeral("Note added for "+target.Mention()+"."))
}

func vehicleList(vehicles []domain.Vehicle) string {
	lines := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		lines = append(lines, v.Summary())
	}
	return joinOrNone(lines)
}

func usesText(n int) string {
	if n < 0 {
		return "Unlimited"
	}
	return strconv.Itoa(n)
}

func joinOrNone(lines []string) string {
	if len(lines) == 0 {
		return "None"
	}
	return strings.Join(lines, "\n")
}
