package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/observability"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/service"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// HandlerFunc serves one interaction. Returned errors are rendered to the
// caller privately.
type HandlerFunc func(ctx context.Context, c *Context) error

type route struct {
	gate    auth.Gate
	handler HandlerFunc
}

// Dependencies bundles everything the router dispatches to.
type Dependencies struct {
	Tickets   *service.TicketService
	Sessions  *service.SessionService
	Vehicles  *service.VehicleService
	Casefiles *service.CasefileService
	Community *service.CommunityService
	Platform  platform.Platform
	Roles     *auth.RoleTable
	Clock     clock.Clock
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// Router classifies interactions, applies the capability gate and calls
// the matching handler.
type Router struct {
	tickets   *service.TicketService
	sessions  *service.SessionService
	vehicles  *service.VehicleService
	casefiles *service.CasefileService
	community *service.CommunityService
	platform  platform.Platform
	roles     *auth.RoleTable
	clock     clock.Clock
	metrics   *observability.Metrics
	logger    *zap.Logger

	commands   map[string]route
	components map[string]route
}

// NewRouter constructs the router with every command registered.
func NewRouter(deps Dependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	r := &Router{
		tickets:    deps.Tickets,
		sessions:   deps.Sessions,
		vehicles:   deps.Vehicles,
		casefiles:  deps.Casefiles,
		community:  deps.Community,
		platform:   deps.Platform,
		roles:      deps.Roles,
		clock:      clk,
		metrics:    deps.Metrics,
		logger:     logger,
		commands:   map[string]route{},
		components: map[string]route{},
	}
	r.registerSessionCommands()
	r.registerTicketCommands()
	r.registerMemberCommands()
	r.registerCommunityCommands()
	return r
}

func (r *Router) command(name string, gate auth.Gate, h HandlerFunc) {
	r.commands[name] = route{gate: gate, handler: h}
}

func (r *Router) component(customID string, gate auth.Gate, h HandlerFunc) {
	r.components[customID] = route{gate: gate, handler: h}
}

// Handle serves one interaction to completion. It never panics.
func (r *Router) Handle(ctx context.Context, in Interaction, resp Responder) {
	in.Actor.Capabilities = r.roles.CapabilitiesOf(in.Actor.RoleIDs)
	c := &Context{In: &in, resp: resp}

	err := r.dispatch(ctx, c)
	outcome := "ok"
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		outcome = domainErr.Code
		switch domainErr.Code {
		case apperrors.CodeInternal, apperrors.CodeCollaboratorFailure, apperrors.CodeInvalidStateEncoding:
			r.logger.Error("interaction failed",
				zap.String("name", in.Name),
				zap.String("channel_id", in.ChannelID),
				zap.String("user_id", in.Actor.UserID),
				zap.Error(domainErr))
		default:
			r.logger.Debug("interaction rejected", zap.String("name", in.Name), zap.String("code", domainErr.Code))
		}
		if replyErr := c.Reply(ctx, Ephemeral(ErrorText(domainErr))); replyErr != nil {
			r.logger.Warn("error reply failed", zap.String("name", in.Name), zap.Error(replyErr))
		}
	}
	r.metrics.RecordCommand(in.Name, outcome)
}

func (r *Router) dispatch(ctx context.Context, c *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic recovered", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
			err = apperrors.NewInternalError(fmt.Errorf("panic: %v", rec))
		}
	}()

	table := r.commands
	if c.In.Kind == KindComponent {
		table = r.components
	}
	rt, ok := table[c.In.Name]
	if !ok {
		return apperrors.NewNotFound("command", map[string]any{"name": c.In.Name})
	}
	if !rt.gate(c.In.Actor.Capabilities) {
		return apperrors.NewUnauthorized("")
	}
	return rt.handler(ctx, c)
}

// ErrorText renders a domain error for the caller.
func ErrorText(err *apperrors.DomainError) string {
	switch err.Code {
	case apperrors.CodeDuplicateTicket:
		return fmt.Sprintf("You already have an open ticket: %s. Please use that one or wait for it to be closed.",
			domain.MentionChannel(err.DetailString("channel_id")))
	case apperrors.CodeNotFound:
		switch err.DetailString("resource") {
		case "ticket category":
			return "Ticket category not found. Please contact an administrator."
		case "vehicle":
			return "No vehicle with that plate is registered to you."
		case "member":
			return "Member not found."
		}
		return "Unknown command."
	case apperrors.CodeInvalidStateEncoding:
		return "This ticket's state is unreadable. Please contact an administrator."
	case apperrors.CodeCollaboratorFailure, apperrors.CodeInternal:
		return "Something went wrong. Please try again later."
	}
	return err.Message
}
