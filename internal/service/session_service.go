package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/observability"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/repository"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// DefaultSessionGoal is the reaction goal when startup omits one.
const DefaultSessionGoal = 6

// SessionService drives startup, reinvites, release and end.
type SessionService struct {
	publisher
	platform platform.Platform
	sessions repository.SessionRepository
	roles    *auth.RoleTable
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	Platform    platform.Platform
	SessionRepo repository.SessionRepository
	Roles       *auth.RoleTable
	Dispatcher  events.Dispatcher
	Clock       clock.Clock
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// SetupInput is the raw, unvalidated session setup.
type SetupInput struct {
	FRP       string
	LEO       string
	House     string
	AORP      string
	Peacetime string
}

// ReinvitesInput describes a reinvites announcement.
type ReinvitesInput struct {
	Link  string
	Goal  int
	Setup SetupInput
}

// ReleaseInput describes a session release.
type ReleaseInput struct {
	Link  string
	Setup SetupInput
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &SessionService{
		publisher: publisher{dispatcher: deps.Dispatcher, clock: clk},
		platform:  deps.Platform,
		sessions:  deps.SessionRepo,
		roles:     deps.Roles,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// Startup announces a session and starts its log.
func (s *SessionService) Startup(ctx context.Context, host domain.Actor, channelID string, goal int) (*domain.Session, error) {
	if !host.Capabilities.IsStaff {
		return nil, apperrors.NewUnauthorized("")
	}
	if goal < 1 {
		return nil, apperrors.NewValidationError("Goal must be at least 1.", map[string]any{"goal": goal})
	}

	now := s.now()
	msgID, err := s.platform.SendMessage(ctx, channelID, startupMessage(host, goal))
	if err != nil {
		return nil, apperrors.NewCollaboratorFailure("post startup", err)
	}
	// The log starts only once the session has been announced.
	if err := s.sessions.PutLog(ctx, domain.SessionLog{ChannelID: channelID, HostID: host.UserID, Start: now}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.react(ctx, channelID, msgID)

	session := domain.Session{
		ChannelID: channelID,
		Goal:      goal,
		HostID:    host.UserID,
		MessageID: msgID,
		Setup:     &domain.SessionSetup{},
		StartedAt: now,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordSessionPhase("startup")
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSessionStarted,
		ChannelID: channelID,
		Actor:     events.ActorOf(host),
		Payload:   events.SessionPayload{Goal: goal},
	})
	return &session, nil
}

// Reinvites replaces the channel's session with the new link and setup.
func (s *SessionService) Reinvites(ctx context.Context, host domain.Actor, channelID string, in ReinvitesInput) (*domain.Session, error) {
	if !host.Capabilities.IsStaff {
		return nil, apperrors.NewUnauthorized("")
	}
	if in.Goal < 1 {
		return nil, apperrors.NewValidationError("Goal must be at least 1.", map[string]any{"goal": in.Goal})
	}
	setup, err := NormalizeSetup(in.Setup)
	if err != nil {
		return nil, err
	}
	link := strings.TrimSpace(in.Link)

	msgID, err := s.platform.SendMessage(ctx, channelID, reinvitesMessage())
	if err != nil {
		return nil, apperrors.NewCollaboratorFailure("post reinvites", err)
	}
	s.react(ctx, channelID, msgID)

	session := domain.Session{
		ChannelID: channelID,
		Goal:      in.Goal,
		HostID:    host.UserID,
		MessageID: msgID,
		Link:      link,
		Setup:     setup,
		StartedAt: s.now(),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordSessionPhase("reinvites")
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSessionReinvites,
		ChannelID: channelID,
		Actor:     events.ActorOf(host),
		Payload:   events.SessionPayload{Goal: in.Goal, Link: link, Setup: setup},
	})
	return &session, nil
}

// Release broadcasts the session to civilians. It keeps no state.
func (s *SessionService) Release(ctx context.Context, host domain.Actor, channelID string, in ReleaseInput) error {
	if !host.Capabilities.IsStaff {
		return apperrors.NewUnauthorized("")
	}
	setup, err := NormalizeSetup(in.Setup)
	if err != nil {
		return err
	}
	link := strings.TrimSpace(in.Link)

	if _, err := s.platform.SendMessage(ctx, channelID, releaseMessage(s.roles.CivilianRoleIDs(), setup, link)); err != nil {
		return apperrors.NewCollaboratorFailure("post release", err)
	}

	s.metrics.RecordSessionPhase("release")
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSessionReleased,
		ChannelID: channelID,
		Actor:     events.ActorOf(host),
		Payload:   events.SessionPayload{Link: link, Setup: setup},
	})
	return nil
}

// End closes the channel's session. The log summary is published only
// when startup created one; the end announcement is always posted.
func (s *SessionService) End(ctx context.Context, host domain.Actor, channelID string) (*events.SessionEndedPayload, error) {
	if !host.Capabilities.IsStaff {
		return nil, apperrors.NewUnauthorized("")
	}

	summary := &events.SessionEndedPayload{End: s.now()}
	log, err := s.sessions.GetLog(ctx, channelID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if log != nil {
		summary.Logged = true
		summary.HostID = log.HostID
		summary.Start = log.Start
		if !log.Start.IsZero() {
			d := summary.End.Sub(log.Start)
			if d < 0 {
				d = 0
			}
			summary.Duration = &d
		}
		s.publishEvent(ctx, events.Event{
			Type:      events.EventSessionEnded,
			ChannelID: channelID,
			Actor:     events.ActorOf(host),
			Payload:   *summary,
		})
		if err := s.sessions.DeleteLog(ctx, channelID); err != nil {
			s.logger.Warn("session log not removed", zap.String("channel_id", channelID), zap.Error(err))
		}
	}

	if _, err := s.platform.SendMessage(ctx, channelID, endMessage(host)); err != nil {
		s.logger.Warn("end announcement failed", zap.String("channel_id", channelID), zap.Error(err))
	}
	if err := s.sessions.Delete(ctx, channelID); err != nil {
		s.logger.Warn("session not removed", zap.String("channel_id", channelID), zap.Error(err))
	}
	s.metrics.RecordSessionPhase("end")
	return summary, nil
}

// react adds the check reaction, falling back to the plain emoji. Both
// failing is only logged.
func (s *SessionService) react(ctx context.Context, channelID, messageID string) {
	if err := s.platform.AddReaction(ctx, channelID, messageID, reactionCheck); err == nil {
		return
	}
	if err := s.platform.AddReaction(ctx, channelID, messageID, reactionPlain); err != nil {
		s.logger.Debug("session reaction failed", zap.String("message_id", messageID), zap.Error(err))
	}
}

// NormalizeSetup validates each field against its option set and returns
// the canonical spelling.
func NormalizeSetup(in SetupInput) (*domain.SessionSetup, error) {
	out := &domain.SessionSetup{}
	fields := []struct {
		name    string
		value   string
		options []string
		dst     *string
	}{
		{"frp", in.FRP, domain.FRPOptions, &out.FRP},
		{"leo", in.LEO, domain.LEOOptions, &out.LEO},
		{"hc", in.House, domain.HouseOptions, &out.House},
		{"aorp", in.AORP, domain.AORPOptions, &out.AORP},
		{"peacetime", in.Peacetime, domain.PeacetimeOptions, &out.Peacetime},
	}

	for _, f := range fields {
		canonical, ok := domain.MatchOption(f.value, f.options)
		if !ok {
			return nil, apperrors.NewValidationError(
				"Invalid "+f.name+": choose one of "+strings.Join(f.options, ", ")+".",
				map[string]any{"field": f.name, "value": f.value},
			)
		}
		*f.dst = canonical
	}
	return out, nil
}
