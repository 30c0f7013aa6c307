package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/repository"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// CasefileService records discipline and notes and assembles casefiles.
type CasefileService struct {
	publisher
	platform  platform.Platform
	casefiles repository.CasefileRepository
	vehicles  *VehicleService
	logger    *zap.Logger
}

// CasefileDependencies bundles collaborators for the casefile service.
type CasefileDependencies struct {
	Platform     platform.Platform
	CasefileRepo repository.CasefileRepository
	Vehicles     *VehicleService
	Dispatcher   events.Dispatcher
	Clock        clock.Clock
	Logger       *zap.Logger
}

// NewCasefileService constructs the service.
func NewCasefileService(deps CasefileDependencies) *CasefileService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &CasefileService{
		publisher: publisher{dispatcher: deps.Dispatcher, clock: clk},
		platform:  deps.Platform,
		casefiles: deps.CasefileRepo,
		vehicles:  deps.Vehicles,
		logger:    logger,
	}
}

// Casefile assembles everything recorded about a member.
func (s *CasefileService) Casefile(ctx context.Context, userID string, isBooster bool) (domain.Casefile, error) {
	cf, err := s.casefiles.Get(ctx, userID)
	if err != nil {
		return domain.Casefile{}, apperrors.NewInternalError(err)
	}
	cf.UnregisterUses = DefaultUnregisterUses
	if isBooster {
		cf.UnregisterUses = UnlimitedUnregisterUses
	}
	if s.vehicles != nil {
		cf.Vehicles = s.vehicles.List(userID)
		cf.UnregisterUses = s.vehicles.RemainingUnregisters(userID, isBooster)
	}
	return cf, nil
}

// Strike records a staff strike. High command and above only.
func (s *CasefileService) Strike(ctx context.Context, actor domain.Actor, target platform.Member, reason string) (int, error) {
	if !actor.Capabilities.IsHighCommandPlus {
		return 0, apperrors.NewUnauthorized("")
	}
	reason, err := requireText(reason, "reason")
	if err != nil {
		return 0, err
	}

	total, err := s.casefiles.IncrementStrikes(ctx, target.UserID)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	s.addHistory(ctx, target.UserID, domain.HistoryStrike, "Strike: "+reason, actor.UserID)
	s.notifyMember(ctx, target.UserID, "⚠️ You have received a staff strike", reason, total)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventMemberStruck,
		Actor:   events.ActorOf(actor),
		Payload: events.DisciplinePayload{TargetID: target.UserID, Reason: reason, Total: total},
	})
	return total, nil
}

// Warn records a civilian infraction.
func (s *CasefileService) Warn(ctx context.Context, actor domain.Actor, target platform.Member, reason string) (int, error) {
	if !actor.Capabilities.IsStaff {
		return 0, apperrors.NewUnauthorized("")
	}
	reason, err := requireText(reason, "reason")
	if err != nil {
		return 0, err
	}

	total, err := s.casefiles.IncrementInfractions(ctx, target.UserID)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	s.addHistory(ctx, target.UserID, domain.HistoryWarning, "Warning: "+reason, actor.UserID)
	s.notifyMember(ctx, target.UserID, "⚠️ You have received a warning", reason, total)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventMemberWarned,
		Actor:   events.ActorOf(actor),
		Payload: events.DisciplinePayload{TargetID: target.UserID, Reason: reason, Total: total},
	})
	return total, nil
}

// Note attaches an internal staff note. The member is not told.
func (s *CasefileService) Note(ctx context.Context, actor domain.Actor, target platform.Member, text string) error {
	if !actor.Capabilities.IsStaff {
		return apperrors.NewUnauthorized("")
	}
	text, err := requireText(text, "note")
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.casefiles.AddNote(ctx, target.UserID, domain.Note{Text: text, ByID: actor.UserID, Timestamp: now}); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.addHistory(ctx, target.UserID, domain.HistoryNote, "Note added", actor.UserID)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventNoteAdded,
		Actor:   events.ActorOf(actor),
		Payload: events.DisciplinePayload{TargetID: target.UserID, Reason: text},
	})
	return nil
}

func (s *CasefileService) addHistory(ctx context.Context, userID string, t domain.HistoryType, action, byID string) {
	entry := domain.HistoryEntry{Type: t, Action: action, ByID: byID, Timestamp: s.now()}
	if err := s.casefiles.AddHistory(ctx, userID, entry); err != nil {
		s.logger.Warn("history not recorded", zap.String("user_id", userID), zap.Error(err))
	}
}

// notifyMember DMs the member; closed DMs are expected and only logged.
func (s *CasefileService) notifyMember(ctx context.Context, userID, title, reason string, total int) {
	msg := platform.Message{Embed: &platform.Embed{
		Title: title,
		Fields: []platform.EmbedField{
			{Name: "Reason", Value: reason},
			{Name: "Total", Value: itoa(total)},
		},
		Timestamp: s.now(),
		Color:     BotColor,
	}}
	if err := s.platform.SendDM(ctx, userID, msg); err != nil {
		s.logger.Debug("dm not delivered", zap.String("user_id", userID), zap.Error(err))
	}
}

func requireText(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewValidationError("A "+field+" is required.", map[string]any{"field": field})
	}
	return s, nil
}
