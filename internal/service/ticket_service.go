package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/observability"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/repository"
	"github.com/spec-kit/community-bot/internal/worker"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// DeleteFailureMessage is sent back to whoever closed a ticket whose
// channel could not be deleted.
const DeleteFailureMessage = "Failed to delete the ticket channel. Check bot permissions."

// CloseNotifier delivers a private follow-up to the member who closed a
// ticket.
type CloseNotifier func(ctx context.Context, content string)

// TicketService coordinates the ticket lifecycle: create, claim, close.
type TicketService struct {
	publisher
	platform    platform.Platform
	roles       *auth.RoleTable
	casefiles   repository.CasefileRepository
	sequence    *repository.TicketSequence
	transcripts *TranscriptService
	scheduler   *worker.Scheduler
	metrics     *observability.Metrics
	logger      *zap.Logger

	// creating serializes Create per owner across the category scan and
	// channel creation.
	creating keyedMutex

	everyoneRoleID string
	categoryID     string
	closeDelay     time.Duration
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Platform     platform.Platform
	Roles        *auth.RoleTable
	CasefileRepo repository.CasefileRepository
	Sequence     *repository.TicketSequence
	Transcripts  *TranscriptService
	Scheduler    *worker.Scheduler
	Dispatcher   events.Dispatcher
	Clock        clock.Clock
	Metrics      *observability.Metrics
	Logger       *zap.Logger

	// EveryoneRoleID is the guild's default role, which shares the guild id.
	EveryoneRoleID string
	CategoryID     string
	CloseDelay     time.Duration
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	sequence := deps.Sequence
	if sequence == nil {
		sequence = repository.NewTicketSequence(0)
	}
	return &TicketService{
		publisher:      publisher{dispatcher: deps.Dispatcher, clock: clk},
		platform:       deps.Platform,
		roles:          deps.Roles,
		casefiles:      deps.CasefileRepo,
		sequence:       sequence,
		transcripts:    deps.Transcripts,
		scheduler:      deps.Scheduler,
		metrics:        deps.Metrics,
		logger:         logger,
		everyoneRoleID: deps.EveryoneRoleID,
		categoryID:     deps.CategoryID,
		closeDelay:     deps.CloseDelay,
	}
}

// PostPanel sends the support panel to a channel.
func (s *TicketService) PostPanel(ctx context.Context, actor domain.Actor, channelID string) error {
	if !actor.Capabilities.IsStaff {
		return apperrors.NewUnauthorized("")
	}
	if _, err := s.platform.SendMessage(ctx, channelID, PanelMessage()); err != nil {
		return apperrors.NewCollaboratorFailure("post panel", err)
	}
	return nil
}

// Create opens a ticket channel for the requester. At most one open ticket
// per owner may exist under the ticket category.
func (s *TicketService) Create(ctx context.Context, requester domain.Actor, ticketType domain.TicketType) (*domain.Ticket, error) {
	if !ticketType.Valid() {
		return nil, apperrors.NewValidationError("Unknown ticket type.", map[string]any{"type": string(ticketType)})
	}

	ch, n, state, err := s.createChannel(ctx, requester, ticketType)
	if err != nil {
		return nil, err
	}
	priority := state.Priority

	ticket := &domain.Ticket{ChannelID: ch.ID, ChannelName: ch.Name, Sequence: n, State: state}
	logger := s.logger.With(zap.String("channel_id", ch.ID), zap.String("owner_id", requester.UserID))

	if _, err := s.platform.SendMessage(ctx, ch.ID, s.staffPing(requester, ticketType, priority)); err != nil {
		logger.Warn("staff ping failed", zap.Error(err))
	}
	if s.casefiles != nil {
		entry := domain.HistoryEntry{
			Type:      domain.HistoryTicketOpen,
			Action:    fmt.Sprintf("Opened ticket %s (%s)", ch.Name, ticketType),
			ByID:      requester.UserID,
			Extra:     "via panel",
			Timestamp: s.now(),
		}
		if err := s.casefiles.AddHistory(ctx, requester.UserID, entry); err != nil {
			logger.Warn("ticket history not recorded", zap.Error(err))
		}
	}

	s.metrics.RecordTicketCreated(string(ticketType))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		ChannelID: ch.ID,
		Actor:     events.ActorOf(requester),
		Payload: events.TicketCreatedPayload{
			ChannelName: ch.Name,
			OwnerID:     requester.UserID,
			Type:        ticketType,
			Priority:    priority,
			Sequence:    n,
		},
	})
	logger.Info("ticket created", zap.String("type", string(ticketType)), zap.Int64("sequence", n))
	return ticket, nil
}

// createChannel checks for an existing open ticket and creates the channel
// while holding the owner's create lock.
func (s *TicketService) createChannel(ctx context.Context, requester domain.Actor, ticketType domain.TicketType) (*platform.Channel, int64, domain.TicketState, error) {
	unlock := s.creating.Lock(requester.UserID)
	defer unlock()

	existing, err := s.findOpenTicket(ctx, requester.UserID)
	if err != nil {
		return nil, 0, domain.TicketState{}, err
	}
	if existing != "" {
		return nil, 0, domain.TicketState{}, apperrors.NewDuplicateTicket(existing)
	}

	// The number is spent even if channel creation fails below.
	n := s.sequence.Next()
	priority := domain.TicketPriorityNormal
	if requester.Capabilities.IsBooster {
		priority = domain.TicketPriorityHigh
	}
	state := domain.TicketState{
		OwnerID:  requester.UserID,
		Type:     ticketType,
		Status:   domain.TicketStatusOpen,
		Priority: priority,
	}
	topic, err := state.EncodeTopic()
	if err != nil {
		return nil, 0, state, apperrors.NewInvalidStateEncoding("ticket state cannot be encoded", err)
	}

	ch, err := s.platform.CreateChannel(ctx, platform.CreateChannelRequest{
		Name:       TicketChannelName(requester.Username, requester.UserID, n),
		ParentID:   s.categoryID,
		Topic:      topic,
		Overwrites: s.openOverwrites(requester.UserID),
		Reason:     fmt.Sprintf("Ticket created by %s via panel", requester.Username),
	})
	if err != nil {
		return nil, n, state, apperrors.NewCollaboratorFailure("create ticket channel", err)
	}
	return ch, n, state, nil
}

// Claim assigns an open ticket to high command. Claiming an already
// claimed ticket replaces the claimant.
func (s *TicketService) Claim(ctx context.Context, claimant domain.Actor, channelID string) (*domain.Ticket, error) {
	if !claimant.Capabilities.IsHighCommandPlus {
		return nil, apperrors.NewUnauthorized("")
	}
	ticket, err := s.loadTicket(ctx, channelID, false)
	if err != nil {
		return nil, err
	}
	if !ticket.State.IsOpen() {
		return nil, apperrors.NewTicketNotOpen()
	}

	previous := ticket.State.ClaimedBy
	claimed := ticket.State.Claim(claimant.UserID)
	topic, err := claimed.EncodeTopic()
	if err != nil {
		return nil, apperrors.NewInvalidStateEncoding("ticket state cannot be encoded", err)
	}
	if err := s.platform.EditTopic(ctx, channelID, topic); err != nil {
		return nil, apperrors.NewCollaboratorFailure("update ticket topic", err)
	}
	if err := s.platform.SetOverwrites(ctx, channelID, s.claimedOverwrites(claimed.OwnerID)); err != nil {
		s.restoreTopic(ctx, ticket)
		return nil, apperrors.NewCollaboratorFailure("update ticket permissions", err)
	}
	ticket.State = claimed

	if previous != "" && previous != claimant.UserID {
		s.logger.Info("ticket re-claimed",
			zap.String("channel_id", channelID),
			zap.String("previous_claimer", previous),
			zap.String("claimed_by", claimant.UserID))
	}
	s.metrics.RecordTicketClaimed()
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClaimed,
		ChannelID: channelID,
		Actor:     events.ActorOf(claimant),
		Payload: events.TicketClaimedPayload{
			ChannelName:     ticket.ChannelName,
			ClaimedBy:       claimant.UserID,
			PreviousClaimer: previous,
		},
	})
	return ticket, nil
}

// restoreTopic puts back the topic a failed claim replaced.
func (s *TicketService) restoreTopic(ctx context.Context, ticket *domain.Ticket) {
	logger := s.logger.With(zap.String("channel_id", ticket.ChannelID))
	topic, err := ticket.State.EncodeTopic()
	if err != nil {
		logger.Warn("ticket topic not restored", zap.Error(err))
		return
	}
	if err := s.platform.EditTopic(ctx, ticket.ChannelID, topic); err != nil {
		logger.Error("ticket topic not restored after failed claim", zap.Error(err))
	}
}

// Close schedules the ticket's closure after the configured delay and
// returns as soon as the request is accepted. The owner or ticket staff
// may close; closed tickets whose channel survived may be closed again.
// A second request while a close is waiting or running fails with
// ClosePending. notify receives the deletion failure message, if any.
func (s *TicketService) Close(ctx context.Context, initiator domain.Actor, channelID string, notify CloseNotifier) (*worker.Handle, error) {
	ticket, err := s.loadTicket(ctx, channelID, true)
	if err != nil {
		return nil, err
	}
	if initiator.UserID != ticket.State.OwnerID && !initiator.Capabilities.CanCloseTickets() {
		return nil, apperrors.NewUnauthorized("Only the ticket owner or staff can close this ticket.")
	}
	if s.scheduler == nil {
		return nil, apperrors.NewInternalError(errors.New("ticket close scheduler not configured"))
	}

	handle, scheduled := s.scheduler.After(s.closeDelay, "ticket-close:"+channelID, func(taskCtx context.Context) {
		s.finishClose(taskCtx, initiator, ticket, notify)
	})
	if handle == nil {
		return nil, apperrors.NewInternalError(errors.New("shutting down"))
	}
	if !scheduled {
		return nil, apperrors.NewClosePending(channelID)
	}
	s.logger.Info("ticket close scheduled",
		zap.String("channel_id", channelID),
		zap.String("closed_by", initiator.UserID),
		zap.Duration("delay", s.closeDelay))
	return handle, nil
}

// CloseDelay is the delay between a close request and deletion.
func (s *TicketService) CloseDelay() time.Duration {
	return s.closeDelay
}

func (s *TicketService) finishClose(ctx context.Context, initiator domain.Actor, ticket *domain.Ticket, notify CloseNotifier) {
	logger := s.logger.With(zap.String("channel_id", ticket.ChannelID))

	// Re-read so a claim made during the delay is still stripped and
	// unknown keys survive.
	if ch, err := s.platform.Channel(ctx, ticket.ChannelID); err == nil {
		if state, err := domain.ParseTicketTopic(ch.Topic); err == nil {
			ticket.State = state
		}
		ticket.ChannelName = ch.Name
	}

	if s.transcripts != nil {
		if err := s.transcripts.Emit(ctx, platform.Channel{ID: ticket.ChannelID, Name: ticket.ChannelName}); err != nil {
			logger.Warn("transcript not delivered", zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: ticket.ChannelID,
		Actor:     events.ActorOf(initiator),
		Payload: events.TicketClosedPayload{
			ChannelName: ticket.ChannelName,
			OwnerID:     ticket.State.OwnerID,
		},
	})

	closed := ticket.State.Closed()
	if topic, err := closed.EncodeTopic(); err != nil {
		logger.Warn("closed ticket state cannot be encoded", zap.Error(err))
	} else if err := s.platform.EditTopic(ctx, ticket.ChannelID, topic); err != nil {
		logger.Warn("closed topic not written", zap.Error(err))
	} else {
		ticket.State = closed
	}

	reason := "Ticket closed by " + initiator.Username
	err := s.platform.DeleteChannel(ctx, ticket.ChannelID, reason)
	if errors.Is(err, platform.ErrNotFound) {
		logger.Info("ticket channel already deleted")
		return
	}
	if err != nil {
		logger.Error("ticket channel not deleted", zap.Error(err))
		s.metrics.RecordDeleteFailure()
		if notify != nil {
			notify(ctx, DeleteFailureMessage)
		}
		return
	}
	s.metrics.RecordTicketClosed()
	logger.Info("ticket closed", zap.String("closed_by", initiator.UserID))
}

// loadTicket reads and decodes a ticket channel. With corruptAsMissing a
// topic that carries a broken ticket record is reported as not a ticket.
func (s *TicketService) loadTicket(ctx context.Context, channelID string, corruptAsMissing bool) (*domain.Ticket, error) {
	ch, err := s.platform.Channel(ctx, channelID)
	if errors.Is(err, platform.ErrNotFound) {
		return nil, apperrors.NewNotTicketChannel()
	}
	if err != nil {
		return nil, apperrors.NewCollaboratorFailure("read channel", err)
	}

	state, err := domain.ParseTicketTopic(ch.Topic)
	switch {
	case errors.Is(err, domain.ErrNotTicket):
		return nil, apperrors.NewNotTicketChannel()
	case errors.Is(err, domain.ErrCorruptTicket) && corruptAsMissing:
		return nil, apperrors.NewNotTicketChannel()
	case err != nil:
		return nil, apperrors.NewInvalidStateEncoding("ticket state is unreadable", err)
	}
	return &domain.Ticket{ChannelID: ch.ID, ChannelName: ch.Name, State: state}, nil
}

// findOpenTicket scans the ticket category for an open ticket owned by
// userID and returns its channel id.
func (s *TicketService) findOpenTicket(ctx context.Context, userID string) (string, error) {
	channels, err := s.platform.CategoryChannels(ctx, s.categoryID)
	if errors.Is(err, platform.ErrNotFound) {
		return "", apperrors.NewNotFound("ticket category", map[string]any{"category_id": s.categoryID})
	}
	if err != nil {
		return "", apperrors.NewCollaboratorFailure("list ticket channels", err)
	}
	for _, ch := range channels {
		state, err := domain.ParseTicketTopic(ch.Topic)
		if err != nil {
			continue
		}
		if state.OwnerID == userID && state.IsOpen() {
			return ch.ID, nil
		}
	}
	return "", nil
}

func (s *TicketService) openOverwrites(ownerID string) []platform.Overwrite {
	out := []platform.Overwrite{
		platform.Deny(s.everyoneRoleID, platform.TargetRole),
		platform.Allow(ownerID, platform.TargetMember),
	}
	for _, id := range s.roles.StaffRoleIDs() {
		out = append(out, platform.Allow(id, platform.TargetRole))
	}
	return append(out, platform.Allow(s.platform.BotUserID(), platform.TargetMember))
}

func (s *TicketService) claimedOverwrites(ownerID string) []platform.Overwrite {
	out := []platform.Overwrite{platform.Deny(s.everyoneRoleID, platform.TargetRole)}
	for _, id := range s.roles.ResponderRoleIDs() {
		out = append(out, platform.Allow(id, platform.TargetRole))
	}
	for _, id := range s.roles.ObserverRoleIDs() {
		out = append(out, platform.ReadOnly(id, platform.TargetRole))
	}
	return append(out,
		platform.ReadOnly(ownerID, platform.TargetMember),
		platform.Allow(s.platform.BotUserID(), platform.TargetMember),
	)
}

func (s *TicketService) staffPing(requester domain.Actor, t domain.TicketType, p domain.TicketPriority) platform.Message {
	roles := s.roles.PingRoleIDs()
	mentions := make([]string, 0, len(roles))
	for _, id := range roles {
		mentions = append(mentions, domain.MentionRole(id))
	}
	return platform.Message{
		Content:      strings.Join(mentions, " "),
		Embed:        ticketEmbed(requester.Name(), t, p),
		Components:   []platform.Component{closeButton()},
		MentionRoles: roles,
		MentionUsers: []string{requester.UserID},
	}
}

// keyedMutex hands out one mutex per key, dropping it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// TicketChannelName builds "<safe-username>-<n>". The safe username keeps
// letters, digits, '-' and '_', lowercased; an empty result falls back to
// "user<id>".
func TicketChannelName(username, userID string, n int64) string {
	var b strings.Builder
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	safe := b.String()
	if safe == "" {
		safe = "user" + userID
	}
	return fmt.Sprintf("%s-%d", safe, n)
}
