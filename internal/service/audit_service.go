package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/config"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/platform"
)

// AuditService turns domain events into log channel embeds.
type AuditService struct {
	dispatcher events.Dispatcher
	platform   platform.Platform
	logger     *zap.Logger
	channels   config.ChannelsConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, p platform.Platform, logger *zap.Logger, channels config.ChannelsConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		platform:   p,
		logger:     logger,
		channels:   channels,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleTicketCreated)
	a.dispatcher.Subscribe(events.EventTicketClaimed, a.handleTicketClaimed)
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handleTicketClosed)
	a.dispatcher.Subscribe(events.EventSessionStarted, a.handleSessionAnnounced)
	a.dispatcher.Subscribe(events.EventSessionReinvites, a.handleSessionAnnounced)
	a.dispatcher.Subscribe(events.EventSessionReleased, a.handleSessionAnnounced)
	a.dispatcher.Subscribe(events.EventSessionEnded, a.handleSessionEnded)
	a.dispatcher.Subscribe(events.EventVehicleRegistered, a.handleVehicle)
	a.dispatcher.Subscribe(events.EventVehicleUnregistered, a.handleVehicle)
	a.dispatcher.Subscribe(events.EventMemberStruck, a.handleDiscipline)
	a.dispatcher.Subscribe(events.EventMemberWarned, a.handleDiscipline)
	a.dispatcher.Subscribe(events.EventNoteAdded, a.handleDiscipline)
}

func (a *AuditService) handleTicketCreated(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return payloadError(event)
	}
	return a.post(ctx, a.channels.ActionLog, event, "🎫 New Ticket Created (Panel)",
		line("Owner", domain.MentionUser(p.OwnerID))+
			line("Channel", domain.MentionChannel(event.ChannelID))+
			line("Type", string(p.Type))+
			lastLine("Priority", string(p.Priority)))
}

func (a *AuditService) handleTicketClaimed(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.TicketClaimedPayload)
	if !ok {
		return payloadError(event)
	}
	desc := line("Ticket", p.ChannelName)
	if p.PreviousClaimer != "" && p.PreviousClaimer != p.ClaimedBy {
		desc += line("Previously Claimed By", domain.MentionUser(p.PreviousClaimer))
	}
	desc += lastLine("Claimed By", domain.MentionUser(p.ClaimedBy))
	return a.post(ctx, a.channels.ActionLog, event, "🎫 Ticket Claimed", desc)
}

func (a *AuditService) handleTicketClosed(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return payloadError(event)
	}
	return a.post(ctx, a.channels.ActionLog, event, "🎫 Ticket Closed",
		line("Ticket Channel", p.ChannelName)+
			lastLine("Closed By", domain.MentionUser(event.Actor.UserID)))
}

func (a *AuditService) handleSessionAnnounced(_ context.Context, event events.Event) error {
	a.logger.Info("session announced",
		zap.String("event_type", string(event.Type)),
		zap.String("channel_id", event.ChannelID),
		zap.String("host_id", event.Actor.UserID))
	return nil
}

func (a *AuditService) handleSessionEnded(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.SessionEndedPayload)
	if !ok {
		return payloadError(event)
	}
	total := notApplicable
	if p.Duration != nil {
		total = formatDuration(*p.Duration)
	}
	host := notApplicable
	if p.HostID != "" {
		host = domain.MentionUser(p.HostID)
	}
	desc := EmojiDot + " **Start Time:** " + formatTimestamp(p.Start) + "\n" +
		EmojiDot + " **End Time:** " + formatTimestamp(p.End) + "\n" +
		EmojiDot + " **Total Time:** " + total + "\n" +
		EmojiDot + " **Session Host:** " + host
	return a.send(ctx, a.channels.SessionLog, platform.Message{Embed: &platform.Embed{
		Title:       "📘 Session Log",
		Description: desc,
		Color:       BotColor,
	}})
}

func (a *AuditService) handleVehicle(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.VehiclePayload)
	if !ok {
		return payloadError(event)
	}
	action := "Registered"
	if event.Type == events.EventVehicleUnregistered {
		action = fmt.Sprintf("Unregistered (%d removed)", p.Removed)
	}
	v := p.Vehicle
	return a.send(ctx, a.channels.VehicleLog, platform.Message{Embed: &platform.Embed{
		Title: "🚗 Vehicle Registration Action",
		Fields: []platform.EmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", domain.MentionUser(event.Actor.UserID), event.Actor.UserID)},
			{Name: "Action", Value: action},
			{Name: "Vehicle", Value: orNA(v.Year) + " " + orNA(v.Make) + " " + orNA(v.Model)},
			{Name: "Plate / State", Value: orNA(v.Plate) + " / " + orNA(v.State)},
			{Name: "Usage", Value: orNA(v.Usage)},
		},
		Timestamp: event.Timestamp,
		Color:     BotColor,
	}})
}

func (a *AuditService) handleDiscipline(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.DisciplinePayload)
	if !ok {
		return payloadError(event)
	}
	var (
		title   string
		channel = a.channels.ActionLog
		label   = "Reason"
	)
	switch event.Type {
	case events.EventMemberStruck:
		title, channel = "⚠️ Staff Strike Issued", a.channels.StrikeLog
	case events.EventMemberWarned:
		title = "⚠️ Warning Issued"
	default:
		title, label = "📝 Note Added", "Note"
	}
	desc := line("Member", domain.MentionUser(p.TargetID)) +
		line("Issued By", domain.MentionUser(event.Actor.UserID)) +
		line(label, p.Reason)
	if p.Total > 0 {
		desc += line("Total", itoa(p.Total))
	}
	return a.post(ctx, channel, event, title, desc[:len(desc)-1])
}

func (a *AuditService) post(ctx context.Context, channelID string, event events.Event, title, desc string) error {
	return a.send(ctx, channelID, platform.Message{Embed: &platform.Embed{
		Title:       title,
		Description: desc,
		Timestamp:   event.Timestamp,
		Color:       BotColor,
	}})
}

func (a *AuditService) send(ctx context.Context, channelID string, msg platform.Message) error {
	if channelID == "" {
		return nil
	}
	if _, err := a.platform.SendMessage(ctx, channelID, msg); err != nil {
		return fmt.Errorf("audit post to %s: %w", channelID, err)
	}
	return nil
}

func line(label, value string) string {
	return lastLine(label, value) + "\n"
}

func lastLine(label, value string) string {
	return EmojiArrow + "**" + label + ":** " + value
}

func payloadError(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}
