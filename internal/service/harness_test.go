package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/config"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/platform/platformtest"
	"github.com/spec-kit/community-bot/internal/repository"
	"github.com/spec-kit/community-bot/internal/topic"
	"github.com/spec-kit/community-bot/internal/worker"
)

const (
	guildID       = "guild"
	categoryID    = "cat"
	actionLogID   = "log-action"
	sessionLogID  = "log-session"
	strikeLogID   = "log-strike"
	vehicleLogID  = "log-vehicle"
	roleAdmin     = "r-admin"
	roleHC        = "r-hc"
	roleOwnership = "r-own"
	roleStaff     = "r-staff"
	roleBooster   = "r-vip"
	roleCivilian  = "r-civ"
)

var epoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type harness struct {
	t         *testing.T
	platform  *platformtest.Fake
	clock     *clock.Fake
	roles     *auth.RoleTable
	scheduler *worker.Scheduler
	sessions  repository.SessionRepository
	casefiles repository.CasefileRepository

	tickets    *TicketService
	sessionSvc *SessionService
	vehicles   *VehicleService
	casefile   *CasefileService

	mu     sync.Mutex
	events []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)

	h := &harness{
		t:         t,
		platform:  platformtest.New(),
		clock:     clock.NewFake(epoch),
		sessions:  repository.NewSessionRepository(),
		casefiles: repository.NewCasefileRepository(),
		roles: auth.NewRoleTable(config.RolesConfig{
			Admin:       []string{roleAdmin},
			HighCommand: []string{roleHC},
			Ownership:   []string{roleOwnership},
			StaffTeam:   []string{roleStaff},
			Booster:     []string{roleBooster},
			Civilian:    []string{roleCivilian},
		}),
	}
	h.platform.AddChannel(platform.Channel{ID: categoryID, Name: "Tickets"})
	h.scheduler = worker.NewScheduler(h.clock, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketClaimed, events.EventTicketClosed,
		events.EventSessionStarted, events.EventSessionReinvites, events.EventSessionReleased, events.EventSessionEnded,
		events.EventVehicleRegistered, events.EventVehicleUnregistered,
		events.EventMemberStruck, events.EventMemberWarned, events.EventNoteAdded,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, e)
			return nil
		})
	}
	NewAuditService(dispatcher, h.platform, logger, config.ChannelsConfig{
		ActionLog:  actionLogID,
		SessionLog: sessionLogID,
		StrikeLog:  strikeLogID,
		VehicleLog: vehicleLogID,
	}).RegisterHandlers()

	h.tickets = NewTicketService(TicketDependencies{
		Platform:       h.platform,
		Roles:          h.roles,
		CasefileRepo:   h.casefiles,
		Transcripts:    NewTranscriptService(h.platform, h.clock, logger, actionLogID, DefaultTranscriptLimit),
		Scheduler:      h.scheduler,
		Dispatcher:     dispatcher,
		Clock:          h.clock,
		Logger:         logger,
		EveryoneRoleID: guildID,
		CategoryID:     categoryID,
		CloseDelay:     5 * time.Second,
	})
	h.sessionSvc = NewSessionService(SessionDependencies{
		Platform:    h.platform,
		SessionRepo: h.sessions,
		Roles:       h.roles,
		Dispatcher:  dispatcher,
		Clock:       h.clock,
		Logger:      logger,
	})
	h.vehicles = NewVehicleService(VehicleDependencies{
		VehicleRepo: repository.NewVehicleRepository(nil, logger),
		Dispatcher:  dispatcher,
		Clock:       h.clock,
		Logger:      logger,
	})
	h.casefile = NewCasefileService(CasefileDependencies{
		Platform:     h.platform,
		CasefileRepo: h.casefiles,
		Vehicles:     h.vehicles,
		Dispatcher:   dispatcher,
		Clock:        h.clock,
		Logger:       logger,
	})
	return h
}

// actor builds a member with capabilities derived from roles.
func (h *harness) actor(id, username string, roles ...string) domain.Actor {
	return domain.Actor{
		UserID:       id,
		Username:     username,
		DisplayName:  username,
		RoleIDs:      roles,
		Capabilities: h.roles.CapabilitiesOf(roles),
	}
}

func (h *harness) eventsOf(t events.EventType) []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []events.Event
	for _, e := range h.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// openTicket creates a ticket and fails the test on error.
func (h *harness) openTicket(owner domain.Actor, t domain.TicketType) *domain.Ticket {
	h.t.Helper()
	ticket, err := h.tickets.Create(context.Background(), owner, t)
	require.NoError(h.t, err)
	return ticket
}

func (h *harness) topic(channelID string) map[string]string {
	h.t.Helper()
	ch, ok := h.platform.ChannelByID(channelID)
	require.True(h.t, ok, "channel %s missing", channelID)
	return topicFields(ch.Topic)
}

func topicFields(raw string) map[string]string {
	return topic.Decode(raw)
}
