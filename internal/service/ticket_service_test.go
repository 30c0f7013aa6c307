package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/platform/platformtest"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

func TestCreateTicket(t *testing.T) {
	h := newHarness(t)
	u := h.actor("100", "U")

	ticket := h.openTicket(u, domain.TicketTypeCivilianSupport)

	assert.Equal(t, "u-1", ticket.ChannelName)
	assert.Equal(t, int64(1), ticket.Sequence)
	assert.Equal(t, map[string]string{
		"owner_id":   "100",
		"type":       "Civilian Support",
		"status":     "open",
		"priority":   "Normal",
		"claimed_by": "None",
	}, h.topic(ticket.ChannelID))

	ch, _ := h.platform.ChannelByID(ticket.ChannelID)
	assert.Equal(t, categoryID, ch.ParentID)

	everyone, ok := h.platform.OverwriteFor(ticket.ChannelID, guildID)
	require.True(t, ok)
	assert.Equal(t, platform.Deny(guildID, platform.TargetRole), everyone)
	for _, id := range []string{roleAdmin, roleHC, roleOwnership, roleStaff} {
		ow, ok := h.platform.OverwriteFor(ticket.ChannelID, id)
		require.True(t, ok, id)
		assert.Equal(t, platform.Allow(id, platform.TargetRole), ow)
	}
	owner, _ := h.platform.OverwriteFor(ticket.ChannelID, "100")
	assert.Equal(t, platform.Allow("100", platform.TargetMember), owner)
	bot, _ := h.platform.OverwriteFor(ticket.ChannelID, "bot")
	assert.Equal(t, platform.Allow("bot", platform.TargetMember), bot)

	msgs := h.platform.MessagesTo(ticket.ChannelID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "<@&r-staff> <@&r-own>", msgs[0].Content)
	assert.Equal(t, []string{roleStaff, roleOwnership}, msgs[0].MentionRoles)
	require.Len(t, msgs[0].Components, 1)
	assert.Equal(t, CustomIDTicketClose, msgs[0].Components[0].CustomID)

	logs := h.platform.MessagesTo(actionLogID)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Embed.Title, "New Ticket Created")

	cf, err := h.casefile.Casefile(context.Background(), "100", false)
	require.NoError(t, err)
	require.Len(t, cf.History, 1)
	assert.Equal(t, domain.HistoryTicketOpen, cf.History[0].Type)
	assert.Equal(t, "Opened ticket u-1 (Civilian Support)", cf.History[0].Action)

	require.Len(t, h.eventsOf(events.EventTicketCreated), 1)
}

func TestCreateTicketBoosterPriority(t *testing.T) {
	h := newHarness(t)
	ticket := h.openTicket(h.actor("7", "vip.member", roleBooster), domain.TicketTypeSupportTicket)

	assert.Equal(t, domain.TicketPriorityHigh, ticket.State.Priority)
	assert.Equal(t, "High", h.topic(ticket.ChannelID)["priority"])
	assert.Equal(t, "vipmember-1", ticket.ChannelName)
}

func TestCreateTicketDuplicate(t *testing.T) {
	h := newHarness(t)
	u := h.actor("100", "u")
	first := h.openTicket(u, domain.TicketTypeCivilianSupport)

	_, err := h.tickets.Create(context.Background(), u, domain.TicketTypeMemberReport)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateTicket))
	assert.Equal(t, first.ChannelID, apperrors.ToDomainError(err).DetailString("channel_id"))
	assert.Equal(t, 1, h.platform.CallCount(platformtest.OpCreateChannel))
}

func TestCreateTicketAfterCloseIsAllowed(t *testing.T) {
	h := newHarness(t)
	u := h.actor("100", "u")
	h.platform.AddChannel(platform.Channel{
		ID:       "old",
		Name:     "u-0",
		ParentID: categoryID,
		Topic:    "owner_id:100|type:Support Ticket|status:closed|priority:Normal",
	})

	ticket := h.openTicket(u, domain.TicketTypeSupportTicket)
	assert.Equal(t, "u-1", ticket.ChannelName)
}

func TestCreateTicketIgnoresOtherCategories(t *testing.T) {
	h := newHarness(t)
	h.platform.AddChannel(platform.Channel{
		ID:       "elsewhere",
		ParentID: "other",
		Topic:    "owner_id:100|type:Support Ticket|status:open|priority:Normal|claimed_by:None",
	})
	h.openTicket(h.actor("100", "u"), domain.TicketTypeSupportTicket)
}

func TestCreateTicketSequenceNeverReused(t *testing.T) {
	h := newHarness(t)

	h.platform.Fail(platformtest.OpCreateChannel, nil)
	_, err := h.tickets.Create(context.Background(), h.actor("1", "a"), domain.TicketTypeSupportTicket)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCollaboratorFailure))
	h.platform.Clear(platformtest.OpCreateChannel)

	second := h.openTicket(h.actor("2", "b"), domain.TicketTypeSupportTicket)
	third := h.openTicket(h.actor("3", "c"), domain.TicketTypeSupportTicket)
	assert.Equal(t, "b-2", second.ChannelName)
	assert.Equal(t, "c-3", third.ChannelName)
	created := h.eventsOf(events.EventTicketCreated)
	require.Len(t, created, 2)
	assert.Equal(t, int64(2), created[0].Payload.(events.TicketCreatedPayload).Sequence)
}

func TestCreateTicketConcurrentSequences(t *testing.T) {
	h := newHarness(t)
	const n = 20

	var wg sync.WaitGroup
	names := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			ticket, err := h.tickets.Create(context.Background(), h.actor(id, id), domain.TicketTypeSupportTicket)
			if assert.NoError(t, err) {
				names <- ticket.ChannelName
			}
		}(i)
	}
	wg.Wait()
	close(names)

	seen := map[string]bool{}
	for name := range names {
		seen[name[strings.LastIndex(name, "-")+1:]] = true
	}
	assert.Len(t, seen, n)
}

func TestCreateTicketValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.tickets.Create(context.Background(), h.actor("1", "a"), domain.TicketType("Banana"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	assert.Zero(t, h.platform.CallCount(platformtest.OpCreateChannel))
}

func TestCreateTicketMissingCategory(t *testing.T) {
	h := newHarness(t)
	h.tickets.categoryID = "missing"
	_, err := h.tickets.Create(context.Background(), h.actor("1", "a"), domain.TicketTypeSupportTicket)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreateTicketStaffPingFailureIsAbsorbed(t *testing.T) {
	h := newHarness(t)
	h.platform.Fail(platformtest.OpSendMessage, nil)

	ticket := h.openTicket(h.actor("1", "a"), domain.TicketTypeSupportTicket)
	assert.NotEmpty(t, ticket.ChannelID)
}

func TestTicketChannelName(t *testing.T) {
	cases := []struct {
		username string
		want     string
	}{
		{"U", "u-4"},
		{"Some.User!", "someuser-4"},
		{"dash-and_under", "dash-and_under-4"},
		{"Ünïcode", "ünïcode-4"},
		{"!!!", "user42-4"},
		{"", "user42-4"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TicketChannelName(tc.username, "42", 4), tc.username)
	}
}

func TestClaimTicket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.openTicket(h.actor("100", "u"), domain.TicketTypeCivilianSupport)
	s := h.actor("200", "s", roleHC)

	claimed, err := h.tickets.Claim(ctx, s, ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "200", claimed.State.ClaimedBy)

	fields := h.topic(ticket.ChannelID)
	assert.Equal(t, "200", fields["claimed_by"])
	assert.Equal(t, "open", fields["status"])

	owner, ok := h.platform.OverwriteFor(ticket.ChannelID, "100")
	require.True(t, ok)
	assert.True(t, owner.View)
	assert.False(t, owner.Send)

	staff, _ := h.platform.OverwriteFor(ticket.ChannelID, roleStaff)
	assert.Equal(t, platform.ReadOnly(roleStaff, platform.TargetRole), staff)
	for _, id := range []string{roleHC, roleOwnership, roleAdmin} {
		ow, _ := h.platform.OverwriteFor(ticket.ChannelID, id)
		assert.Equal(t, platform.Allow(id, platform.TargetRole), ow)
	}
	everyone, _ := h.platform.OverwriteFor(ticket.ChannelID, guildID)
	assert.False(t, everyone.View)
	bot, _ := h.platform.OverwriteFor(ticket.ChannelID, "bot")
	assert.True(t, bot.Send)

	claims := h.eventsOf(events.EventTicketClaimed)
	require.Len(t, claims, 1)
	assert.Empty(t, claims[0].Payload.(events.TicketClaimedPayload).PreviousClaimer)
}

func TestReclaimOverwritesClaimant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.openTicket(h.actor("100", "u"), domain.TicketTypeCivilianSupport)

	_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), ticket.ChannelID)
	require.NoError(t, err)
	_, err = h.tickets.Claim(ctx, h.actor("300", "o", roleOwnership), ticket.ChannelID)
	require.NoError(t, err)

	assert.Equal(t, "300", h.topic(ticket.ChannelID)["claimed_by"])
	claims := h.eventsOf(events.EventTicketClaimed)
	require.Len(t, claims, 2)
	assert.Equal(t, "200", claims[1].Payload.(events.TicketClaimedPayload).PreviousClaimer)

	logs := h.platform.MessagesTo(actionLogID)
	assert.Contains(t, logs[len(logs)-1].Embed.Description, "Previously Claimed By")
}

func TestClaimRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("staff team cannot claim", func(t *testing.T) {
		h := newHarness(t)
		ticket := h.openTicket(h.actor("100", "u"), domain.TicketTypeCivilianSupport)
		_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleStaff), ticket.ChannelID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
		assert.Zero(t, h.platform.CallCount(platformtest.OpSetOverwrites))
	})

	t.Run("not a ticket", func(t *testing.T) {
		h := newHarness(t)
		h.platform.AddChannel(platform.Channel{ID: "general", Topic: "Welcome!"})
		_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), "general")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotTicketChannel))
	})

	t.Run("corrupt", func(t *testing.T) {
		h := newHarness(t)
		h.platform.AddChannel(platform.Channel{ID: "bad", Topic: "owner_id:1|type:Nope|status:open|priority:Normal"})
		_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), "bad")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStateEncoding))
	})

	t.Run("closed", func(t *testing.T) {
		h := newHarness(t)
		h.platform.AddChannel(platform.Channel{ID: "done", Topic: "owner_id:1|type:Support Ticket|status:closed|priority:Normal"})
		_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), "done")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeTicketNotOpen))
	})

	t.Run("overwrite failure leaves topic unclaimed", func(t *testing.T) {
		h := newHarness(t)
		ticket := h.openTicket(h.actor("100", "u"), domain.TicketTypeCivilianSupport)
		h.platform.Fail(platformtest.OpSetOverwrites, nil)
		_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), ticket.ChannelID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeCollaboratorFailure))
		assert.Equal(t, "None", h.topic(ticket.ChannelID)["claimed_by"])
		require.Len(t, h.platform.TopicLog[ticket.ChannelID], 3)
		assert.Equal(t, "200", topicFields(h.platform.TopicLog[ticket.ChannelID][1])["claimed_by"])
		assert.Empty(t, h.eventsOf(events.EventTicketClaimed))
	})

	t.Run("topic failure", func(t *testing.T) {
		h := newHarness(t)
		ticket := h.openTicket(h.actor("100", "u"), domain.TicketTypeCivilianSupport)
		h.platform.Fail(platformtest.OpEditTopic, nil)
		_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), ticket.ChannelID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeCollaboratorFailure))
		assert.Zero(t, h.platform.CallCount(platformtest.OpSetOverwrites))
		owner, ok := h.platform.OverwriteFor(ticket.ChannelID, "100")
		require.True(t, ok)
		assert.True(t, owner.Send)
	})
}

func TestCloseTicket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.actor("100", "u")
	ticket := h.openTicket(u, domain.TicketTypeCivilianSupport)
	_, err := h.tickets.Claim(ctx, h.actor("200", "s", roleHC), ticket.ChannelID)
	require.NoError(t, err)
	h.platform.AddHistory(ticket.ChannelID, platform.HistoryMessage{
		AuthorID: "100", AuthorName: "u", Content: "hello", CreatedAt: epoch,
	})

	var notified []string
	handle, err := h.tickets.Close(ctx, u, ticket.ChannelID, func(_ context.Context, msg string) {
		notified = append(notified, msg)
	})
	require.NoError(t, err)
	require.NotNil(t, handle)

	h.clock.Advance(4 * time.Second)
	assert.Empty(t, h.platform.Deleted)
	assert.Empty(t, h.eventsOf(events.EventTicketClosed))

	h.clock.Advance(time.Second)
	assert.Equal(t, []string{ticket.ChannelID}, h.platform.Deleted)
	assert.Empty(t, notified)

	topics := h.platform.TopicLog[ticket.ChannelID]
	last := topicFields(topics[len(topics)-1])
	assert.Equal(t, "closed", last["status"])
	assert.NotContains(t, last, "claimed_by")
	assert.Equal(t, "100", last["owner_id"])

	logs := h.platform.MessagesTo(actionLogID)
	var titles []string
	for _, m := range logs {
		if m.Embed != nil {
			titles = append(titles, m.Embed.Title)
		}
	}
	assert.Contains(t, titles, "Transcript — u-1")
	assert.Contains(t, titles, "🎫 Ticket Closed")
	require.Len(t, h.eventsOf(events.EventTicketClosed), 1)

	edit := lastIndex(h.platform.Calls, platformtest.OpEditTopic)
	del := lastIndex(h.platform.Calls, platformtest.OpDeleteChannel)
	assert.Less(t, edit, del)
}

func TestCloseTicketDeleteFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.actor("100", "u")
	ticket := h.openTicket(u, domain.TicketTypeCivilianSupport)
	h.platform.Fail(platformtest.OpDeleteChannel, nil)

	var notified []string
	_, err := h.tickets.Close(ctx, h.actor("9", "staffer", roleStaff), ticket.ChannelID, func(_ context.Context, msg string) {
		notified = append(notified, msg)
	})
	require.NoError(t, err)
	h.clock.Advance(5 * time.Second)

	assert.Equal(t, []string{DeleteFailureMessage}, notified)
	assert.Equal(t, "closed", h.topic(ticket.ChannelID)["status"])
	assert.NotContains(t, h.topic(ticket.ChannelID), "claimed_by")
}

func TestCloseTicketSurvivesTranscriptAndAuditFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.actor("100", "u")
	ticket := h.openTicket(u, domain.TicketTypeCivilianSupport)
	h.platform.Fail(platformtest.OpMessageHistory, nil)
	h.platform.Fail(platformtest.OpSendMessage, nil)

	_, err := h.tickets.Close(ctx, u, ticket.ChannelID, nil)
	require.NoError(t, err)
	h.clock.Advance(5 * time.Second)

	assert.Equal(t, []string{ticket.ChannelID}, h.platform.Deleted)
}

func TestCloseTicketRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("stranger", func(t *testing.T) {
		h := newHarness(t)
		ticket := h.openTicket(h.actor("100", "u"), domain.TicketTypeCivilianSupport)
		_, err := h.tickets.Close(ctx, h.actor("555", "x", roleBooster), ticket.ChannelID, nil)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
		assert.Zero(t, h.scheduler.Pending())
	})

	t.Run("not a ticket", func(t *testing.T) {
		h := newHarness(t)
		h.platform.AddChannel(platform.Channel{ID: "general"})
		_, err := h.tickets.Close(ctx, h.actor("1", "a", roleHC), "general", nil)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotTicketChannel))
	})

	t.Run("corrupt counts as not a ticket", func(t *testing.T) {
		h := newHarness(t)
		h.platform.AddChannel(platform.Channel{ID: "bad", Topic: "owner_id:1|status:weird"})
		_, err := h.tickets.Close(ctx, h.actor("1", "a", roleHC), "bad", nil)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotTicketChannel))
	})
}

func TestCloseTicketSecondRequestWhilePending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.actor("100", "u")
	staff := h.actor("9", "staffer", roleStaff)
	ticket := h.openTicket(owner, domain.TicketTypeCivilianSupport)

	var notified []string
	notify := func(_ context.Context, msg string) { notified = append(notified, msg) }

	_, err := h.tickets.Close(ctx, owner, ticket.ChannelID, notify)
	require.NoError(t, err)

	h.clock.Advance(2 * time.Second)
	_, err = h.tickets.Close(ctx, staff, ticket.ChannelID, notify)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeClosePending))
	assert.Equal(t, 1, h.scheduler.Pending())

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, []string{ticket.ChannelID}, h.platform.Deleted)
	assert.Len(t, h.eventsOf(events.EventTicketClosed), 1)
	assert.Equal(t, 1, h.platform.CallCount(platformtest.OpDeleteChannel))
	assert.Empty(t, notified)
}

func TestCloseTicketChannelAlreadyGone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.actor("100", "u")
	ticket := h.openTicket(owner, domain.TicketTypeCivilianSupport)

	var notified []string
	_, err := h.tickets.Close(ctx, owner, ticket.ChannelID, func(_ context.Context, msg string) {
		notified = append(notified, msg)
	})
	require.NoError(t, err)
	require.NoError(t, h.platform.DeleteChannel(ctx, ticket.ChannelID, "removed by hand"))

	h.clock.Advance(5 * time.Second)
	assert.Empty(t, notified)
}

// gatedCategory holds every category scan until released.
type gatedCategory struct {
	*platformtest.Fake
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCategory) CategoryChannels(ctx context.Context, categoryID string) ([]platform.Channel, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Fake.CategoryChannels(ctx, categoryID)
}

func TestCreateTicketConcurrentSameOwner(t *testing.T) {
	h := newHarness(t)
	gated := &gatedCategory{
		Fake:    h.platform,
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	tickets := NewTicketService(TicketDependencies{
		Platform:       gated,
		Roles:          h.roles,
		Scheduler:      h.scheduler,
		Clock:          h.clock,
		EveryoneRoleID: guildID,
		CategoryID:     categoryID,
	})
	owner := h.actor("100", "u")

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := tickets.Create(context.Background(), owner, domain.TicketTypeCivilianSupport)
			errs <- err
		}()
	}

	<-gated.entered
	select {
	case <-gated.entered:
		t.Fatal("second create scanned the category before the first finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(gated.release)
	<-gated.entered

	var duplicates, created int
	for i := 0; i < 2; i++ {
		err := <-errs
		switch {
		case err == nil:
			created++
		case apperrors.HasCode(err, apperrors.CodeDuplicateTicket):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, duplicates)
	assert.Equal(t, 1, h.platform.CallCount(platformtest.OpCreateChannel))
}

func TestCreateTicketDifferentOwnersDoNotBlock(t *testing.T) {
	h := newHarness(t)
	gated := &gatedCategory{
		Fake:    h.platform,
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	tickets := NewTicketService(TicketDependencies{
		Platform:       gated,
		Roles:          h.roles,
		Clock:          h.clock,
		EveryoneRoleID: guildID,
		CategoryID:     categoryID,
	})

	errs := make(chan error, 2)
	for _, id := range []string{"100", "101"} {
		actor := h.actor(id, "u"+id)
		go func() {
			_, err := tickets.Create(context.Background(), actor, domain.TicketTypeCivilianSupport)
			errs <- err
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-gated.entered:
		case <-time.After(5 * time.Second):
			t.Fatal("creates for different owners were serialized")
		}
	}
	close(gated.release)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
}

func TestCloseTicketDroppedOnShutdown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.actor("100", "u")
	ticket := h.openTicket(u, domain.TicketTypeCivilianSupport)

	_, err := h.tickets.Close(ctx, u, ticket.ChannelID, nil)
	require.NoError(t, err)
	require.NoError(t, h.scheduler.Shutdown(ctx))
	h.clock.Advance(time.Minute)

	assert.Empty(t, h.platform.Deleted)
	_, err = h.tickets.Close(ctx, u, ticket.ChannelID, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestPostPanel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.tickets.PostPanel(ctx, h.actor("1", "a"), "support")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	require.NoError(t, h.tickets.PostPanel(ctx, h.actor("2", "b", roleAdmin), "support"))
	msgs := h.platform.MessagesTo("support")
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Components, 1)
	sel := msgs[0].Components[0]
	assert.Equal(t, CustomIDTicketTypeSelect, sel.CustomID)
	assert.Len(t, sel.Options, len(domain.TicketTypes))
}

func lastIndex(ops []platformtest.Op, op platformtest.Op) int {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i] == op {
			return i
		}
	}
	return -1
}
