package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/platform/platformtest"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

var validSetup = SetupInput{FRP: "65", LEO: "active", House: "Enabled", AORP: "greenville", Peacetime: "STRICT"}

func TestStartupThenEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	host := h.actor("10", "host", roleHC)

	session, err := h.sessionSvc.Startup(ctx, host, "rp", 6)
	require.NoError(t, err)
	assert.Equal(t, 6, session.Goal)
	assert.Equal(t, "10", session.HostID)

	msgs := h.platform.MessagesTo("rp")
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].MentionEveryone)
	assert.Contains(t, msgs[0].Embed.Description, "**6+ Reactions**")
	require.Len(t, h.platform.Reactions, 1)
	assert.Equal(t, reactionCheck, h.platform.Reactions[0].Emoji)

	h.clock.Advance(90 * time.Minute)
	summary, err := h.sessionSvc.End(ctx, host, "rp")
	require.NoError(t, err)
	require.True(t, summary.Logged)
	require.NotNil(t, summary.Duration)
	assert.Equal(t, 90*time.Minute, *summary.Duration)

	logs := h.platform.MessagesTo(sessionLogID)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Embed.Description, "1:30:00")
	assert.Contains(t, logs[0].Embed.Description, "<@10>")

	got, _ := h.sessions.Get(ctx, "rp")
	assert.Nil(t, got)
	log, _ := h.sessions.GetLog(ctx, "rp")
	assert.Nil(t, log)
	assert.Len(t, h.platform.MessagesTo("rp"), 2)
	assert.Len(t, h.eventsOf(events.EventSessionEnded), 1)
}

func TestEndWithoutSession(t *testing.T) {
	h := newHarness(t)

	summary, err := h.sessionSvc.End(context.Background(), h.actor("10", "host", roleAdmin), "rp")
	require.NoError(t, err)
	assert.False(t, summary.Logged)
	assert.Nil(t, summary.Duration)

	msgs := h.platform.MessagesTo("rp")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Embed.Title, "Session End")
	assert.Empty(t, h.platform.MessagesTo(sessionLogID))
	assert.Empty(t, h.eventsOf(events.EventSessionEnded))
}

func TestEndAnnouncementFailureIsAbsorbed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	host := h.actor("10", "host", roleHC)
	_, err := h.sessionSvc.Startup(ctx, host, "rp", 3)
	require.NoError(t, err)

	h.platform.Fail(platformtest.OpSendMessage, nil)
	_, err = h.sessionSvc.End(ctx, host, "rp")
	assert.NoError(t, err)
	got, _ := h.sessions.Get(ctx, "rp")
	assert.Nil(t, got)
}

func TestStartupReactionFallback(t *testing.T) {
	h := newHarness(t)
	h.platform.FailEmoji(reactionCheck)

	_, err := h.sessionSvc.Startup(context.Background(), h.actor("10", "host", roleHC), "rp", 6)
	require.NoError(t, err)
	require.Len(t, h.platform.Reactions, 1)
	assert.Equal(t, reactionPlain, h.platform.Reactions[0].Emoji)
}

func TestStartupReactionFailuresAbsorbed(t *testing.T) {
	h := newHarness(t)
	h.platform.FailEmoji(reactionCheck)
	h.platform.FailEmoji(reactionPlain)

	_, err := h.sessionSvc.Startup(context.Background(), h.actor("10", "host", roleHC), "rp", 6)
	assert.NoError(t, err)
	assert.Empty(t, h.platform.Reactions)
}

func TestStartupAnnouncementFailureStartsNoLog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	host := h.actor("10", "host", roleHC)

	h.platform.Fail(platformtest.OpSendMessage, nil)
	_, err := h.sessionSvc.Startup(ctx, host, "rp", 6)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCollaboratorFailure))
	log, _ := h.sessions.GetLog(ctx, "rp")
	assert.Nil(t, log)

	h.platform.Clear(platformtest.OpSendMessage)
	h.clock.Advance(time.Hour)
	summary, err := h.sessionSvc.End(ctx, host, "rp")
	require.NoError(t, err)
	assert.False(t, summary.Logged)
	assert.Empty(t, h.platform.MessagesTo(sessionLogID))
}

func TestStartupRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.sessionSvc.Startup(ctx, h.actor("1", "civ", roleStaff), "rp", 6)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = h.sessionSvc.Startup(ctx, h.actor("10", "host", roleHC), "rp", 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	assert.Empty(t, h.platform.Sent)
}

func TestReinvitesOverwritesSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	host := h.actor("10", "host", roleOwnership)

	_, err := h.sessionSvc.Startup(ctx, host, "rp", 6)
	require.NoError(t, err)
	session, err := h.sessionSvc.Reinvites(ctx, host, "rp", ReinvitesInput{Link: " https://roblox.com/s/1 ", Goal: 4, Setup: validSetup})
	require.NoError(t, err)

	assert.Equal(t, "https://roblox.com/s/1", session.Link)
	assert.Equal(t, "Active", session.Setup.LEO)
	assert.Equal(t, "Greenville", session.Setup.AORP)
	assert.Equal(t, "Strict", session.Setup.Peacetime)

	stored, _ := h.sessions.Get(ctx, "rp")
	require.NotNil(t, stored)
	assert.Equal(t, 4, stored.Goal)
	assert.Equal(t, "https://roblox.com/s/1", stored.Link)
	assert.Len(t, h.platform.Reactions, 2)

	log, _ := h.sessions.GetLog(ctx, "rp")
	assert.NotNil(t, log)
}

func TestReinvitesInvalidSetup(t *testing.T) {
	h := newHarness(t)
	setup := validSetup
	setup.AORP = "Downtown"

	_, err := h.sessionSvc.Reinvites(context.Background(), h.actor("10", "host", roleHC), "rp", ReinvitesInput{Link: "x", Goal: 1, Setup: setup})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	assert.Equal(t, "aorp", apperrors.ToDomainError(err).DetailString("field"))
	assert.Empty(t, h.platform.Sent)
}

func TestRelease(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	host := h.actor("10", "host", roleHC)

	require.NoError(t, h.sessionSvc.Release(ctx, host, "rp", ReleaseInput{Link: "https://roblox.com/s/1", Setup: validSetup}))
	msgs := h.platform.MessagesTo("rp")
	require.Len(t, msgs, 1)
	assert.Equal(t, "<@&r-civ>", msgs[0].Content)
	assert.Equal(t, []string{roleCivilian}, msgs[0].MentionRoles)
	assert.False(t, msgs[0].MentionEveryone)
	assert.Contains(t, msgs[0].Embed.Description, "**FRP Speeds:** 65")
	require.Len(t, msgs[0].Components, 1)
	assert.Equal(t, platform.ComponentLinkButton, msgs[0].Components[0].Kind)
	assert.Equal(t, "https://roblox.com/s/1", msgs[0].Components[0].URL)

	require.NoError(t, h.sessionSvc.Release(ctx, host, "rp", ReleaseInput{Setup: validSetup}))
	msgs = h.platform.MessagesTo("rp")
	assert.Empty(t, msgs[1].Components)

	got, _ := h.sessions.Get(ctx, "rp")
	assert.Nil(t, got)
}

func TestNormalizeSetup(t *testing.T) {
	setup, err := NormalizeSetup(SetupInput{FRP: "90", LEO: "INACTIVE", House: "disabled", AORP: "Horton", Peacetime: "off"})
	require.NoError(t, err)
	assert.Equal(t, "Inactive", setup.LEO)
	assert.Equal(t, "Disabled", setup.House)
	assert.Equal(t, "Off", setup.Peacetime)

	_, err = NormalizeSetup(SetupInput{FRP: "70", LEO: "Active", House: "Enabled", AORP: "Horton", Peacetime: "Off"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
