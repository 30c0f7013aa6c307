package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/community-bot/internal/platform/platformtest"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

const muteHintID = "chat"

func newCommunity(t *testing.T) (*harness, *CommunityService) {
	h := newHarness(t)
	return h, NewCommunityService(h.platform, zaptest.NewLogger(t), muteHintID)
}

func TestPostServerAd(t *testing.T) {
	h, svc := newCommunity(t)
	ctx := context.Background()

	for _, role := range []string{roleCivilian, roleStaff} {
		err := svc.PostServerAd(ctx, h.actor("1", "member", role), "ads")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized), role)
	}
	assert.Empty(t, h.platform.MessagesTo("ads"))

	require.NoError(t, svc.PostServerAd(ctx, h.actor("2", "hc", roleHC), "ads"))
	msgs := h.platform.MessagesTo("ads")
	require.Len(t, msgs, 1)
	assert.Equal(t, ImageServerAd, msgs[0].Embed.ImageURL)
	assert.Contains(t, msgs[0].Embed.Description, "[Join now!](https://discord.gg/MJsvGa6QNy)")
}

func TestPostComingSoon(t *testing.T) {
	h, svc := newCommunity(t)
	require.NoError(t, svc.PostComingSoon(context.Background(), "info"))
	msgs := h.platform.MessagesTo("info")
	require.Len(t, msgs, 1)
	assert.Equal(t, "__**Coming Soon**__", msgs[0].Embed.Title)

	h.platform.Fail(platformtest.OpSendMessage, nil)
	err := svc.PostComingSoon(context.Background(), "info")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCollaboratorFailure))
}

func TestMuteHint(t *testing.T) {
	h, svc := newCommunity(t)
	ctx := context.Background()

	svc.MessagePosted(ctx, "elsewhere", false)
	svc.MessagePosted(ctx, muteHintID, true)
	assert.Empty(t, h.platform.Sent)

	svc.MessagePosted(ctx, muteHintID, false)
	msgs := h.platform.MessagesTo(muteHintID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Embed.Description, "Mute this channel")

	h.platform.Fail(platformtest.OpSendMessage, nil)
	assert.NotPanics(t, func() { svc.MessagePosted(ctx, muteHintID, false) })
}

func TestMuteHintDisabled(t *testing.T) {
	h := newHarness(t)
	svc := NewCommunityService(h.platform, nil, "")
	svc.MessagePosted(context.Background(), "", false)
	assert.Empty(t, h.platform.Sent)
}
