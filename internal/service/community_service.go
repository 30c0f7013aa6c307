package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/platform"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// CommunityService posts the community's static announcements and the
// mute hint.
type CommunityService struct {
	platform          platform.Platform
	logger            *zap.Logger
	muteHintChannelID string
}

// NewCommunityService constructs the service. An empty muteHintChannelID
// disables the mute hint.
func NewCommunityService(p platform.Platform, logger *zap.Logger, muteHintChannelID string) *CommunityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunityService{platform: p, logger: logger, muteHintChannelID: muteHintChannelID}
}

// PostServerAd sends the server advertisement. Staff only.
func (s *CommunityService) PostServerAd(ctx context.Context, actor domain.Actor, channelID string) error {
	if !actor.Capabilities.IsStaff {
		return apperrors.NewUnauthorized("")
	}
	if _, err := s.platform.SendMessage(ctx, channelID, ServerAdMessage()); err != nil {
		return apperrors.NewCollaboratorFailure("post server advertisement", err)
	}
	return nil
}

// PostComingSoon sends the under-construction notice.
func (s *CommunityService) PostComingSoon(ctx context.Context, channelID string) error {
	if _, err := s.platform.SendMessage(ctx, channelID, ComingSoonMessage()); err != nil {
		return apperrors.NewCollaboratorFailure("post coming soon", err)
	}
	return nil
}

// MessagePosted answers member messages in the mute hint channel.
// Messages from bots are ignored.
func (s *CommunityService) MessagePosted(ctx context.Context, channelID string, fromBot bool) {
	if fromBot || s.muteHintChannelID == "" || channelID != s.muteHintChannelID {
		return
	}
	if _, err := s.platform.SendMessage(ctx, channelID, MuteHintMessage()); err != nil {
		s.logger.Warn("mute hint not sent", zap.String("channel_id", channelID), zap.Error(err))
	}
}
