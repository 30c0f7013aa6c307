// Package discord implements platform.Platform over the Discord REST API
// and gateway using discordgo.
package discord

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/config"
	"github.com/spec-kit/community-bot/internal/platform"
)

// historyPage is the REST maximum per ChannelMessages call.
const historyPage = 100

// Client is a guild-scoped Discord client.
type Client struct {
	session   *discordgo.Session
	guildID   string
	logger    *zap.Logger
	connected atomic.Bool
}

// New creates a client; it does not connect.
func New(cfg config.DiscordConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	c := &Client{session: s, guildID: cfg.GuildID, logger: logger}
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		c.connected.Store(true)
		logger.Info("gateway ready", zap.String("user", r.User.Username), zap.String("user_id", r.User.ID))
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		c.connected.Store(true)
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		c.connected.Store(false)
		logger.Warn("gateway disconnected")
	})
	return c, nil
}

// Open connects to the gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	c.connected.Store(false)
	return c.session.Close()
}

// Connected reports whether the gateway session is live.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

func (c *Client) SendMessage(ctx context.Context, channelID string, msg platform.Message) (string, error) {
	m, err := c.session.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return m.ID, nil
}

func (c *Client) EditTopic(ctx context.Context, channelID, topic string) error {
	_, err := c.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Topic: topic}, discordgo.WithContext(ctx))
	return mapError(err)
}

func (c *Client) SetOverwrites(ctx context.Context, channelID string, overwrites []platform.Overwrite) error {
	_, err := c.session.ChannelEdit(channelID, &discordgo.ChannelEdit{
		PermissionOverwrites: toOverwrites(overwrites),
	}, discordgo.WithContext(ctx))
	return mapError(err)
}

func (c *Client) CreateChannel(ctx context.Context, req platform.CreateChannelRequest) (*platform.Channel, error) {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if req.Reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(req.Reason))
	}
	ch, err := c.session.GuildChannelCreateComplex(c.guildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.ParentID,
		PermissionOverwrites: toOverwrites(req.Overwrites),
	}, opts...)
	if err != nil {
		return nil, mapError(err)
	}
	out := fromChannel(ch)
	return &out, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return mapError(err)
}

func (c *Client) EditComponents(ctx context.Context, channelID, messageID string, components []platform.Component) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	rows := toComponents(components)
	if rows == nil {
		rows = []discordgo.MessageComponent{}
	}
	edit.Components = &rows
	_, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return mapError(err)
}

func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return mapError(c.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)))
}

// MessageHistory pages backwards from the newest message.
func (c *Client) MessageHistory(ctx context.Context, channelID string, limit int) ([]platform.HistoryMessage, error) {
	var (
		all    []*discordgo.Message
		before string
	)
	for limit <= 0 || len(all) < limit {
		n := historyPage
		if limit > 0 && limit-len(all) < n {
			n = limit - len(all)
		}
		page, err := c.session.ChannelMessages(channelID, n, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err)
		}
		all = append(all, page...)
		if len(page) < n {
			break
		}
		before = page[len(page)-1].ID
	}
	return fromHistory(all), nil
}

func (c *Client) Channel(ctx context.Context, channelID string) (*platform.Channel, error) {
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := fromChannel(ch)
	return &out, nil
}

func (c *Client) CategoryChannels(ctx context.Context, categoryID string) ([]platform.Channel, error) {
	chs, err := c.session.GuildChannels(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	found := false
	var out []platform.Channel
	for _, ch := range chs {
		if ch.ID == categoryID && ch.Type == discordgo.ChannelTypeGuildCategory {
			found = true
			continue
		}
		if ch.ParentID == categoryID && ch.Type == discordgo.ChannelTypeGuildText {
			out = append(out, fromChannel(ch))
		}
	}
	if !found {
		return nil, platform.ErrNotFound
	}
	return out, nil
}

func (c *Client) Member(ctx context.Context, userID string) (*platform.Member, error) {
	m, err := c.session.GuildMember(c.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := c.fromMember(m)
	return &out, nil
}

func (c *Client) SendDM(ctx context.Context, userID string, msg platform.Message) error {
	ch, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return mapError(err)
	}
	_, err = c.session.ChannelMessageSendComplex(ch.ID, toMessageSend(msg), discordgo.WithContext(ctx))
	return mapError(err)
}

func (c *Client) BotUserID() string {
	if c.session.State != nil && c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

// fromMember resolves role names from the state cache when available.
func (c *Client) fromMember(m *discordgo.Member) platform.Member {
	out := platform.Member{DisplayName: m.Nick, RoleIDs: m.Roles}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Username = m.User.Username
		out.Bot = m.User.Bot
		if out.DisplayName == "" {
			out.DisplayName = m.User.GlobalName
		}
	}
	for _, id := range m.Roles {
		if role, err := c.session.State.Role(c.guildID, id); err == nil {
			out.RoleNames = append(out.RoleNames, role.Name)
		}
	}
	return out
}

var _ platform.Platform = (*Client)(nil)
