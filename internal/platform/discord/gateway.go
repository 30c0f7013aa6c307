package discord

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/bot"
	"github.com/spec-kit/community-bot/internal/domain"
)

// interactionTimeout bounds the synchronous part of one interaction.
const interactionTimeout = 30 * time.Second

// Handler serves translated interactions.
type Handler interface {
	Handle(ctx context.Context, in bot.Interaction, resp bot.Responder)
}

// MessageHandler is implemented by handlers that also want channel
// messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, m bot.Message)
}

// Serve routes gateway interactions to h. ctx bounds every interaction.
// Channel messages are routed too when h implements MessageHandler.
func (c *Client) Serve(ctx context.Context, h Handler) {
	if mh, ok := h.(MessageHandler); ok {
		c.session.AddHandler(func(_ *discordgo.Session, mc *discordgo.MessageCreate) {
			m, ok := toMessage(mc.Message)
			if !ok {
				return
			}
			mctx, cancel := context.WithTimeout(ctx, interactionTimeout)
			defer cancel()
			mh.HandleMessage(mctx, m)
		})
	}
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		in, ok := toInteraction(ic.Interaction)
		if !ok {
			return
		}
		ictx, cancel := context.WithTimeout(ctx, interactionTimeout)
		defer cancel()
		h.Handle(ictx, in, &responder{session: s, interaction: ic.Interaction})
	})
}

func toInteraction(i *discordgo.Interaction) (bot.Interaction, bool) {
	in := bot.Interaction{ChannelID: i.ChannelID, Actor: toActor(i)}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		in.Kind = bot.KindCommand
		in.Name = data.Name
		in.Options = make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			in.Options[opt.Name] = optionString(opt)
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		in.Kind = bot.KindComponent
		in.Name = data.CustomID
		in.Values = data.Values
		if i.Message != nil {
			in.MessageID = i.Message.ID
		}
	default:
		return bot.Interaction{}, false
	}
	return in, true
}

func toMessage(m *discordgo.Message) (bot.Message, bool) {
	if m == nil || m.Author == nil {
		return bot.Message{}, false
	}
	return bot.Message{ChannelID: m.ChannelID, AuthorID: m.Author.ID, FromBot: m.Author.Bot}, true
}

func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return strconv.FormatInt(opt.IntValue(), 10)
	case discordgo.ApplicationCommandOptionUser:
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return fmt.Sprint(opt.Value)
}

func toActor(i *discordgo.Interaction) domain.Actor {
	var a domain.Actor
	user := i.User
	if i.Member != nil {
		a.RoleIDs = i.Member.Roles
		a.DisplayName = i.Member.Nick
		user = i.Member.User
	}
	if user != nil {
		a.UserID = user.ID
		a.Username = user.Username
		if a.DisplayName == "" {
			a.DisplayName = user.GlobalName
		}
	}
	return a
}

type responder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *responder) Respond(ctx context.Context, reply bot.Reply) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: toResponseData(reply),
	}, discordgo.WithContext(ctx))
}

func (r *responder) Defer(ctx context.Context, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func (r *responder) Followup(ctx context.Context, reply bot.Reply) error {
	send := toMessageSend(reply.Message)
	params := &discordgo.WebhookParams{
		Content:         send.Content,
		Embeds:          send.Embeds,
		Components:      send.Components,
		AllowedMentions: send.AllowedMentions,
	}
	if reply.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := r.session.FollowupMessageCreate(r.interaction, true, params, discordgo.WithContext(ctx))
	return err
}

func toResponseData(reply bot.Reply) *discordgo.InteractionResponseData {
	send := toMessageSend(reply.Message)
	data := &discordgo.InteractionResponseData{
		Content:         send.Content,
		Embeds:          send.Embeds,
		Components:      send.Components,
		AllowedMentions: send.AllowedMentions,
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

// SyncCommands replaces the application's slash commands. An empty
// guildID registers them globally.
func (c *Client) SyncCommands(ctx context.Context, guildID string, specs []bot.CommandSpec) (int, error) {
	app, err := c.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("resolve application: %w", mapError(err))
	}
	registered, err := c.session.ApplicationCommandBulkOverwrite(app.ID, guildID, toApplicationCommands(specs), discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("overwrite commands: %w", mapError(err))
	}
	c.logger.Info("slash commands synced", zap.Int("count", len(registered)), zap.String("guild_id", guildID))
	return len(registered), nil
}

func toApplicationCommands(specs []bot.CommandSpec) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(specs))
	for _, spec := range specs {
		cmd := &discordgo.ApplicationCommand{Name: spec.Name, Description: spec.Description}
		for _, o := range spec.Options {
			opt := &discordgo.ApplicationCommandOption{
				Type:        toOptionType(o.Type),
				Name:        o.Name,
				Description: o.Description,
				Required:    o.Required,
			}
			for _, choice := range o.Choices {
				opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: choice, Value: choice})
			}
			cmd.Options = append(cmd.Options, opt)
		}
		out = append(out, cmd)
	}
	return out
}

func toOptionType(t bot.OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case bot.OptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case bot.OptionUser:
		return discordgo.ApplicationCommandOptionUser
	default:
		return discordgo.ApplicationCommandOptionString
	}
}
