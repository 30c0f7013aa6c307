package discord

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/community-bot/internal/platform"
)

// managedPermissions are the bits the bot ever grants or denies.
const managedPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

func toOverwrites(in []platform.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(in))
	for _, ow := range in {
		var allow int64
		if ow.View {
			allow |= discordgo.PermissionViewChannel
		}
		if ow.Send {
			allow |= discordgo.PermissionSendMessages
		}
		if ow.ReadHistory {
			allow |= discordgo.PermissionReadMessageHistory
		}
		typ := discordgo.PermissionOverwriteTypeRole
		if ow.Target == platform.TargetMember {
			typ = discordgo.PermissionOverwriteTypeMember
		}
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.ID,
			Type:  typ,
			Allow: allow,
			Deny:  managedPermissions &^ allow,
		})
	}
	return out
}

func toMessageSend(msg platform.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content:         msg.Content,
		Components:      toComponents(msg.Components),
		AllowedMentions: toAllowedMentions(msg),
	}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Embed)}
	}
	return send
}

// toAllowedMentions whitelists exactly the pings the message asks for.
func toAllowedMentions(msg platform.Message) *discordgo.MessageAllowedMentions {
	am := &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{},
		Roles: msg.MentionRoles,
		Users: msg.MentionUsers,
	}
	if msg.MentionEveryone {
		am.Parse = append(am.Parse, discordgo.AllowedMentionTypeEveryone)
	}
	return am
}

func toEmbed(e *platform.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	if e.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

// toComponents places each component on its own row; select menus must
// be alone on a row anyway.
func toComponents(in []platform.Component) []discordgo.MessageComponent {
	if len(in) == 0 {
		return nil
	}
	rows := make([]discordgo.MessageComponent, 0, len(in))
	for _, c := range in {
		var comp discordgo.MessageComponent
		switch c.Kind {
		case platform.ComponentSelect:
			opts := make([]discordgo.SelectMenuOption, 0, len(c.Options))
			for _, o := range c.Options {
				opts = append(opts, discordgo.SelectMenuOption{Label: o.Label, Value: o.Value, Description: o.Description})
			}
			comp = discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    c.CustomID,
				Placeholder: c.Placeholder,
				Options:     opts,
			}
		case platform.ComponentLinkButton:
			comp = discordgo.Button{Label: c.Label, Style: discordgo.LinkButton, URL: c.URL, Disabled: c.Disabled}
		default:
			comp = discordgo.Button{Label: c.Label, Style: toButtonStyle(c.Style), CustomID: c.CustomID, Disabled: c.Disabled}
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{comp}})
	}
	return rows
}

func toButtonStyle(s platform.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case platform.ButtonSecondary:
		return discordgo.SecondaryButton
	case platform.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

func fromChannel(ch *discordgo.Channel) platform.Channel {
	return platform.Channel{ID: ch.ID, Name: ch.Name, Topic: ch.Topic, ParentID: ch.ParentID}
}

// fromHistory converts a newest-first page set into oldest-first entries.
func fromHistory(msgs []*discordgo.Message) []platform.HistoryMessage {
	out := make([]platform.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		hm := platform.HistoryMessage{ID: m.ID, Content: m.Content, CreatedAt: m.Timestamp}
		if m.Author != nil {
			hm.AuthorID = m.Author.ID
			hm.AuthorName = m.Author.Username
		}
		for _, a := range m.Attachments {
			hm.Attachments = append(hm.Attachments, a.URL)
		}
		out = append(out, hm)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// mapError folds 404 responses into platform.ErrNotFound.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return errors.Join(platform.ErrNotFound, err)
	}
	return err
}
