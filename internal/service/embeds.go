package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/platform"
)

// BotColor is the accent color of every embed.
const BotColor = 0x8fd6ff

// Custom emoji used in embed copy and reactions.
const (
	EmojiCheck     = "<:check:1459330182329663645>"
	EmojiArrow     = "<:bluearrow:1459329920949030932>"
	EmojiHeart     = "<:hearts:1459330385178656909>"
	EmojiDot       = "<:dot:1459330276256776427>"
	EmojiPin       = "<:pin:1459330500824006891>"
	EmojiAnnounce  = "<:announcement:1459329676173639680>"
	reactionCheck  = "check:1459330182329663645"
	reactionPlain  = "✅"
	noneText       = "None"
	notApplicable  = "N/A"
	tsLayout       = "2006-01-02T15:04:05"
	tsLayoutOffset = "2006-01-02T15:04:05-07:00"
)

// Session announcement artwork.
const (
	ImageStartup   = "https://cdn.discordapp.com/attachments/1459425676305371186/1459581776736292955/HexVille_5.png"
	ImageRelease   = "https://cdn.discordapp.com/attachments/1459425676305371186/1459581334455455844/session-release-hexville.png"
	ImageReinvites = "https://cdn.discordapp.com/attachments/1459425676305371186/1459581334082289825/session-reinvites.png"
	ImageEnd       = "https://cdn.discordapp.com/attachments/1459425676305371186/1459581333599686696/sessionend-hexville.png"
)

// Community post artwork.
const (
	ImageServerAd   = "https://cdn.discordapp.com/attachments/1431352916286902285/1458956254310437096/HexVille_1.png"
	ImageComingSoon = "https://media.discordapp.net/attachments/1459323143989497918/1459423962298847388/HexVille_3.png"
	ImageMuteHint   = "https://media1.tenor.com/m/j0RsjzrynisAAAAd/discord.gif"
	inviteURL       = "https://discord.gg/MJsvGa6QNy"
)

// Component custom ids routed back to the bot.
const (
	CustomIDTicketTypeSelect = "ticket_type_select"
	CustomIDTicketClose      = "ticket_close"
)

var ticketTypeDescriptions = map[domain.TicketType]string{
	domain.TicketTypeModerationAppeal:   "Appeal a moderation action",
	domain.TicketTypeCivilianSupport:    "General civilian support or questions",
	domain.TicketTypeMemberReport:       "Report a member for rule violations",
	domain.TicketTypeSupportTicket:      "General support or technical help",
	domain.TicketTypePartnershipRequest: "Request a partnership",
}

// PanelMessage is the support panel with its ticket type select.
func PanelMessage() platform.Message {
	desc := EmojiAnnounce + "  This is your central hub for submitting any type of request, including Civilian Reports, Staff Reports, or Support Tickets for questions or concerns.\n\n" +
		"__**Moderation Appeal**__\n\n" +
		EmojiArrow + " If you believe you were __**falsely moderated by our staff team**__, you may appeal within the \"**Moderation Appeal**\" option.\n\n" +
		"__**Civilian Support**__\n\n" +
		EmojiArrow + " Use the Civilian Support option to share __**any complaints, opinions, suggestions**__, or questions about HexVille operations.\n\n" +
		"__**Member Report**__\n\n" +
		EmojiArrow + " Select the Member Report option to __**report any civilian member**__ who is not complying with HexVille regulations.\n\n" +
		"__**Partnership Request**__\n\n" +
		EmojiArrow + " Select the Partnership Request option to __**make a partnership request**__."

	options := make([]platform.SelectOption, 0, len(domain.TicketTypes))
	for _, t := range domain.TicketTypes {
		options = append(options, platform.SelectOption{
			Label:       string(t),
			Value:       string(t),
			Description: ticketTypeDescriptions[t],
		})
	}
	return platform.Message{
		Embed: &platform.Embed{
			Title:       "__**HexVille | Server Support**__",
			Description: "> " + desc,
			Color:       BotColor,
		},
		Components: []platform.Component{{
			Kind:        platform.ComponentSelect,
			CustomID:    CustomIDTicketTypeSelect,
			Placeholder: "Select a ticket type...",
			Options:     options,
		}},
	}
}

func ticketEmbed(displayName string, t domain.TicketType, p domain.TicketPriority) *platform.Embed {
	return &platform.Embed{
		Title: "🎫 " + string(t),
		Description: fmt.Sprintf(EmojiArrow+" Hello **%s**, thank you for opening a **%s**!\n", displayName, t) +
			EmojiArrow + " Our **Staff Team** will assist you shortly, please be patient.\n" +
			EmojiArrow + " **If you fail to respond to our ticket within 24 hours, the ticket will be closed.**\n\n" +
			EmojiPin + " __**Please fill out this format.**__\n" +
			"```Username:\nDate:\nQuestion:```" +
			"\n\n" + EmojiArrow + "**Priority:** " + string(p),
		Color: BotColor,
	}
}

func closeButton() platform.Component {
	return platform.Component{
		Kind:     platform.ComponentButton,
		CustomID: CustomIDTicketClose,
		Label:    "🔒 Close Ticket",
		Style:    platform.ButtonDanger,
	}
}

// ServerAdMessage is the official server advertisement.
func ServerAdMessage() platform.Message {
	return platform.Message{Embed: &platform.Embed{
		Title: "**__HexVille Official Server Advertisement__** 🫂",
		Description: "Greetings everyone! **HexVille** is currently accepting free civilians, and are currently in need of __**members**__, join now to be apart of our server!\n\n" +
			"**HexVille exclusively offers:**\n" +
			"→ Exclusive Events!\n" +
			"→ Regular Sessions!\n" +
			"→ Robux Giveaways!\n" +
			"→ Special Roleplays!\n" +
			"→ And So Much More!\n\n" +
			"[Join now!](" + inviteURL + ")",
		ImageURL: ImageServerAd,
		Color:    BotColor,
	}}
}

// ComingSoonMessage marks a section as under construction.
func ComingSoonMessage() platform.Message {
	crane := "<:crane:1459330223131721769>"
	return platform.Message{Embed: &platform.Embed{
		Title:       "__**Coming Soon**__",
		Description: crane + "  This section is currently **__under-construction__**, please come back again later! " + crane,
		ImageURL:    ImageComingSoon,
		Color:       BotColor,
	}}
}

// MuteHintMessage reminds members that a busy channel can be muted.
func MuteHintMessage() platform.Message {
	return platform.Message{Embed: &platform.Embed{
		Description: "<:bell:1459329848161075200> Tired of __pings__? **Mute this channel**.",
		ImageURL:    ImageMuteHint,
		Color:       BotColor,
	}}
}

// DisabledCloseButton replaces the close button once a close is underway.
func DisabledCloseButton() platform.Component {
	b := closeButton()
	b.Disabled = true
	return b
}

// ClaimAnnouncement is posted in the ticket when staff claim it.
func ClaimAnnouncement(ticket *domain.Ticket, claimer domain.Actor) platform.Message {
	return platform.Message{
		Embed: &platform.Embed{
			Title: "🎫 Ticket Claimed",
			Description: EmojiArrow + " This ticket has been claimed by **" + claimer.Mention() + "**.\n" +
				EmojiArrow + " Your **" + string(ticket.State.Type) + "** will be handled by them.",
			Color: BotColor,
		},
		MentionUsers: []string{claimer.UserID},
	}
}

// SessionInfo renders the setup block shared by reinvites and release.
func SessionInfo(s *domain.SessionSetup) string {
	if s == nil {
		s = &domain.SessionSetup{}
	}
	return EmojiArrow + "**FRP Speeds:** " + orNA(s.FRP) + "\n" +
		EmojiArrow + "**AORP (Area of Roleplay):** " + orNA(s.AORP) + "\n" +
		EmojiArrow + "**Law Enforcement:** " + orNA(s.LEO) + "\n" +
		EmojiArrow + "**Public Services:** " + orNA(s.House) + "\n" +
		EmojiArrow + "**Peacetime Status:** " + orNA(s.Peacetime)
}

func startupMessage(host domain.Actor, goal int) platform.Message {
	return platform.Message{
		Content: "@everyone",
		Embed: &platform.Embed{
			Title: EmojiHeart + " __**HexVille, Session Startup**__",
			Description: fmt.Sprintf(EmojiDot+" A session is **currently being commenced** by **%s**, in order to start, we require **%d+ Reactions**!\n\n", host.Mention(), goal) +
				EmojiDot + "Before participating in any official **HexVille** sessions, please ensure you've read the rules, registered your vehicle via the `/registervehicle` command, and reviewed the Blacklisted Vehicle List.",
			ImageURL: ImageStartup,
			Color:    BotColor,
		},
		MentionEveryone: true,
	}
}

func reinvitesMessage() platform.Message {
	return platform.Message{
		Content: "@everyone",
		Embed: &platform.Embed{
			Title:       EmojiHeart + " __**HexVille, Re-Invites**__",
			Description: EmojiArrow + "React with " + EmojiCheck + " to release the session link.",
			ImageURL:    ImageReinvites,
			Color:       BotColor,
		},
		MentionEveryone: true,
	}
}

func releaseMessage(civilianRoles []string, setup *domain.SessionSetup, link string) platform.Message {
	mentions := make([]string, 0, len(civilianRoles))
	for _, id := range civilianRoles {
		mentions = append(mentions, domain.MentionRole(id))
	}
	msg := platform.Message{
		Content: strings.Join(mentions, " "),
		Embed: &platform.Embed{
			Title:       EmojiHeart + " __**HexVille, Session Release**__",
			Description: "__Session Information__\n" + SessionInfo(setup),
			ImageURL:    ImageRelease,
			Color:       BotColor,
		},
		MentionRoles: civilianRoles,
	}
	if link != "" {
		msg.Components = []platform.Component{{
			Kind:  platform.ComponentLinkButton,
			Label: "Join Session",
			URL:   link,
		}}
	}
	return msg
}

func endMessage(host domain.Actor) platform.Message {
	return platform.Message{
		Embed: &platform.Embed{
			Title:       EmojiHeart + " __**HexVille, Session End**__",
			Description: EmojiArrow + host.Mention() + " has ended the session.\n-# HexVille Staff Team",
			ImageURL:    ImageEnd,
			Color:       BotColor,
		},
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notApplicable
	}
	return s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return notApplicable
	}
	return t.UTC().Format(tsLayout)
}

// formatDuration renders whole seconds as H:MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
