package bot

import "github.com/spec-kit/community-bot/internal/domain"

// OptionType is the value type of a command option.
type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
	OptionUser
)

// OptionSpec describes one slash command option.
type OptionSpec struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	Choices     []string
}

// CommandSpec describes one slash command for registration and help.
type CommandSpec struct {
	Name        string
	Description string
	Options     []OptionSpec
}

func setupOptions() []OptionSpec {
	return []OptionSpec{
		{Name: "frp", Description: "FRP speed limit", Required: true, Choices: domain.FRPOptions},
		{Name: "leo", Description: "Law enforcement status", Required: true, Choices: domain.LEOOptions},
		{Name: "hc", Description: "House claiming", Required: true, Choices: domain.HouseOptions},
		{Name: "aorp", Description: "Area of roleplay", Required: true, Choices: domain.AORPOptions},
		{Name: "peacetime", Description: "Peacetime status", Required: true, Choices: domain.PeacetimeOptions},
	}
}

func memberOption(required bool) OptionSpec {
	return OptionSpec{Name: "member", Description: "Member", Type: OptionUser, Required: required}
}

// Commands lists every slash command in help order.
func Commands() []CommandSpec {
	link := OptionSpec{Name: "link", Description: "Session link", Required: true}
	return []CommandSpec{
		{Name: "help", Description: "Show all available commands and their permissions"},
		{Name: "whois", Description: "Show full information about a user", Options: []OptionSpec{memberOption(false)}},
		{Name: "registervehicle", Description: "Register a vehicle", Options: []OptionSpec{
			{Name: "year", Description: "Model year", Required: true},
			{Name: "make", Description: "Manufacturer", Required: true},
			{Name: "model", Description: "Model", Required: true},
			{Name: "color", Description: "Color", Required: true},
			{Name: "plate", Description: "License plate", Required: true},
			{Name: "state", Description: "Plate state", Required: true},
			{Name: "usage", Description: "Personal or service use", Required: true},
		}},
		{Name: "unregistervehicle", Description: "Remove a registered vehicle by plate", Options: []OptionSpec{
			{Name: "plate", Description: "License plate", Required: true},
		}},
		{Name: "vehicles", Description: "List registered vehicles", Options: []OptionSpec{memberOption(false)}},
		{Name: "startup", Description: "Begin session startup", Options: []OptionSpec{
			{Name: "goal", Description: "Reactions required to progress", Type: OptionInteger},
		}},
		{Name: "reinvites", Description: "Send session reinvites", Options: append([]OptionSpec{
			link,
			{Name: "goal", Description: "Reactions required to progress", Type: OptionInteger, Required: true},
		}, setupOptions()...)},
		// Optional options must follow required ones.
		{Name: "release", Description: "Release session to Civilians", Options: append(setupOptions(),
			OptionSpec{Name: "link", Description: "Session link"},
		)},
		{Name: "end", Description: "End the session"},
		{Name: "panel", Description: "Send the support panel"},
		{Name: "close", Description: "Close the current ticket"},
		{Name: "claim", Description: "Claim the current ticket (High Command+)"},
		{Name: "warn", Description: "Issue a warning to a member", Options: []OptionSpec{
			memberOption(true),
			{Name: "reason", Description: "Reason", Required: true},
		}},
		{Name: "strike", Description: "Issue a staff strike (High Command+)", Options: []OptionSpec{
			memberOption(true),
			{Name: "reason", Description: "Reason", Required: true},
		}},
		{Name: "note", Description: "Attach an internal note to a member", Options: []OptionSpec{
			memberOption(true),
			{Name: "note", Description: "Note text", Required: true},
		}},
		{Name: "serverad", Description: "Post the official server advertisement (Staff only)"},
		{Name: "comingsoon", Description: "Show coming soon embed"},
	}
}
