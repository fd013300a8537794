package bot

import (
	"fmt"
	"strings"

	"github.com/Haibread/goalhorn/subscriptions"
	"github.com/bwmarrin/discordgo"
)

const (
	commandFollow    = "follow"
	commandFollowing = "following"
	commandTeams     = "teams"
	commandPing      = "ping"
)

var botCommands = []*discordgo.ApplicationCommand{
	{
		Type:        discordgo.ChatApplicationCommand,
		Name:        commandFollow,
		Description: "Get live notifications for an NHL team",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "team",
				Description:  "Team name, e.g. Rangers",
				Required:     true,
				Autocomplete: true,
			},
		},
	},
	{
		Type:        discordgo.ChatApplicationCommand,
		Name:        commandFollowing,
		Description: "Show the team this server follows",
	},
	{
		Type:        discordgo.ChatApplicationCommand,
		Name:        commandTeams,
		Description: "List the teams you can follow",
	},
	{
		Type:        discordgo.ChatApplicationCommand,
		Name:        commandPing,
		Description: "Basic command",
	},
}

// parseCommand splits "<prefix><name> <argument>". The argument keeps its
// inner spacing so multi-word team names survive.
func parseCommand(prefix, content string) (name, argument string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(content[len(prefix):])
	if rest == "" {
		return "", "", false
	}
	name, argument, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(argument), true
}

// handleMessage runs a prefixed text command. It reports whether the message
// was a command.
func (b *Bot) handleMessage(guildID, content string, r subscriptions.Replier) bool {
	name, argument, ok := parseCommand(b.opts.CommandPrefix, content)
	if !ok {
		return false
	}

	switch name {
	case commandFollow:
		b.manager.Follow(b.ctx, guildID, argument, r)
	case commandFollowing:
		b.manager.Following(b.ctx, guildID, r)
	case commandTeams:
		b.manager.Teams(r)
	default:
		return false
	}
	b.log.Debugw("Handled text command", "command", name, "guild_id", guildID)
	return true
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	r := &interactionReplier{session: s, interaction: i.Interaction}

	if i.GuildID == "" && data.Name != commandPing && data.Name != commandTeams {
		r.Reply("This command only works inside a server.")
		return
	}

	switch data.Name {
	case commandFollow:
		b.manager.Follow(b.ctx, i.GuildID, optionString(data.Options, "team"), r)
	case commandFollowing:
		b.manager.Following(b.ctx, i.GuildID, r)
	case commandTeams:
		b.manager.Teams(r)
	case commandPing:
		r.Reply("Pong")
	default:
		b.log.Warnw("Unknown command", "command", data.Name)
		return
	}
	b.log.Debugw("Handled slash command", "command", data.Name, "guild_id", i.GuildID)
}

func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}

// Discord caps autocomplete results.
const maxChoices = 25

func (b *Bot) teamChoices(typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, t := range b.catalog.Teams() {
		if typed != "" &&
			!strings.Contains(strings.ToLower(t.FullName()), typed) &&
			!strings.EqualFold(t.Abbreviation, typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  t.FullName(),
			Value: t.Name,
		})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != commandFollow {
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: b.teamChoices(optionString(data.Options, "team")),
		},
	})
	if err != nil {
		b.log.Warnw("Could not send autocomplete choices", "guild_id", i.GuildID, "error", err)
	}
}

func (b *Bot) registerCommands() error {
	b.log.Info("Adding commands")
	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.opts.GuildID, botCommands)
	if err != nil {
		return fmt.Errorf("cannot create commands: %w", err)
	}
	b.commands = registered
	b.log.Infow("Slash commands registered", "count", len(registered))
	return nil
}

func (b *Bot) removeCommands() {
	b.log.Info("Starting to delete commands")
	for _, v := range b.commands {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.opts.GuildID, v.ID); err != nil {
			b.log.Infof("Could not delete '%s' command: %v", v.Name, err)
			continue
		}
		b.log.Infof("Deleted command %s", v.Name)
	}
	b.log.Info("Deleted commands")
}
