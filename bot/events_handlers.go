package bot

import (
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	ids := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		ids = append(ids, g.ID)
	}
	b.ready(ids)

	// The guild list is complete here, so rows for guilds joined or left
	// while offline can be fixed up.
	go b.reconcile(ids)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.guildCreated(g.Guild)
}

func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	name := ""
	if g.BeforeDelete != nil {
		name = g.BeforeDelete.Name
	}
	b.guildDeleted(g.Guild, name)
}

func (b *Bot) ready(guildIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = make(map[string]struct{}, len(guildIDs))
	for _, id := range guildIDs {
		b.pending[id] = struct{}{}
	}
	b.joined = make(map[string]struct{})
	b.left = make(map[string]struct{})
	b.log.Infow("Gateway ready", "guilds", len(guildIDs))
}

// reconcile ensures a row for every guild of the READY payload and removes
// rows of guilds the bot is no longer in. Guild events handled in between
// take precedence over the snapshot.
func (b *Bot) reconcile(guildIDs []string) {
	member := make(map[string]struct{}, len(guildIDs))
	for _, id := range guildIDs {
		member[id] = struct{}{}

		b.mu.Lock()
		if _, gone := b.left[id]; !gone {
			b.manager.EnsureGuild(b.ctx, id)
		}
		b.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.manager.Prune(b.ctx, func(id string) bool {
		if _, ok := b.joined[id]; ok {
			return true
		}
		_, listed := member[id]
		_, gone := b.left[id]
		return listed && !gone
	})
}

// guildCreated tells a join apart from a guild of the READY payload, or one
// recovering from an outage, becoming available.
func (b *Bot) guildCreated(g *discordgo.Guild) {
	if g.Unavailable {
		b.log.Debugf("Guild %v is unavailable", g.ID)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, known := b.pending[g.ID]
	delete(b.pending, g.ID)
	if known {
		b.log.Debugf("Connected to guild %v (%v)", g.Name, g.ID)
		return
	}

	delete(b.left, g.ID)
	b.joined[g.ID] = struct{}{}

	b.log.Infof("Bot has joined the guild: %v (ID: %v)", g.Name, g.ID)
	b.manager.GuildJoined(b.ctx, g.ID, g.Name)
}

func (b *Bot) guildDeleted(g *discordgo.Guild, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if g.Unavailable {
		b.log.Debugf("Guild %v is unavailable", g.ID)
		b.pending[g.ID] = struct{}{}
		return
	}

	delete(b.pending, g.ID)
	delete(b.joined, g.ID)
	b.left[g.ID] = struct{}{}

	b.log.Infof("Bot has left the guild: %v (ID: %v)", name, g.ID)
	b.manager.GuildLeft(b.ctx, g.ID, name)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// Commands only make sense inside a guild.
	if m.GuildID == "" {
		return
	}
	b.handleMessage(m.GuildID, m.Content, &channelReplier{session: s, channelID: m.ChannelID})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	}
}
