package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Haibread/goalhorn/teams"
	"go.uber.org/zap"
)

// Store persists one row per guild. Each method issues a single statement.
type Store interface {
	InsertGuild(ctx context.Context, guildID string) error
	DeleteGuild(ctx context.Context, guildID string) error
	// SetFollowedTeam returns the number of rows updated.
	SetFollowedTeam(ctx context.Context, guildID, team string) (int64, error)
	// FollowedTeam returns ErrGuildNotRegistered when the guild has no row.
	FollowedTeam(ctx context.Context, guildID string) (team string, ok bool, err error)
	GuildIDs(ctx context.Context) ([]string, error)
	// EnsureGuild inserts the guild unless a row already exists.
	EnsureGuild(ctx context.Context, guildID string) (created bool, err error)
}

// Replier sends a message back to where a command was issued.
type Replier interface {
	Reply(content string) error
}

type Manager struct {
	store   Store
	catalog *teams.Catalog
	log     *zap.SugaredLogger

	// StatementTimeout bounds each store call. Zero leaves the deadline to
	// the caller's context.
	StatementTimeout time.Duration
	// TeamsCommand is shown to users whose team was not found.
	TeamsCommand string
}

func NewManager(store Store, catalog *teams.Catalog, log *zap.SugaredLogger) *Manager {
	return &Manager{
		store:        store,
		catalog:      catalog,
		log:          log,
		TeamsCommand: "/teams",
	}
}

func (m *Manager) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.StatementTimeout > 0 {
		return context.WithTimeout(ctx, m.StatementTimeout)
	}
	return context.WithCancel(ctx)
}

// GuildJoined creates the row of a guild the bot was just added to. A guild
// that already has a row is reported, not ignored.
func (m *Manager) GuildJoined(ctx context.Context, guildID, guildName string) error {
	const op = "guild_joined"

	sctx, cancel := m.statementContext(ctx)
	defer cancel()

	if err := m.store.InsertGuild(sctx, guildID); err != nil {
		e := storeError(op, guildID, err)
		m.log.Errorw("Could not add guild to database", "op", op, "guild_id", guildID, "guild_name", guildName, "kind", e.Kind.String(), "error", err)
		return e
	}

	m.log.Infow("Guild added to database", "op", op, "guild_id", guildID, "guild_name", guildName)
	return nil
}

// GuildLeft removes the row of a guild the bot was removed from. Removing a
// guild without a row is a no-op.
func (m *Manager) GuildLeft(ctx context.Context, guildID, guildName string) error {
	const op = "guild_left"

	sctx, cancel := m.statementContext(ctx)
	defer cancel()

	if err := m.store.DeleteGuild(sctx, guildID); err != nil {
		e := storeError(op, guildID, err)
		m.log.Errorw("Could not remove guild from database", "op", op, "guild_id", guildID, "guild_name", guildName, "kind", e.Kind.String(), "error", err)
		return e
	}

	m.log.Infow("Guild removed from database", "op", op, "guild_id", guildID, "guild_name", guildName)
	return nil
}

// Follow validates the requested team against the catalog and stores its
// canonical name for the guild. Only a successful update is confirmed.
func (m *Manager) Follow(ctx context.Context, guildID, argument string, r Replier) error {
	const op = "follow"

	requested := strings.Join(strings.Fields(argument), " ")
	if requested == "" {
		m.reply(r, op, guildID, "Which team do you want to follow? Use "+m.TeamsCommand+" to list them.")
		return &Error{Op: op, GuildID: guildID, Kind: KindValidation, Err: ErrTeamNotFound}
	}

	team, ok := m.catalog.Lookup(requested)
	if !ok {
		m.log.Debugw("Rejected unknown team", "op", op, "guild_id", guildID, "team", requested)
		m.reply(r, op, guildID,
			fmt.Sprintf("Team %q not found.", requested),
			"Use "+m.TeamsCommand+" to list the teams you can follow.",
		)
		return &Error{Op: op, GuildID: guildID, Kind: KindValidation, Err: fmt.Errorf("%w: %q", ErrTeamNotFound, requested)}
	}

	sctx, cancel := m.statementContext(ctx)
	defer cancel()

	n, err := m.store.SetFollowedTeam(sctx, guildID, team.Name)
	if err == nil && n == 0 {
		err = ErrGuildNotRegistered
	}
	if err != nil {
		e := storeError(op, guildID, err)
		m.log.Errorw("Could not update followed team", "op", op, "guild_id", guildID, "team", team.Name, "kind", e.Kind.String(), "error", err)
		if errors.Is(err, ErrGuildNotRegistered) {
			m.reply(r, op, guildID, "This server is not registered. Try re-inviting the bot.")
		} else {
			m.reply(r, op, guildID, "Could not save your team right now, please try again later.")
		}
		return e
	}

	m.log.Infow("Guild is following a new team", "op", op, "guild_id", guildID, "team", team.Name)
	m.reply(r, op, guildID, fmt.Sprintf("Now following: %s.", team.Name))
	return nil
}

// Following replies with the team the guild currently follows.
func (m *Manager) Following(ctx context.Context, guildID string, r Replier) error {
	const op = "following"

	sctx, cancel := m.statementContext(ctx)
	defer cancel()

	team, ok, err := m.store.FollowedTeam(sctx, guildID)
	switch {
	case errors.Is(err, ErrGuildNotRegistered):
		m.reply(r, op, guildID, "This server is not registered. Try re-inviting the bot.")
		return storeError(op, guildID, err)
	case err != nil:
		e := storeError(op, guildID, err)
		m.log.Errorw("Could not read followed team", "op", op, "guild_id", guildID, "kind", e.Kind.String(), "error", err)
		m.reply(r, op, guildID, "Could not read your team right now, please try again later.")
		return e
	case !ok:
		m.reply(r, op, guildID, "This server is not following any team yet.")
	default:
		m.reply(r, op, guildID, fmt.Sprintf("Currently following: %s.", team))
	}
	return nil
}

// Teams replies with the teams a guild can follow.
func (m *Manager) Teams(r Replier) error {
	list := m.catalog.Teams()
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Name
	}
	return r.Reply("Teams you can follow: " + strings.Join(names, ", ") + ".")
}

// EnsureGuild creates the row of a guild the bot is a member of unless one
// already exists. Used for guilds joined while the bot was offline.
func (m *Manager) EnsureGuild(ctx context.Context, guildID string) error {
	const op = "ensure_guild"

	sctx, cancel := m.statementContext(ctx)
	defer cancel()

	created, err := m.store.EnsureGuild(sctx, guildID)
	if err != nil {
		e := storeError(op, guildID, err)
		m.log.Errorw("Could not ensure guild", "op", op, "guild_id", guildID, "kind", e.Kind.String(), "error", err)
		return e
	}
	if created {
		m.log.Infow("Guild joined while offline, added to database", "op", op, "guild_id", guildID)
	}
	return nil
}

// Prune removes the rows of every stored guild for which member returns
// false, i.e. guilds left while the bot was offline. Failures are logged and
// the remaining guilds are still processed; the first one is returned.
func (m *Manager) Prune(ctx context.Context, member func(guildID string) bool) error {
	const op = "prune"

	sctx, cancel := m.statementContext(ctx)
	stored, err := m.store.GuildIDs(sctx)
	cancel()
	if err != nil {
		e := storeError(op, "*", err)
		m.log.Errorw("Could not list guilds", "op", op, "kind", e.Kind.String(), "error", err)
		return e
	}

	var firstErr error
	for _, id := range stored {
		if member(id) {
			continue
		}
		if err := m.GuildLeft(ctx, id, ""); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) reply(r Replier, op, guildID string, messages ...string) {
	for _, msg := range messages {
		if err := r.Reply(msg); err != nil {
			m.log.Warnw("Could not send reply", "op", op, "guild_id", guildID, "error", err)
			return
		}
	}
}
