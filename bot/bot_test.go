package bot

import (
	"context"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/Haibread/goalhorn/database"
	"github.com/Haibread/goalhorn/subscriptions"
	"github.com/Haibread/goalhorn/teams"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type replies []string

func (r *replies) Reply(content string) error {
	*r = append(*r, content)
	return nil
}

func newTestBot(t *testing.T) (*Bot, *database.Store) {
	t.Helper()
	b, store, _ := newObservedTestBot(t)
	return b, store
}

func newObservedTestBot(t *testing.T) (*Bot, *database.Store, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core).Sugar()
	db, err := database.Open(context.Background(), database.Config{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "bot.db"),
		MaxOpenConns: 1,
	}, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := database.NewStore(db)
	catalog := teams.NHL()
	manager := subscriptions.NewManager(store, catalog, log)
	return newBot(Options{CommandPrefix: "/"}, manager, catalog, log), store, logs
}

func guildIDs(t *testing.T, store *database.Store) []string {
	t.Helper()
	ids, err := store.GuildIDs(context.Background())
	if err != nil {
		t.Fatalf("guild ids: %v", err)
	}
	sort.Strings(ids)
	return ids
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		prefix, content string
		name, argument  string
		ok              bool
	}{
		{"/", "/follow Rangers", "follow", "Rangers", true},
		{"/", "  /FOLLOW   new york  rangers ", "follow", "new york  rangers", true},
		{"/", "/teams", "teams", "", true},
		{"!", "!following", "following", "", true},
		{"/", "follow Rangers", "", "", false},
		{"/", "/", "", "", false},
		{"/", "", "", "", false},
	}

	for _, test := range tests {
		name, argument, ok := parseCommand(test.prefix, test.content)
		if ok != test.ok || name != test.name || argument != test.argument {
			t.Errorf("parseCommand(%q, %q) = %q, %q, %v", test.prefix, test.content, name, argument, ok)
		}
	}
}

func TestGuildEvents(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBot(t)

	b.ready([]string{"1"})

	// guild from the READY payload becoming available is not a join
	b.guildCreated(&discordgo.Guild{ID: "1", Name: "one"})
	if ids, _ := store.GuildIDs(ctx); len(ids) != 0 {
		t.Fatalf("available guild was inserted: %v", ids)
	}

	b.guildCreated(&discordgo.Guild{ID: "2", Name: "two", Unavailable: true})
	if ids, _ := store.GuildIDs(ctx); len(ids) != 0 {
		t.Fatalf("unavailable guild was inserted: %v", ids)
	}

	b.guildCreated(&discordgo.Guild{ID: "2", Name: "two"})
	if ids, _ := store.GuildIDs(ctx); len(ids) != 1 || ids[0] != "2" {
		t.Fatalf("joined guild was not inserted: %v", ids)
	}

	// outage, not a removal
	b.guildDeleted(&discordgo.Guild{ID: "2", Unavailable: true}, "two")
	if ids, _ := store.GuildIDs(ctx); len(ids) != 1 {
		t.Fatalf("outage removed the guild: %v", ids)
	}

	b.guildDeleted(&discordgo.Guild{ID: "2"}, "two")
	if ids, _ := store.GuildIDs(ctx); len(ids) != 0 {
		t.Fatalf("left guild is still stored: %v", ids)
	}

	// removal of a guild without a row
	b.guildDeleted(&discordgo.Guild{ID: "3"}, "three")
}

func TestGuildOutageRecovery(t *testing.T) {
	b, store, logs := newObservedTestBot(t)

	b.ready([]string{"1"})
	b.guildCreated(&discordgo.Guild{ID: "1", Name: "one"})
	b.reconcile([]string{"1"})

	b.guildDeleted(&discordgo.Guild{ID: "1", Unavailable: true}, "one")
	b.guildCreated(&discordgo.Guild{ID: "1", Name: "one"})

	if ids := guildIDs(t, store); !reflect.DeepEqual(ids, []string{"1"}) {
		t.Fatalf("unexpected rows %v", ids)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Fatalf("outage recovery logged %d errors: %v", n, logs.All())
	}
	if n := logs.FilterMessageSnippet("has joined").Len(); n != 0 {
		t.Fatal("outage recovery was treated as a join")
	}
}

func TestReconcileAfterGuildEvents(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBot(t)

	// rows from a previous run: 2 still a member, 9 left while offline
	for _, id := range []string{"2", "9"} {
		if err := store.InsertGuild(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	b.ready([]string{"1", "2"})
	b.guildDeleted(&discordgo.Guild{ID: "2"}, "two")
	b.guildCreated(&discordgo.Guild{ID: "3", Name: "three"})
	b.reconcile([]string{"1", "2"})

	if ids := guildIDs(t, store); !reflect.DeepEqual(ids, []string{"1", "3"}) {
		t.Fatalf("rows after reconcile = %v, want [1 3]", ids)
	}
}

func TestFollowMessage(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBot(t)

	b.guildCreated(&discordgo.Guild{ID: "100", Name: "Hockey Night"})

	var r replies
	if !b.handleMessage("100", "/follow new york rangers", &r) {
		t.Fatal("follow was not handled")
	}
	if len(r) != 1 || r[0] != "Now following: Rangers." {
		t.Fatalf("unexpected replies %q", r)
	}
	team, ok, err := store.FollowedTeam(ctx, "100")
	if err != nil || !ok || team != "Rangers" {
		t.Fatalf("FollowedTeam = %q, %v, %v", team, ok, err)
	}

	r = nil
	b.handleMessage("100", "/follow Zzyzx", &r)
	if len(r) != 2 || r[0] != `Team "Zzyzx" not found.` || r[1] != "Use /teams to list the teams you can follow." {
		t.Fatalf("unexpected rejection %q", r)
	}
	if team, _, _ := store.FollowedTeam(ctx, "100"); team != "Rangers" {
		t.Fatalf("rejected follow changed the row to %q", team)
	}

	r = nil
	b.handleMessage("100", "/following", &r)
	if len(r) != 1 || r[0] != "Currently following: Rangers." {
		t.Fatalf("unexpected replies %q", r)
	}

	r = nil
	if b.handleMessage("100", "hello there", &r) || b.handleMessage("100", "/dance", &r) {
		t.Fatal("non-commands must be ignored")
	}
	if len(r) != 0 {
		t.Fatalf("ignored messages replied %q", r)
	}
}

func TestFollowMessageUnregisteredGuild(t *testing.T) {
	b, _ := newTestBot(t)

	var r replies
	b.handleMessage("404", "/follow Rangers", &r)
	if len(r) != 1 || r[0] != "This server is not registered. Try re-inviting the bot." {
		t.Fatalf("unexpected replies %q", r)
	}
}

func TestTeamChoices(t *testing.T) {
	b, _ := newTestBot(t)

	if got := len(b.teamChoices("")); got != maxChoices {
		t.Errorf("expected %d choices, got %d", maxChoices, got)
	}

	choices := b.teamChoices("new york")
	if len(choices) != 2 {
		t.Fatalf("expected the two New York teams, got %d", len(choices))
	}

	choices = b.teamChoices("NYR")
	if len(choices) != 1 || choices[0].Value != "Rangers" || choices[0].Name != "New York Rangers" {
		t.Fatalf("unexpected choices %+v", choices)
	}

	if len(b.teamChoices("zzyzx")) != 0 {
		t.Error("expected no choices")
	}
}
