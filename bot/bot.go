package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/Haibread/goalhorn/subscriptions"
	"github.com/Haibread/goalhorn/teams"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Options struct {
	Token         string
	Status        string
	CommandPrefix string
	// GuildID scopes slash commands to one guild, handy while developing.
	GuildID string
}

type Bot struct {
	session *discordgo.Session
	manager *subscriptions.Manager
	catalog *teams.Catalog
	log     *zap.SugaredLogger
	opts    Options

	ctx context.Context

	// mu serializes guild membership changes and their store calls.
	// Sets are relative to the last READY.
	mu      sync.Mutex
	pending map[string]struct{} // listed by READY or in an outage, GUILD_CREATE not seen yet
	joined  map[string]struct{}
	left    map[string]struct{}

	commands []*discordgo.ApplicationCommand
}

func New(opts Options, manager *subscriptions.Manager, catalog *teams.Catalog, log *zap.SugaredLogger) (*Bot, error) {
	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	b := newBot(opts, manager, catalog, log)
	b.session = session

	log.Info("Adding handlers")
	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onGuildDelete)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b, nil
}

func newBot(opts Options, manager *subscriptions.Manager, catalog *teams.Catalog, log *zap.SugaredLogger) *Bot {
	if opts.CommandPrefix == "" {
		opts.CommandPrefix = "/"
	}
	manager.TeamsCommand = opts.CommandPrefix + "teams"
	return &Bot{
		manager: manager,
		catalog: catalog,
		log:     log,
		opts:    opts,
		ctx:     context.Background(),
		pending: make(map[string]struct{}),
		joined:  make(map[string]struct{}),
		left:    make(map[string]struct{}),
	}
}

// Start opens the websocket connection and registers the slash commands.
// ctx is passed to every event handler.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	b.log.Info("Opening Websocket connection")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("could not open Websocket connection: %w", err)
	}
	b.log.Infow("Logged into Discord", "user", b.session.State.User.String(), "id", b.session.State.User.ID)

	b.SetStatus(b.opts.Status)

	if err := b.registerCommands(); err != nil {
		return err
	}
	return nil
}

// Stop closes the gateway connection, optionally deleting the slash commands
// first.
func (b *Bot) Stop(removeCommands bool) error {
	if removeCommands {
		b.removeCommands()
	}
	return b.session.Close()
}

func (b *Bot) SetStatus(status string) {
	if status == "" {
		return
	}
	if err := b.session.UpdateListeningStatus(status); err != nil {
		b.log.Warnw("Could not update status", "status", status, "error", err)
	}
}
