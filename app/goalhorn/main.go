package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Haibread/goalhorn/bot"
	"github.com/Haibread/goalhorn/config"
	"github.com/Haibread/goalhorn/database"
	"github.com/Haibread/goalhorn/logging"
	"github.com/Haibread/goalhorn/subscriptions"
	"github.com/Haibread/goalhorn/teams"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	v          = viper.New()
	configPath string
)

func main() {
	root := &cobra.Command{
		Use:          "goalhorn",
		Short:        "A bot for getting live notifications for NHL games.",
		SilenceUsage: true,
		RunE:         run,
	}
	cobra.CheckErr(addFlags(v, root.PersistentFlags()))

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  migrate,
	})
	root.AddCommand(&cobra.Command{
		Use:   "teams",
		Short: "Print the teams a server can follow",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range teams.NHL().Teams() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s\n", t.Abbreviation, t.FullName())
			}
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return fmt.Errorf("could not bind log-level flag: %w", err)
	}
	return nil
}

func setup() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	return cfg, log, nil
}

func migrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Database schema is up to date")
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	catalog := teams.NHL()
	manager := subscriptions.NewManager(database.NewStore(db), catalog, log.Named("subscriptions"))
	manager.StatementTimeout = cfg.StatementTimeout

	b, err := bot.New(bot.Options{
		Token:         cfg.Token,
		Status:        cfg.BotStatus,
		CommandPrefix: cfg.CommandPrefix,
		GuildID:       cfg.GuildID,
	}, manager, catalog, log.Named("bot"))
	if err != nil {
		return err
	}

	if err := b.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	if v.ConfigFileUsed() != "" {
		config.Watch(v, func(e fsnotify.Event, c *config.Config) {
			log.Infow("Config file changed", "file", e.Name)
			b.SetStatus(c.BotStatus)
		})
	}

	// Wait here until CTRL-C or other term signal is received.
	log.Info("Bot is now running.  Press CTRL-C to exit.")
	<-ctx.Done()

	log.Info("Shutting down")
	return b.Stop(cfg.RemoveCommandsOnExit)
}
