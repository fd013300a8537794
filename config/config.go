package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Haibread/goalhorn/database"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Token                string
	BotStatus            string
	CommandPrefix        string
	GuildID              string // registers slash commands on a single guild when set
	RemoveCommandsOnExit bool

	LogLevel       string
	LogDevelopment bool

	Database         database.Config
	StatementTimeout time.Duration
}

// envAliases keeps the variable names used by earlier deployments working.
var envAliases = map[string]string{
	"token":             "BOT_TOKEN",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("token", "")
	v.SetDefault("bot_status", "NHL games")
	v.SetDefault("command_prefix", "/")
	v.SetDefault("guild_id", "")
	v.SetDefault("remove_commands_on_exit", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "goalhorn")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "goalhorn.db")
	v.SetDefault("database.connect_timeout", 30*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
}

// Load reads .env, the optional config file and the environment into v.
// Environment variables use the GOALHORN_ prefix, e.g. GOALHORN_DATABASE_HOST.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)

	v.SetEnvPrefix("goalhorn")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "GOALHORN_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Token:                v.GetString("token"),
		BotStatus:            v.GetString("bot_status"),
		CommandPrefix:        v.GetString("command_prefix"),
		GuildID:              v.GetString("guild_id"),
		RemoveCommandsOnExit: v.GetBool("remove_commands_on_exit"),
		LogLevel:             v.GetString("log.level"),
		LogDevelopment:       v.GetBool("log.development"),
		StatementTimeout:     v.GetDuration("database.statement_timeout"),
		Database: database.Config{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			ConnectTimeout:  v.GetDuration("database.connect_timeout"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
	}
}

// Validate checks the settings needed to connect to Discord.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("token is required (set BOT_TOKEN or token in config.yaml)")
	}
	if c.CommandPrefix == "" {
		return errors.New("command_prefix must not be empty")
	}
	return nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes on disk.
func Watch(v *viper.Viper, onChange func(fsnotify.Event, *Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		onChange(e, fromViper(v))
	})
	v.WatchConfig()
}
