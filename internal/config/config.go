package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App         AppConfig
	Discord     DiscordConfig
	Channels    ChannelsConfig
	Roles       RolesConfig
	Tickets     TicketsConfig
	Persistence PersistenceConfig
	Redis       RedisConfig
	Logger      LoggerConfig
}

// AppConfig controls process level behavior and the ops HTTP listener.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds gateway credentials and the community guild.
type DiscordConfig struct {
	Token   string
	GuildID string
	// CommandGuildID scopes slash command registration for instant
	// availability during development. Empty registers globally.
	CommandGuildID string
}

// ChannelsConfig lists the channels the bot writes to.
type ChannelsConfig struct {
	ActionLog      string
	SessionLog     string
	StrikeLog      string
	VehicleLog     string
	TicketCategory string
	// MuteHint is the busy channel where every member message gets a
	// reminder that the channel can be muted.
	MuteHint string
}

// RolesConfig is the role table behind every capability check.
type RolesConfig struct {
	Admin       []string
	HighCommand []string
	Ownership   []string
	StaffTeam   []string
	Booster     []string
	Civilian    []string
}

// TicketsConfig tunes the ticket lifecycle.
type TicketsConfig struct {
	CloseDelaySeconds int
	TranscriptLimit   int
}

// PersistenceConfig selects where the vehicle registry snapshot lives.
type PersistenceConfig struct {
	Backend  string
	File     string
	RedisKey string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "community-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token:          os.Getenv("DISCORD_TOKEN"),
			GuildID:        os.Getenv("GUILD_ID"),
			CommandGuildID: os.Getenv("TEST_GUILD_ID"),
		},
		Channels: ChannelsConfig{
			ActionLog:      getEnv("ACTION_LOG_CHANNEL_ID", "1459588265769435177"),
			SessionLog:     getEnv("SESSION_LOG_CHANNEL_ID", "1454889852054278144"),
			StrikeLog:      getEnv("STRIKE_LOG_CHANNEL_ID", "1459588265769435177"),
			VehicleLog:     getEnv("VEHICLE_LOG_CHANNEL_ID", "1456813290381643806"),
			TicketCategory: getEnv("TICKET_CATEGORY_ID", "1459706908075233331"),
			MuteHint:       getEnv("MUTE_HINT_CHANNEL_ID", "1429220984988238007"),
		},
		Roles: RolesConfig{
			Admin:       getEnvAsList("ROLE_ADMIN_IDS", "1459341992525037835"),
			HighCommand: getEnvAsList("ROLE_HIGHCOMMAND_IDS", "1450600601238114577"),
			Ownership:   getEnvAsList("ROLE_OWNERSHIP_IDS", "1459333438871175200"),
			StaffTeam:   getEnvAsList("ROLE_STAFF_TEAM_IDS", "1431352511931093052"),
			Booster:     getEnvAsList("ROLE_BOOSTER_IDS", "1458934685412626454"),
			Civilian:    getEnvAsList("ROLE_CIVILIAN_IDS", "1429222424393683074"),
		},
		Tickets: TicketsConfig{
			CloseDelaySeconds: getEnvAsInt("TICKET_CLOSE_DELAY_SECONDS", 5),
			TranscriptLimit:   getEnvAsInt("TICKET_TRANSCRIPT_LIMIT", 500),
		},
		Persistence: PersistenceConfig{
			Backend:  strings.ToLower(getEnv("PERSISTENCE_BACKEND", BackendFile)),
			File:     getEnv("PERSISTENCE_FILE", "vehicle_store.json"),
			RedisKey: getEnv("PERSISTENCE_REDIS_KEY", "community-bot:vehicle_store"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// LoadEnvFile loads an explicit dotenv file. Variables already set win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values the gateway cannot run without.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("config: DISCORD_TOKEN is required")
	}
	if c.Discord.GuildID == "" {
		return errors.New("config: GUILD_ID is required")
	}
	switch c.Persistence.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("config: unknown PERSISTENCE_BACKEND %q", c.Persistence.Backend)
	}
	if c.Tickets.CloseDelaySeconds < 0 {
		return errors.New("config: TICKET_CLOSE_DELAY_SECONDS must not be negative")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// CloseDelay returns the delay between a close request and channel deletion.
func (t TicketsConfig) CloseDelay() time.Duration {
	if t.CloseDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(t.CloseDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key, fallback string) []string {
	return splitList(getEnv(key, fallback))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
