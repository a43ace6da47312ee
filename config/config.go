package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/skyblockz/sbz-giveaway/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // registers commands guild-locally when set

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// NATS configuration; empty keeps events in-process
	NATSServers string `env:"NATS_SERVERS"`

	// Access control
	OperatorRoleIDs []int64 `env:"OPERATOR_ROLE_IDS" envSeparator:","`
	OwnerIDs        []int64 `env:"OWNER_IDS" envSeparator:","`

	// Scheduling
	SchedulerTick       time.Duration `env:"SCHEDULER_TICK" envDefault:"1s"`
	GateLookahead       time.Duration `env:"GATE_LOOKAHEAD" envDefault:"30s"`
	IndefiniteGateSweep time.Duration `env:"INDEFINITE_GATE_SWEEP" envDefault:"1m"` // 0 disables
	NoticeResetInterval time.Duration `env:"NOTICE_RESET_INTERVAL" envDefault:"12h"`

	// Reaction that enters a member into a drawing
	ParticipateEmoji string `env:"PARTICIPATE_EMOJI" envDefault:"🎉"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"console"`
	OTelOTLPEndpoint         string `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"sbz-giveaway"`
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MS" envDefault:"15000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				return
			}
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL combines the base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsOperator reports whether any of the roles grants operator access
func (c *Config) IsOperator(roles []int64) bool {
	for _, role := range roles {
		for _, operator := range c.OperatorRoleIDs {
			if role == operator {
				return true
			}
		}
	}
	return false
}

// IsOwner reports whether the user may run owner-only commands
func (c *Config) IsOwner(userID int64) bool {
	for _, owner := range c.OwnerIDs {
		if owner == userID {
			return true
		}
	}
	return false
}

func load() (*Config, error) {
	// A missing .env file is normal in containers.
	_ = godotenv.Load()

	config := &Config{}
	if err := ParseEnv(config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseEnv fills target from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.SchedulerTick <= 0 {
		return fmt.Errorf("SCHEDULER_TICK must be positive")
	}
	if c.GateLookahead < 0 {
		return fmt.Errorf("GATE_LOOKAHEAD cannot be negative")
	}
	if c.NoticeResetInterval <= 0 {
		return fmt.Errorf("NOTICE_RESET_INTERVAL must be positive")
	}
	if strings.TrimSpace(c.ParticipateEmoji) == "" {
		return fmt.Errorf("PARTICIPATE_EMOJI cannot be empty")
	}

	if c.Environment == "test" {
		return nil
	}

	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		return fmt.Errorf("OTEL_EXPORTER_TYPE must be console, otlp or none, got %q", c.OTelExporterType)
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:        "test-token",
		SchedulerTick:       time.Second,
		GateLookahead:       30 * time.Second,
		IndefiniteGateSweep: time.Minute,
		NoticeResetInterval: 12 * time.Hour,
		ParticipateEmoji:    "🎉",
		OperatorRoleIDs:     []int64{999999},
		OwnerIDs:            []int64{111111},
		OTelExporterType:    "none",
		OTelServiceName:     "sbz-giveaway-test",
		LogLevel:            "debug",
		LogFormat:           "text",
		Environment:         "test",
	}
}
