package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Origin   OriginConfig
	Guard    GuardConfig
	Telegram TelegramConfig
	SMTP     SMTPConfig
	Queue    QueueConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string
	Port string
}

// OriginConfig holds cross-origin policy settings
type OriginConfig struct {
	// AllowedOrigins is the raw allow-list, comma or newline separated.
	AllowedOrigins string
}

// GuardConfig holds submission guard (anti-abuse) settings
type GuardConfig struct {
	Window            time.Duration
	MaxPerWindow      int
	MinSubmitInterval time.Duration
	BlockDuration     time.Duration
	MaxCommentLength  int
	MaxNameLength     int
	MaxPhoneLength    int
	MaxEmailLength    int
}

// TelegramConfig holds the messaging-bot channel settings
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// SMTPConfig holds the email channel settings
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS (SMTPS); false means STARTTLS on the submission port
	User     string
	Password string
	From     string
	To       string
	Timeout  time.Duration

	// TLSVerify disables certificate verification when false. Some
	// shared hosting providers serve certificates that do not match
	// their SMTP hostname.
	TLSVerify bool
}

// QueueConfig holds retry queue settings
type QueueConfig struct {
	FilePath       string
	SweepInterval  time.Duration
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "3000"),
		},
		Origin: OriginConfig{
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		},
		Guard: GuardConfig{
			Window:            parseDuration(getEnv("GUARD_WINDOW", "10m"), 10*time.Minute),
			MaxPerWindow:      parseInt(getEnv("GUARD_MAX_PER_WINDOW", "6"), 6),
			MinSubmitInterval: parseDuration(getEnv("GUARD_MIN_INTERVAL", "8s"), 8*time.Second),
			BlockDuration:     parseDuration(getEnv("GUARD_BLOCK_DURATION", "30m"), 30*time.Minute),
			MaxCommentLength:  parseInt(getEnv("GUARD_MAX_COMMENT_LENGTH", "2500"), 2500),
			MaxNameLength:     parseInt(getEnv("GUARD_MAX_NAME_LENGTH", "120"), 120),
			MaxPhoneLength:    parseInt(getEnv("GUARD_MAX_PHONE_LENGTH", "40"), 40),
			MaxEmailLength:    parseInt(getEnv("GUARD_MAX_EMAIL_LENGTH", "160"), 160),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("BOT_TOKEN", ""),
			ChatID:   getEnv("CHAT_ID", ""),
			Timeout:  parseDuration(getEnv("TELEGRAM_TIMEOUT", "30s"), 30*time.Second),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      parseInt(getEnv("SMTP_PORT", "465"), 465),
			Secure:    parseBool(getEnv("SMTP_SECURE", "true")),
			User:      getEnv("SMTP_USER", ""),
			Password:  getEnv("SMTP_PASS", ""),
			From:      getEnv("MAIL_FROM", ""),
			To:        getEnv("MAIL_TO", ""),
			Timeout:   parseDuration(getEnv("SMTP_TIMEOUT", "30s"), 30*time.Second),
			TLSVerify: parseBool(getEnv("SMTP_TLS_REJECT_UNAUTHORIZED", "true")),
		},
		Queue: QueueConfig{
			FilePath:       getEnv("QUEUE_FILE_PATH", "./data/delivery-queue.json"),
			SweepInterval:  parseDuration(getEnv("QUEUE_RETRY_INTERVAL", "15s"), 15*time.Second),
			BaseRetryDelay: parseDuration(getEnv("QUEUE_BASE_RETRY_DELAY", "30s"), 30*time.Second),
			MaxRetryDelay:  parseDuration(getEnv("QUEUE_MAX_RETRY_DELAY", "15m"), 15*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Fall back to the SMTP account for mail addresses, matching shared
	// hosting setups where from/to are the mailbox itself.
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.SMTP.To == "" {
		cfg.SMTP.To = cfg.SMTP.User
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are internally consistent.
// Missing channel credentials are not an error: the relay runs in a
// degraded mode and reports unconfigured channels per request.
func (c *Config) Validate() error {
	if c.Guard.MaxPerWindow < 1 {
		return fmt.Errorf("GUARD_MAX_PER_WINDOW must be at least 1")
	}
	if c.Queue.BaseRetryDelay <= 0 {
		return fmt.Errorf("QUEUE_BASE_RETRY_DELAY must be positive")
	}
	if c.Queue.MaxRetryDelay < c.Queue.BaseRetryDelay {
		return fmt.Errorf("QUEUE_MAX_RETRY_DELAY must not be smaller than QUEUE_BASE_RETRY_DELAY")
	}
	if c.Queue.FilePath == "" {
		return fmt.Errorf("QUEUE_FILE_PATH must not be empty")
	}
	return nil
}

// TelegramConfigured reports whether the messaging channel has credentials
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// SMTPConfigured reports whether the email channel has credentials
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.Host != "" && c.SMTP.User != "" && c.SMTP.Password != "" &&
		c.SMTP.From != "" && c.SMTP.To != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(value string, defaultValue int) int {
	var result int
	_, err := fmt.Sscanf(value, "%d", &result)
	if err != nil {
		return defaultValue
	}
	return result
}

func parseBool(value string) bool {
	return value == "true" || value == "1" || value == "yes"
}
