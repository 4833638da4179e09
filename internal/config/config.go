package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hexapod/packs-go/internal/domain"
)

type Config struct {
	HTTPAddr string
	LogLevel slog.Level

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURL  string

	WebhookURL string
	AMQPURL    string
	RedisAddr  string

	StateSecret   string
	SessionTTL    time.Duration
	SecureCookies bool

	PackSize int
	Weights  domain.WeightTable
	Timezone *time.Location

	HTTPClientTimeout time.Duration
}

func Load() (Config, error) {
	// Optional .env bootstrap for local development; a missing file is fine.
	_ = godotenv.Load()

	c := Config{
		HTTPAddr:            envOr("HTTP_ADDR", ":8080"),
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURL:  os.Getenv("DISCORD_REDIRECT_URL"),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		AMQPURL:             os.Getenv("AMQP_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		StateSecret:         os.Getenv("STATE_SECRET"),
		SessionTTL:          7 * 24 * time.Hour,
		SecureCookies:       envOr("SECURE_COOKIES", "true") == "true",
		HTTPClientTimeout:   10 * time.Second,
	}

	if c.DiscordClientID == "" || c.DiscordClientSecret == "" || c.DiscordRedirectURL == "" {
		return Config{}, fmt.Errorf("DISCORD_CLIENT_ID, DISCORD_CLIENT_SECRET and DISCORD_REDIRECT_URL are required")
	}
	if c.StateSecret == "" {
		return Config{}, fmt.Errorf("STATE_SECRET is required")
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		c.SessionTTL = d
	}

	if v := os.Getenv("HTTP_CLIENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HTTP_CLIENT_TIMEOUT %q: %w", v, err)
		}
		c.HTTPClientTimeout = d
	}

	size, err := envInt("PACK_SIZE", 0)
	if err != nil {
		return Config{}, err
	}
	c.PackSize = size

	weights, err := parseWeights()
	if err != nil {
		return Config{}, err
	}
	c.Weights = weights

	loc := time.Local
	if v := os.Getenv("TIMEZONE"); v != "" {
		loc, err = time.LoadLocation(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", v, err)
		}
	}
	c.Timezone = loc

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

// parseWeights reads the optional per-tier weight overrides. All three must
// be set together; validation of the sum happens at catalog load.
func parseWeights() (domain.WeightTable, error) {
	common := os.Getenv("PACK_WEIGHT_COMMON")
	uncommon := os.Getenv("PACK_WEIGHT_UNCOMMON")
	legendary := os.Getenv("PACK_WEIGHT_LEGENDARY")

	if common == "" && uncommon == "" && legendary == "" {
		return nil, nil
	}
	if common == "" || uncommon == "" || legendary == "" {
		return nil, fmt.Errorf("PACK_WEIGHT_COMMON, PACK_WEIGHT_UNCOMMON and PACK_WEIGHT_LEGENDARY must be set together")
	}

	table := domain.WeightTable{}
	for tier, raw := range map[domain.RarityTier]string{
		domain.TierCommon:    common,
		domain.TierUncommon:  uncommon,
		domain.TierLegendary: legendary,
	} {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for %s: %q", tier, raw)
		}
		table[tier] = n
	}
	return table, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
