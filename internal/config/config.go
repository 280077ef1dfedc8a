package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"clicker_game/internal/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort     string `envconfig:"APP_PORT" default:"8080"`
	AppVersion  string `envconfig:"APP_VERSION" default:"dev"`
	DevMode     bool   `envconfig:"DEV_MODE" default:"false"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret       string        `envconfig:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`

	// Telegram WebApp login is enabled only when set
	BotToken string `envconfig:"BOT_TOKEN"`

	AdminBotEnabled  bool    `envconfig:"ADMIN_BOT_ENABLED" default:"false"`
	AdminTelegramIDs []int64 `envconfig:"ADMIN_TELEGRAM_IDS"` // добавить в env tg id админов бота

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AMQPURL       string `envconfig:"AMQP_URL"`
	EventExchange string `envconfig:"EVENT_EXCHANGE" default:"game.events"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Game rules
	RepoTimeout     time.Duration `envconfig:"REPO_TIMEOUT" default:"5s"`
	ClickMaxSkew    time.Duration `envconfig:"CLICK_MAX_SKEW" default:"30s"`
	MaxClicks       int64         `envconfig:"MAX_CLICKS" default:"100"`
	GameTimezone    string        `envconfig:"GAME_TIMEZONE" default:"UTC"`
	LeaderboardSize int           `envconfig:"LEADERBOARD_SIZE" default:"100"`
	LeaderboardTTL  time.Duration `envconfig:"LEADERBOARD_TTL" default:"60s"`

	// Rate limits
	APIRateLimit    int           `envconfig:"API_RATE_LIMIT" default:"300"`
	APIRateWindow   time.Duration `envconfig:"API_RATE_WINDOW" default:"1m"`
	AuthRateLimit   int           `envconfig:"AUTH_RATE_LIMIT" default:"10"`
	AuthRateWindow  time.Duration `envconfig:"AUTH_RATE_WINDOW" default:"1m"`
	ClickRateLimit  int           `envconfig:"CLICK_RATE_LIMIT" default:"120"`
	ClickRateWindow time.Duration `envconfig:"CLICK_RATE_WINDOW" default:"1m"`
}

// Загрузка конфига из env (.env подхватывается, если есть)
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Parse reads the environment without touching .env files or exiting.
func Parse() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.MaxClicks < 1 {
		return fmt.Errorf("MAX_CLICKS must be positive, got %d", c.MaxClicks)
	}
	if c.RepoTimeout <= 0 {
		return fmt.Errorf("REPO_TIMEOUT must be positive")
	}
	if c.AdminBotEnabled && c.BotToken == "" {
		return fmt.Errorf("ADMIN_BOT_ENABLED requires BOT_TOKEN")
	}
	if _, err := time.LoadLocation(c.GameTimezone); err != nil {
		return fmt.Errorf("GAME_TIMEZONE %q: %w", c.GameTimezone, err)
	}
	return nil
}

// Location is the time zone used for daily reward day boundaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.GameTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
