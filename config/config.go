package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	AppName     = "house-me-bot"
	EnvFileName = "config.env"

	DefaultAPIURL = "http://localhost:3000"
)

// Config holds all runtime settings. BOT_TOKEN and MONGO_URI have no
// defaults; everything else does.
type Config struct {
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`
	MongoURI string `env:"MONGO_URI,required,notEmpty"`
	Database string `env:"MONGO_DATABASE" envDefault:"houseme"`

	APIURL     string `env:"API_URL"`
	ViteAPIURL string `env:"VITE_API_URL"`

	WebAppURL  string `env:"WEB_APP_URL" envDefault:"https://house-me.vercel.app"`
	SupportURL string `env:"SUPPORT_WHATSAPP_URL" envDefault:"https://wa.me/2348146609734"`

	AdminID       int64 `env:"ADMIN_TELEGRAM_ID" envDefault:"0"`
	ReferralBonus int64 `env:"REFERRAL_BONUS" envDefault:"500"`

	RedisURL        string        `env:"REDIS_URL"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCapacity int           `env:"SESSION_CAPACITY" envDefault:"10000"`

	RefreshDelay      time.Duration `env:"REFRESH_DELAY" envDefault:"1s"`
	RefreshMaxRuntime time.Duration `env:"REFRESH_MAX_RUNTIME" envDefault:"6h"`

	Mode          string `env:"BOT_MODE" envDefault:"webhook"`
	Host          string `env:"HOST" envDefault:"0.0.0.0"`
	Port          int    `env:"PORT" envDefault:"8000"`
	WebhookURL    string `env:"WEBHOOK_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadEnvFile loads environment variables from ./.env and from the config
// file in the user's config directory. Errors are ignored since the files
// may not exist.
func LoadEnvFile() {
	_ = godotenv.Load()
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	if cfg.Mode != "webhook" && cfg.Mode != "polling" {
		return nil, fmt.Errorf("invalid BOT_MODE %q: must be webhook or polling", cfg.Mode)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.APIURL == "" {
		c.APIURL = c.ViteAPIURL
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.WebAppURL = strings.TrimRight(c.WebAppURL, "/")
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
