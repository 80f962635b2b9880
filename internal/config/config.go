package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Peraccount"`
		Port int    `envconfig:"PORT" default:"8080"`
		// StateFile holds the TUI's local preferences. Empty means the user config dir.
		StateFile string `envconfig:"STATE_FILE"`
		// LogFile receives the TUI's logs, which would otherwise corrupt the screen.
		LogFile string `envconfig:"LOG_FILE"`
	}

	DB struct {
		// Driver is "postgres" or "memory". The memory store loses data on exit.
		Driver   string `envconfig:"DB_DRIVER" default:"postgres"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"peraccount"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET" default:"dev-secret-change-me"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	Projection struct {
		URL     string        `envconfig:"PROJECTION_URL" default:"http://localhost:5001/predictFutureAssets"`
		Timeout time.Duration `envconfig:"PROJECTION_TIMEOUT" default:"15s"`
	}

	Ledger struct {
		SavingCategories []string `envconfig:"SAVING_CATEGORIES" default:"저축,투자,saving,investment"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// UseMemory reports whether the in-memory stores should replace Postgres.
func (c *Config) UseMemory() bool {
	return strings.EqualFold(c.DB.Driver, "memory")
}

// StatePath resolves the location of the TUI preferences file.
func (c *Config) StatePath() (string, error) {
	if c.App.StateFile != "" {
		return c.App.StateFile, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}

	return filepath.Join(dir, "peraccount", "state.json"), nil
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
