package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	SessionBackendCookie = "cookie"
	SessionBackendMongo  = "mongo"
)

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"3000"`

	BackendURL       string        `envconfig:"BACKEND_URL" default:"http://localhost:8080"`
	BackendTimeout   time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"4"`

	SessionSecret  string `envconfig:"SESSION_SECRET" required:"true"`
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"cookie"`
	SecureCookies  bool   `envconfig:"SECURE_COOKIES" default:"false"`

	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName     string `envconfig:"MONGO_DB_NAME" default:"dashboard"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"sessions"`

	LogFile  string `envconfig:"LOG_FILE" default:"logs/dashboard.log"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the given .env files (missing ones are skipped) and then the
// process environment. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	cfg.SessionBackend = strings.ToLower(cfg.SessionBackend)
	switch cfg.SessionBackend {
	case SessionBackendCookie, SessionBackendMongo:
	default:
		return nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if cfg.FetchConcurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", cfg.FetchConcurrency)
	}
	return &cfg, nil
}

// Addr is the listen address of the dashboard server.
func (c *Config) Addr() string {
	return ":" + c.ServerPort
}
