// Package config loads server configuration from defaults, an optional .env
// file, and PORTFOLIO_* environment variables (highest precedence).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Gemini  GeminiConfig
	Auth    AuthConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port        int
	CORSOrigins []string
	MCPEnabled  bool
}

type StorageConfig struct {
	Driver  string // "sqlite" or "memory"
	DataDir string
}

type GeminiConfig struct {
	APIKey string
	Models []string // candidate models in fallback priority order
}

type AuthConfig struct {
	AdminUsername string
	AdminPassword string
	SessionTTL    time.Duration
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:8000"},
		},
		Storage: StorageConfig{
			Driver:  "sqlite",
			DataDir: defaultDataDir(),
		},
		Gemini: GeminiConfig{
			Models: []string{"gemini-2.0-flash", "gemini-flash-latest", "gemini-pro-latest"},
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".portfolio")
	}
	return ".portfolio"
}

// Load reads configuration. A .env file in the working directory is applied
// first (missing file is fine), then PORTFOLIO_* variables override defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORTFOLIO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PORTFOLIO_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("PORTFOLIO_MCP_ENABLED"); v != "" {
		cfg.Server.MCPEnabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("PORTFOLIO_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("PORTFOLIO_STORAGE_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("PORTFOLIO_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("PORTFOLIO_GEMINI_MODELS"); v != "" {
		cfg.Gemini.Models = splitList(v)
	}
	if v := os.Getenv("PORTFOLIO_ADMIN_USERNAME"); v != "" {
		cfg.Auth.AdminUsername = v
	} else if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.Auth.AdminUsername = v
	}
	if v := os.Getenv("PORTFOLIO_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	} else if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("PORTFOLIO_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.SessionTTL = d
		}
	}
	if v := os.Getenv("PORTFOLIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
