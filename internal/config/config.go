package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		SessionCookie string `yaml:"session_cookie"`
		SessionTTL    string `yaml:"session_ttl"`
		ReadTimeout   string `yaml:"read_timeout"`
		WriteTimeout  string `yaml:"write_timeout"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		Color bool   `yaml:"color"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		LeaderboardSize  int      `yaml:"leaderboard_size"`
		QuestionCacheTTL string   `yaml:"question_cache_ttl"`
		SeedCSV          string   `yaml:"seed_csv"`
		Admins           []string `yaml:"admins"`
		AdminPassword    string   `yaml:"admin_password"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path. A missing file yields the zero Config so the
// service can start in memory-only mode.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// CookieName returns the session cookie name, defaulting to quiz_session.
func (c Config) CookieName() string {
	if c.Server.SessionCookie == "" {
		return "quiz_session"
	}
	return c.Server.SessionCookie
}

// AdminPassword is the initial password for administrator accounts. The
// QUIZ_ADMIN_PASSWORD environment variable takes precedence over the file.
func (c Config) AdminPassword() string {
	if pw := os.Getenv("QUIZ_ADMIN_PASSWORD"); pw != "" {
		return pw
	}
	return c.Quiz.AdminPassword
}
