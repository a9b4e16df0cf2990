// Package config loads runtime settings from the environment, with .env
// support for local runs.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	// privileged holds the user ids allowed to reset a war's signups.
	privileged map[string]bool
}

func Load() Config {
	_ = godotenv.Load() // absent .env is fine

	cfg := Config{
		Addr:       os.Getenv("ADDR"),
		privileged: map[string]bool{},
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	for _, id := range strings.Split(os.Getenv("PRIVILEGED_USER_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.privileged[id] = true
		}
	}
	return cfg
}

// WithPrivileged returns a config allowing the given user ids to reset;
// used by tests to avoid touching the environment.
func WithPrivileged(ids ...string) Config {
	cfg := Config{Addr: ":8080", privileged: map[string]bool{}}
	for _, id := range ids {
		cfg.privileged[id] = true
	}
	return cfg
}

func (c Config) IsPrivileged(userID string) bool {
	return c.privileged[userID]
}
