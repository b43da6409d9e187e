// Package config resolves where moim keeps its state and which backend it
// talks to. Runtime settings come from MOIM_* environment variables, with a
// .env file loaded first when present.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL = "http://localhost:8080"
	defaultBrokerURL  = "ws://localhost:8080/ws"
)

// Config carries the backend addresses every component dials.
type Config struct {
	// APIBaseURL is the REST backend.
	APIBaseURL string
	// BrokerURL is the WebSocket message broker used by the realtime
	// document session.
	BrokerURL string
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: defaultAPIBaseURL,
		BrokerURL:  defaultBrokerURL,
	}
	if v := os.Getenv("MOIM_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("MOIM_BROKER_URL"); v != "" {
		cfg.BrokerURL = v
	}
	return cfg
}
