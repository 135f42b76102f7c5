package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration of the server, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port   string `envconfig:"PORT" default:"8008"`
	DBPath string `envconfig:"DB_PATH" default:"mill-ops.db"`

	// BroadcastEcho controls whether a chat broadcast is echoed back to the
	// connection that sent it. Off by default.
	BroadcastEcho bool `envconfig:"WS_BROADCAST_ECHO" default:"false"`
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
