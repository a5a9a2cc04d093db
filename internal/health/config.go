package health

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is the prefix of the environment variables read by ConfigFromEnv.
const EnvPrefix = "DECKHAND_HEALTH_"

// Config holds health server settings.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string `env:"ADDR" envDefault:":8080"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout bounds the graceful shutdown after a stop signal.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ConfigFromEnv loads Config from DECKHAND_HEALTH_* environment variables.
func ConfigFromEnv() (Config, error) {
	return configFrom(nil)
}

// configFrom loads Config from the given environment, or from the process
// environment when environ is nil.
func configFrom(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
	if err != nil {
		return Config{}, fmt.Errorf("load health config: %w", err)
	}
	return cfg, nil
}
