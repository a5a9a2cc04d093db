package registry

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds registry mock settings read from the environment.
type Config struct {
	// StateFile is the YAML state file path.
	StateFile string `env:"DECKHAND_REGISTRY_STATE" envDefault:"docker-mock-state.yaml"`
}

// ConfigFromEnv loads Config from the process environment.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("load registry config: %w", err)
	}
	return cfg, nil
}
