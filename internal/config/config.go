// Package config loads runtime configuration from the process environment
// using struct tags, the same way the rest of the toolchain's commands are
// configured.
package config

import (
	"github.com/caarlos0/env/v6"
)

// EnvPrefix namespaces every variable this binary reads, so it cannot
// collide with unrelated environment variables on a shared host.
const EnvPrefix = "OXYDE_"

// VM holds the subset of VM behavior that is tunable from the environment
// rather than from command-line flags, because it applies regardless of
// which subcommand is invoked.
type VM struct {
	// MaxInstructions bounds the number of opcodes a single Run executes
	// before failing with Cancelled. Zero (the default) means unbounded,
	// matching the core VM contract, which has no built-in step limit.
	MaxInstructions uint64 `env:"MAX_INSTRUCTIONS" envDefault:"0"`
}

// Load reads VM configuration from the environment, applying EnvPrefix to
// every variable name (e.g. OXYDE_MAX_INSTRUCTIONS).
func Load() (VM, error) {
	var cfg VM
	if err := env.Parse(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return VM{}, err
	}
	return cfg, nil
}
