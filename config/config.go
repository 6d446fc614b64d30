// Package config assembles a diceroll runtime configuration from, in
// ascending precedence: a TOML file, environment variables, then explicit
// command-line flag values. This centralizes the three-level precedence
// cmd/tqserver applied ad hoc inline for its listen address/secret/DB
// string into a single reusable struct shared by both entrypoints.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	EnvListen    = "DICEROLL_LISTEN_ADDRESS"
	EnvSecret    = "DICEROLL_TOKEN_SECRET"
	EnvDB        = "DICEROLL_DATABASE"
	EnvMaxRolls  = "DICEROLL_MAX_ROLLS"
	EnvMaxASTOps = "DICEROLL_MAX_AST_OPERATIONS"
)

const (
	DefaultListen   = "localhost:8080"
	DefaultDBString = "inmem"
)

// Config is the full set of runtime parameters for the server (and, for the
// roll-ceiling fields, the CLI). Zero values are not valid configuration;
// call FillDefaults before Validate.
type Config struct {
	// Listen is the address the HTTP server binds, ADDRESS:PORT or :PORT.
	Listen string `toml:"listen"`

	// TokenSecret signs JWT bearer tokens issued by POST /tokens. Left
	// empty, the server generates a random one at startup and logs a
	// warning that every issued token becomes invalid at shutdown.
	TokenSecret string `toml:"token_secret"`

	// DB is a connection string of the form "engine[:params]", e.g.
	// "inmem" or "sqlite:./data".
	DB string `toml:"db"`

	// MaxRolls and MaxASTOperations override the evaluator's default
	// per-call ceilings. Zero means "use the engine default".
	MaxRolls         int `toml:"max_rolls"`
	MaxASTOperations int `toml:"max_ast_operations"`

	// CacheCapacity overrides the Roller's default LFU cache capacity.
	CacheCapacity int `toml:"cache_capacity"`
}

// FillDefaults returns a copy of cfg with unset fields set to their
// documented defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.Listen == "" {
		out.Listen = DefaultListen
	}
	if out.DB == "" {
		out.DB = DefaultDBString
	}
	return out
}

// Validate returns an error describing the first invalid field found.
func (cfg Config) Validate() error {
	if cfg.MaxRolls < 0 {
		return fmt.Errorf("max_rolls cannot be negative")
	}
	if cfg.MaxASTOperations < 0 {
		return fmt.Errorf("max_ast_operations cannot be negative")
	}
	return nil
}

// Load reads tomlPath (if non-empty and present) as the base configuration,
// then overlays any of the recognized environment variables that are set.
// A missing tomlPath is not an error — callers that never pass one get a
// zero-value base Config, matching a from-flags-and-env-only invocation.
func Load(tomlPath string) (Config, error) {
	var cfg Config

	if tomlPath != "" {
		if _, err := os.Stat(tomlPath); err == nil {
			if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", tomlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat config file %s: %w", tomlPath, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv(EnvMaxRolls); v != "" {
		fmt.Sscanf(v, "%d", &cfg.MaxRolls)
	}
	if v := os.Getenv(EnvMaxASTOps); v != "" {
		fmt.Sscanf(v, "%d", &cfg.MaxASTOperations)
	}
}

// Override holds explicit flag values a command-line entrypoint parsed
// itself (via pflag); any non-empty/non-zero field here takes precedence
// over both the TOML file and the environment, matching the teacher's
// flag-beats-env-beats-default ordering.
type Override struct {
	Listen           string
	TokenSecret      string
	DB               string
	MaxRolls         int
	MaxASTOperations int
}

// Apply overlays o onto cfg, returning the merged Config. Zero-valued
// fields in o are treated as "not given" and left alone.
func (o Override) Apply(cfg Config) Config {
	out := cfg
	if o.Listen != "" {
		out.Listen = o.Listen
	}
	if o.TokenSecret != "" {
		out.TokenSecret = o.TokenSecret
	}
	if o.DB != "" {
		out.DB = o.DB
	}
	if o.MaxRolls != 0 {
		out.MaxRolls = o.MaxRolls
	}
	if o.MaxASTOperations != 0 {
		out.MaxASTOperations = o.MaxASTOperations
	}
	return out
}
