package cli

import (
	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/session"
	"github.com/toyz/bindgraph/internal/utils"
)

// Config holds the configuration for a CLI run
type Config struct {
	// Manifests are the declaration manifests, one per round, in order
	Manifests []string

	// Rounds is the number of rounds a component may be deferred before it
	// is reported as unresolvable
	Rounds int

	// FullGraph also validates every module, and every component in
	// full-binding-graph mode
	FullGraph bool

	// StrictSingleton rejects @Singleton components depending on scoped
	// components
	StrictSingleton bool

	// Serve is the listen address of the HTTP validation service. Empty
	// means no service.
	Serve string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only shows errors and the final result
	Quiet bool
}

// DefaultConfig returns the configuration used when no flag is given
func DefaultConfig() Config {
	return Config{Rounds: session.DefaultMaxRounds}
}

// Validate checks the configuration for contradictions
func (c Config) Validate() error {
	if c.Rounds < 1 {
		return errors.Newf(errors.ConfigurationErrorCode, "--rounds must be at least 1, got %d", c.Rounds)
	}
	if c.Verbose && c.Quiet {
		return errors.New(errors.ConfigurationErrorCode, "--verbose and --quiet cannot be used together")
	}
	if len(c.Manifests) == 0 && c.Serve == "" {
		return errors.New(errors.ConfigurationErrorCode, "at least one manifest is required").
			WithSuggestion("pass manifest paths as arguments, or --serve ADDR to start the HTTP service")
	}
	return nil
}

// ProcessorConfig returns the processor settings selected by the flags
func (c Config) ProcessorConfig() session.Config {
	return session.Config{
		MaxRounds:        c.Rounds,
		FullBindingGraph: c.FullGraph,
		StrictSingleton:  c.StrictSingleton,
	}
}

// Diagnostics creates the diagnostic system for the selected output level
func (c Config) Diagnostics() *utils.DiagnosticSystem {
	switch {
	case c.Quiet:
		return utils.NewQuietDiagnostics()
	case c.Verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}
