// This file contains environment variable utilities for configuration override.

package config

import (
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/params"
)

// lookupFunc resolves a fully prefixed variable name.
type lookupFunc func(key string) (string, bool)

func osLookup(key string) (string, bool) { return os.LookupEnv(key) }

// withDotenv returns a lookup that consults the process environment first and
// the dotenv file second. A missing file is only an error when it was named
// explicitly.
func withDotenv(lookup lookupFunc, path string, explicit bool) (lookupFunc, error) {
	if path == "" {
		return lookup, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return lookup, nil
		}
		return nil, apperrors.NewConfigError("cannot read env file %q: %v", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, ok
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the LASERCALC_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

// envOverrides is the declarative table of the non-parameter overrides.
// Parameter overrides are derived from params.Fields in paramOverrides.
var envOverrides = []envOverride{
	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.NewConfigError("invalid %sTIMEOUT %q: %v", EnvPrefix, v, err)
		}
		c.Timeout = parsed
		return nil
	}},

	// String overrides
	{"URL", []string{"url"}, func(c *AppConfig, v string) error {
		c.URL = v
		return nil
	}},
	{"FILE", []string{"file", "f"}, func(c *AppConfig, v string) error {
		if c.File == "" {
			c.File = v
		}
		return nil
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) error {
		c.LogLevel = v
		return nil
	}},
	{"LOG_FILE", []string{"log-file"}, func(c *AppConfig, v string) error {
		c.LogFile = v
		return nil
	}},
	{"METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig, v string) error {
		c.MetricsAddr = v
		return nil
	}},

	// Boolean overrides
	{"JSON", []string{"json"}, func(c *AppConfig, v string) error {
		c.JSON = parseBoolEnv(v, c.JSON)
		return nil
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) error {
		c.Quiet = parseBoolEnv(v, c.Quiet)
		return nil
	}},
	{"TUI", []string{"tui"}, func(c *AppConfig, v string) error {
		c.TUI = parseBoolEnv(v, c.TUI)
		return nil
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) error {
		c.NoColor = parseBoolEnv(v, c.NoColor)
		return nil
	}},
}

// paramOverrides returns one override per machine parameter, e.g.
// LASERCALC_CUT_SPEED for --cut-speed.
func paramOverrides() []envOverride {
	out := make([]envOverride, 0, len(params.Fields))
	for _, f := range params.Fields {
		field := f
		out = append(out, envOverride{
			envKey: field.EnvKey(),
			flags:  []string{field.FlagName()},
			apply: func(c *AppConfig, v string) error {
				parsed, err := params.ParseStrict(field, v)
				if err != nil {
					return err
				}
				c.Params = c.Params.With(field, parsed)
				return nil
			},
		})
	}
	return out
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment values to the configuration for any
// flags that were not explicitly set on the command line.
//
// Supported variables (all prefixed with LASERCALC_): URL, TIMEOUT, FILE,
// JSON, QUIET, TUI, LOG_LEVEL, LOG_FILE, METRICS_ADDR, NO_COLOR, ENV_FILE and
// one per machine parameter (CUT_SPEED, VECTOR_ENGRAVE_SPEED, ...).
// NO_COLOR without prefix is honoured by the ui package.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet, lookup lookupFunc) error {
	overrides := append(append([]envOverride(nil), envOverrides...), paramOverrides()...)
	for _, o := range overrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val, ok := lookup(EnvPrefix + o.envKey); ok && val != "" {
			if err := o.apply(config, val); err != nil {
				return err
			}
		}
	}
	return nil
}
