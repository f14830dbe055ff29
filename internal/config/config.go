// Package config handles the application's configuration: command-line flags,
// an optional dotenv file and LASERCALC_* environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/params"
)

const (
	// EnvPrefix is the prefix of every environment variable read by the
	// application.
	EnvPrefix = "LASERCALC_"
	// DefaultURL is the estimation service's address when run locally.
	DefaultURL = "http://127.0.0.1:8000"
	// DefaultTimeout bounds a single estimation request.
	DefaultTimeout = 30 * time.Second
	// DefaultEnvFile is read when present in the working directory.
	DefaultEnvFile = ".env"
	// DefaultLogLevel keeps one-shot output free of progress logs.
	DefaultLogLevel = "warn"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// URL is the root of the estimation service.
	URL string
	// Timeout bounds each estimation request. Zero disables the limit.
	Timeout time.Duration
	// File is the drawing to estimate. It may also be given as the first
	// positional argument.
	File string
	// JSON prints the report as JSON instead of a table.
	JSON bool
	// Quiet suppresses the spinner and the execution summary.
	Quiet bool
	// TUI starts the interactive dashboard.
	TUI bool
	// Check only probes the service's health endpoint.
	Check bool
	// LogLevel is a zerolog level name.
	LogLevel string
	// LogFile receives logs in TUI mode. Empty discards them.
	LogFile string
	// MetricsAddr, when set, serves /metrics, /healthz and /session.
	MetricsAddr string
	// NoColor disables colored output.
	NoColor bool
	// EnvFile is the dotenv file consulted for LASERCALC_* variables.
	EnvFile string
	// Completion names a shell whose completion script should be printed.
	Completion string
	// Params is the initial machine parameter set.
	Params params.MachineParameters
}

// Validate checks the configuration for semantic errors.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return apperrors.NewConfigError("the service URL must not be empty")
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("the timeout must not be negative, got %s", c.Timeout)
	}
	if c.TUI && (c.JSON || c.Check) {
		return apperrors.NewConfigError("--tui cannot be combined with --json or --check")
	}
	if c.Completion != "" {
		switch c.Completion {
		case "bash", "zsh", "fish":
		default:
			return apperrors.NewConfigError("unsupported shell %q (accepted values: bash, zsh, fish)", c.Completion)
		}
		return nil
	}
	if !c.TUI && !c.Check && c.File == "" {
		return apperrors.NewConfigError("no drawing given: pass --file or a path argument, or use --tui")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	return nil
}

// ParseConfig parses the command-line arguments, then fills every setting not
// given on the command line from the environment or the dotenv file.
// Priority: flags > environment > dotenv file > defaults.
//
// Parameters:
//   - programName: The name of the program (usually os.Args[0]).
//   - args: The command-line arguments (usually os.Args[1:]).
//   - errorWriter: The writer for usage and parse errors.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp, a parse error, or a validation error.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	return parseConfig(programName, args, errorWriter, osLookup)
}

func parseConfig(programName string, args []string, errorWriter io.Writer, lookup lookupFunc) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{Params: params.Defaults()}
	fs.StringVar(&config.URL, "url", DefaultURL, "Root URL of the estimation service.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum time for one estimation request (0 disables).")
	fs.StringVar(&config.File, "file", "", "SVG drawing to estimate.")
	fs.StringVar(&config.File, "f", "", "Shorthand for --file.")
	fs.BoolVar(&config.JSON, "json", false, "Print the report as JSON.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the result.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the interactive dashboard.")
	fs.BoolVar(&config.Check, "check", false, "Only check that the estimation service is reachable.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error).")
	fs.StringVar(&config.LogFile, "log-file", "", "File receiving logs in TUI mode.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Address for the local status endpoint, e.g. :9090.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.EnvFile, "env-file", DefaultEnvFile, "Dotenv file with LASERCALC_* settings.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for the shell (bash, zsh, fish).")

	paramFlags := make(map[params.Field]*paramValue, len(params.Fields))
	for _, spec := range params.Specs() {
		v := &paramValue{field: spec.Field, value: mustGet(config.Params, spec.Field)}
		paramFlags[spec.Field] = v
		fs.Var(v, spec.Field.FlagName(), fmt.Sprintf("%s (%s).", spec.Label, spec.Unit))
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.ConfigError{Message: err.Error()}
	}
	for f, v := range paramFlags {
		config.Params = config.Params.With(f, v.value)
	}
	if config.File != "" && fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("--file %q and positional drawing %q cannot be combined", config.File, fs.Arg(0))
	}
	if fs.NArg() > 1 {
		return AppConfig{}, apperrors.NewConfigError("only one drawing can be estimated at a time, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		config.File = fs.Arg(0)
	}

	envFileExplicit := isFlagSet(fs, "env-file")
	if !envFileExplicit {
		if v, ok := lookup(EnvPrefix + "ENV_FILE"); ok && v != "" {
			config.EnvFile = v
		}
	}
	lookup, err := withDotenv(lookup, config.EnvFile, envFileExplicit)
	if err != nil {
		return AppConfig{}, err
	}
	if err := applyEnvOverrides(&config, fs, lookup); err != nil {
		return AppConfig{}, err
	}

	config.LogLevel = strings.ToLower(config.LogLevel)
	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

func mustGet(p params.MachineParameters, f params.Field) float64 {
	v, _ := p.Get(f)
	return v
}

// paramValue is a flag.Value that rejects anything but a finite,
// non-negative number.
type paramValue struct {
	field params.Field
	value float64
}

func (v *paramValue) String() string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(v.value, 'f', -1, 64)
}

func (v *paramValue) Set(raw string) error {
	parsed, err := params.ParseStrict(v.field, raw)
	if err != nil {
		return err
	}
	v.value = parsed
	return nil
}
