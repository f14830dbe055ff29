package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/params"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func noEnv(string) (string, bool) { return "", false }

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := parseConfig("lasercalc", []string{"--env-file", "", "plate.svg"}, io.Discard, noEnv)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.URL != DefaultURL {
		t.Errorf("URL = %q, want %q", cfg.URL, DefaultURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.File != "plate.svg" {
		t.Errorf("File = %q, want positional argument", cfg.File)
	}
	if cfg.Params != params.Defaults() {
		t.Errorf("Params = %+v, want defaults", cfg.Params)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %s", cfg.LogLevel, DefaultLogLevel)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	t.Parallel()
	args := []string{
		"--env-file", "",
		"--url", "http://estimator:8000",
		"--timeout", "5s",
		"--file", "panel.svg",
		"--json",
		"--cut-speed", "12.5",
		"--junction-delay", "0",
		"--log-level", "DEBUG",
	}
	cfg, err := parseConfig("lasercalc", args, io.Discard, noEnv)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.URL != "http://estimator:8000" || cfg.Timeout != 5*time.Second || cfg.File != "panel.svg" || !cfg.JSON {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Params.CutSpeed != 12.5 || cfg.Params.JunctionDelay != 0 {
		t.Errorf("Params = %+v", cfg.Params)
	}
	if cfg.Params.Accel != params.Defaults().Accel {
		t.Errorf("untouched parameter changed: Accel = %v", cfg.Params.Accel)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestParseConfig_InvalidParameterFlag(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"fast", "-3", "NaN"} {
		_, err := parseConfig("lasercalc", []string{"--tui", "--scan-gap", raw}, io.Discard, noEnv)
		if err == nil {
			t.Errorf("--scan-gap %q should be rejected", raw)
			continue
		}
		if code := apperrors.ExitCode(err); code != apperrors.ExitErrorConfig {
			t.Errorf("--scan-gap %q: ExitCode = %d, want %d", raw, code, apperrors.ExitErrorConfig)
		}
	}
}

func TestParseConfig_ParseErrorsAreConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"non-numeric parameter", []string{"--cut-speed", "fast", "plate.svg"}},
		{"unknown flag", []string{"--bogus", "plate.svg"}},
		{"bad duration", []string{"--timeout", "soon", "plate.svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseConfig("lasercalc", tt.args, io.Discard, noEnv)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want ConfigError", err)
			}
			if code := apperrors.ExitCode(err); code != apperrors.ExitErrorConfig {
				t.Errorf("ExitCode = %d, want %d", code, apperrors.ExitErrorConfig)
			}
		})
	}
}

func TestParseConfig_Help(t *testing.T) {
	t.Parallel()
	_, err := parseConfig("lasercalc", []string{"--help"}, io.Discard, noEnv)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("error = %v, want flag.ErrHelp", err)
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Parallel()
	env := mapLookup(map[string]string{
		"LASERCALC_URL":           "https://env.example",
		"LASERCALC_TIMEOUT":       "2m",
		"LASERCALC_FILE":          "env.svg",
		"LASERCALC_QUIET":         "yes",
		"LASERCALC_CUT_SPEED":     "33",
		"LASERCALC_TRANSIT_SPEED": "400",
	})
	cfg, err := parseConfig("lasercalc", []string{"--env-file", "", "--transit-speed", "250"}, io.Discard, env)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.URL != "https://env.example" || cfg.Timeout != 2*time.Minute || cfg.File != "env.svg" || !cfg.Quiet {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Params.CutSpeed != 33 {
		t.Errorf("CutSpeed = %v, want 33 from env", cfg.Params.CutSpeed)
	}
	if cfg.Params.TransitSpeed != 250 {
		t.Errorf("TransitSpeed = %v, flag should win over env", cfg.Params.TransitSpeed)
	}
}

func TestParseConfig_InvalidEnv(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"LASERCALC_TIMEOUT":   "soon",
		"LASERCALC_PPI":       "many",
		"LASERCALC_ACCEL":     "-5",
		"LASERCALC_LOG_LEVEL": "chatty",
	}
	for key, val := range tests {
		_, err := parseConfig("lasercalc", []string{"--env-file", "", "--tui"}, io.Discard, mapLookup(map[string]string{key: val}))
		if err == nil {
			t.Errorf("%s=%q should be rejected", key, val)
		}
	}
}

func TestParseConfig_Dotenv(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "lasercalc.env")
	content := "LASERCALC_URL=http://dotenv:8000\nLASERCALC_BURN_DWELL=0.25\nLASERCALC_FILE=dot.svg\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	env := mapLookup(map[string]string{"LASERCALC_URL": "http://process:8000"})
	cfg, err := parseConfig("lasercalc", []string{"--env-file", path}, io.Discard, env)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.URL != "http://process:8000" {
		t.Errorf("URL = %q, process environment should win over the dotenv file", cfg.URL)
	}
	if cfg.Params.BurnDwell != 0.25 || cfg.File != "dot.svg" {
		t.Errorf("dotenv values not applied: %+v", cfg)
	}
}

func TestParseConfig_MissingDotenv(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "absent.env")

	env := mapLookup(map[string]string{"LASERCALC_ENV_FILE": missing})
	if _, err := parseConfig("lasercalc", []string{"--tui"}, io.Discard, env); err != nil {
		t.Errorf("an implicit missing env file should be ignored, got %v", err)
	}

	_, err := parseConfig("lasercalc", []string{"--tui", "--env-file", missing}, io.Discard, noEnv)
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("an explicit missing env file should be a ConfigError, got %v", err)
	}
}

func TestParseConfig_TooManyFiles(t *testing.T) {
	t.Parallel()
	_, err := parseConfig("lasercalc", []string{"--env-file", "", "a.svg", "b.svg"}, io.Discard, noEnv)
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestParseConfig_FileFlagWithPositional(t *testing.T) {
	t.Parallel()
	_, err := parseConfig("lasercalc", []string{"--env-file", "", "--file", "a.svg", "b.svg"}, io.Discard, noEnv)
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if !strings.Contains(err.Error(), "b.svg") {
		t.Errorf("error %q should name the extra drawing", err)
	}
}

func TestAppConfig_Validate(t *testing.T) {
	t.Parallel()
	base := AppConfig{URL: DefaultURL, Timeout: time.Second, File: "a.svg", LogLevel: "info", Params: params.Defaults()}
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"empty url", func(c *AppConfig) { c.URL = " " }, true},
		{"negative timeout", func(c *AppConfig) { c.Timeout = -time.Second }, true},
		{"zero timeout", func(c *AppConfig) { c.Timeout = 0 }, false},
		{"tui with json", func(c *AppConfig) { c.TUI = true; c.JSON = true }, true},
		{"no file", func(c *AppConfig) { c.File = "" }, true},
		{"no file in tui", func(c *AppConfig) { c.File = ""; c.TUI = true }, false},
		{"no file with check", func(c *AppConfig) { c.File = ""; c.Check = true }, false},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, true},
		{"completion without file", func(c *AppConfig) { c.File = ""; c.Completion = "zsh" }, false},
		{"unknown shell", func(c *AppConfig) { c.Completion = "tcsh" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"false", true, false},
		{"No", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.val, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
		}
	}
}
