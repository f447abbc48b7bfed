// Package config loads permute settings from a YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, PERMUTE_*
// environment variables. Command-line flags are applied on top by the
// caller. The merged result is validated against an embedded CUE schema.
package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/roach88/permute/internal/tabular"
)

//go:embed schema.cue
var schemaCUE string

// Config holds settings shared by all commands.
type Config struct {
	// Database is the SQLite file holding saved prompt lists.
	Database string `yaml:"database" json:"database" env:"PERMUTE_DB, overwrite"`

	// Key names the saved prompt list to operate on.
	Key string `yaml:"key" json:"key" env:"PERMUTE_KEY, overwrite"`

	// MaxCombinations caps generation; 0 disables the cap.
	MaxCombinations uint64 `yaml:"max_combinations" json:"max_combinations" env:"PERMUTE_MAX_COMBINATIONS, overwrite"`

	// ExportName is the file name export writes.
	ExportName string `yaml:"export_name" json:"export_name" env:"PERMUTE_EXPORT_NAME, overwrite"`

	// LogFile, when set, receives JSON logs in addition to stderr.
	LogFile string `yaml:"log_file" json:"log_file" env:"PERMUTE_LOG_FILE, overwrite"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:        "permute.db",
		Key:             "prompts",
		MaxCombinations: 1_000_000,
		ExportName:      tabular.DefaultFilename,
	}
}

// DefaultPath returns the per-user config file location, or "" if the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "permute", "config.yaml")
}

// Options controls Load.
type Options struct {
	// Path is the YAML file to read. If empty, DefaultPath is tried and a
	// missing file there is not an error.
	Path string

	// Lookuper resolves environment variables. Nil uses the process
	// environment.
	Lookuper envconfig.Lookuper
}

// Load builds the effective configuration.
func Load(ctx context.Context, opts Options) (Config, error) {
	cfg := Default()

	path, required := opts.Path, true
	if path == "" {
		path, required = DefaultPath(), false
	}
	if path != "" {
		if err := readFile(path, required, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookuper := opts.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, required bool, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
