package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"typeref/internal/core/errors"
)

type Config struct {
	SourceRoots   []string      `toml:"source_roots"`
	Scan          Scan          `toml:"scan"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Scan struct {
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	RescanRate  float64       `toml:"rescan_rate"`  // rescans per second allowed
	RescanBurst int           `toml:"rescan_burst"` // burst size for the limiter
}

type Output struct {
	// Dir mirrors rewritten sources under this directory. Empty with
	// InPlace false means a dry run: nothing is written.
	Dir     string `toml:"dir"`
	InPlace bool   `toml:"in_place"`
	TSV     string `toml:"tsv"` // rewrite report path, empty disables
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	Listen       string `toml:"listen"`        // metrics/health address, empty disables
	OTLPEndpoint string `toml:"otlp_endpoint"` // trace exporter target, empty disables
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigError, "decode config")
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{"."}
	}
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{".js", ".mjs", ".cjs", ".jsx"}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "node_modules"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescanRate == 0 {
		cfg.Watch.RescanRate = 1
	}
	if cfg.Watch.RescanBurst == 0 {
		cfg.Watch.RescanBurst = 2
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(".typeref", "history.db")
	}
}

func validate(cfg *Config) error {
	if cfg.Output.InPlace && cfg.Output.Dir != "" {
		return errors.New(errors.CodeConfigError, "output.in_place and output.dir are mutually exclusive")
	}
	for _, ext := range cfg.Scan.Extensions {
		if ext == "" || ext[0] != '.' {
			return errors.Newf(errors.CodeConfigError, "scan extension %q must start with a dot", ext)
		}
	}
	return nil
}

// AbsoluteRoots returns the source roots resolved against the working
// directory. Implicit module derivation needs absolute roots.
func (c *Config) AbsoluteRoots() []string {
	roots := make([]string, 0, len(c.SourceRoots))
	for _, r := range c.SourceRoots {
		if abs, err := filepath.Abs(r); err == nil {
			roots = append(roots, abs)
		} else {
			roots = append(roots, r)
		}
	}
	return roots
}
