// Package config loads graphc settings from YAML or HCL files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	starplat "github.com/DemoGo/StarPlatWorkingBranch"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
)

// MaxThreadsPerBlock is the largest accepted work-group size.
const MaxThreadsPerBlock = 1024

// Config holds the settings of one graphc run.
type Config struct {
	Target          string   `yaml:"target" hcl:"target,optional"`
	BaseName        string   `yaml:"base_name" hcl:"base_name,optional"`
	ThreadsPerBlock int      `yaml:"threads_per_block" hcl:"threads_per_block,optional"`
	OutputDir       string   `yaml:"output_dir" hcl:"output_dir,optional"`
	Programs        []string `yaml:"programs" hcl:"programs,optional"`
	Manifest        bool     `yaml:"manifest" hcl:"manifest,optional"`
	LogLevel        string   `yaml:"log_level" hcl:"log_level,optional"`
	LogFormat       string   `yaml:"log_format" hcl:"log_format,optional"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	defaults := starplat.DefaultOptions()
	return &Config{
		Target:          defaults.Target,
		ThreadsPerBlock: defaults.ThreadsPerBlock,
		OutputDir:       ".",
		Programs:        []string{"*"},
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads path, choosing the decoder by extension (.yaml, .yml or .hcl).
// Settings absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case ".hcl":
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
		}
		diags = gohcl.DecodeBody(file.Body, nil, &cfg)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, diags)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Target == "" {
		c.Target = d.Target
	}
	if c.ThreadsPerBlock == 0 {
		c.ThreadsPerBlock = d.ThreadsPerBlock
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if len(c.Programs) == 0 {
		c.Programs = d.Programs
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
}

// Validate reports the first setting that cannot be used. The error is a
// codegen.ErrInvalidConfig error.
func (c *Config) Validate() error {
	if !slices.Contains(starplat.Targets(), c.Target) {
		return codegen.Errorf(codegen.ErrInvalidConfig, "unknown target %q (supported: %s)",
			c.Target, strings.Join(starplat.Targets(), ", "))
	}
	if c.ThreadsPerBlock < 1 || c.ThreadsPerBlock > MaxThreadsPerBlock {
		return codegen.Errorf(codegen.ErrInvalidConfig, "threads_per_block %d outside [1, %d]",
			c.ThreadsPerBlock, MaxThreadsPerBlock)
	}
	if strings.ContainsAny(c.BaseName, `/\`) {
		return codegen.Errorf(codegen.ErrInvalidConfig, "base_name %q must not contain a directory", c.BaseName)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return codegen.Errorf(codegen.ErrInvalidConfig, "log_format %q is neither text nor json", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, codegen.Errorf(codegen.ErrInvalidConfig, "log_level %q: %v", c.LogLevel, err)
	}
	return level, nil
}
