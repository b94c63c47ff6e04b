// Package config loads and validates run and server configuration from
// YAML files and turns validated run configurations into assembled solver
// components.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qbitwise/varqe/internal/store"
)

// File is the top-level YAML configuration.
type File struct {
	Server  ServerConfig    `yaml:"server"`
	Logging LoggingConfig   `yaml:"logging"`
	Job     store.RunConfig `yaml:"job"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"dataDir"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &File{}
	cfg.applyDefaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyJobDefaults(&cfg.Job)
	if err := ValidateJob(&cfg.Job); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *File) applyDefaults() {
	f.Server.Addr = ":8080"
	f.Server.DataDir = "./data"
	f.Logging.Level = "info"
	f.Logging.Format = "json"
}

// ApplyJobDefaults fills zero-valued run settings with usable defaults.
func ApplyJobDefaults(job *store.RunConfig) {
	if job.Algorithm == "" {
		job.Algorithm = "vqe"
	}
	if job.Preset == "" && len(job.Terms) == 0 {
		job.Preset = "ising"
	}
	if job.Qubits == 0 {
		job.Qubits = 4
	}
	if job.Field == 0 {
		job.Field = 1.0
	}
	if job.Layers == 0 {
		job.Layers = 2
	}
	if job.Reps == 0 {
		job.Reps = 2
	}
	if job.Optimizer == "" {
		job.Optimizer = "mayfly"
	}
	if job.MaxIters == 0 {
		job.MaxIters = 200
	}
	if job.PopSize == 0 {
		job.PopSize = 30
	}
	if job.Seed == 0 {
		job.Seed = 42
	}
	if job.Eigenpairs == 0 {
		job.Eigenpairs = 1
	}
}

// ValidateJob rejects run configurations no component can serve.
func ValidateJob(job *store.RunConfig) error {
	switch job.Algorithm {
	case "vqe", "qaoa", "vqd":
	default:
		return fmt.Errorf("config: unknown algorithm %q (want vqe, qaoa, or vqd)", job.Algorithm)
	}
	switch job.Preset {
	case "", "ising", "h2", "two-level":
	default:
		return fmt.Errorf("config: unknown preset %q (want ising, h2, or two-level)", job.Preset)
	}
	switch job.Optimizer {
	case "mayfly", "nelder-mead", "l-bfgs":
	default:
		return fmt.Errorf("config: unknown optimizer %q (want mayfly, nelder-mead, or l-bfgs)", job.Optimizer)
	}
	switch job.Gradient {
	case "", "finite-difference", "parameter-shift":
	default:
		return fmt.Errorf("config: unknown gradient strategy %q (want finite-difference or parameter-shift)", job.Gradient)
	}
	if job.Algorithm == "vqd" && job.Eigenpairs < 1 {
		return fmt.Errorf("config: vqd needs at least 1 eigenpair, got %d", job.Eigenpairs)
	}
	if job.Beta < 0 {
		return fmt.Errorf("config: beta must be non-negative, got %v", job.Beta)
	}
	return nil
}
