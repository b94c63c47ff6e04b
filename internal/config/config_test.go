package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qbitwise/varqe/internal/sim"
	"github.com/qbitwise/varqe/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
job:
  algorithm: qaoa
  preset: ising
  qubits: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr default = %q", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging defaults = %+v", cfg.Logging)
	}
	if cfg.Job.Algorithm != "qaoa" {
		t.Errorf("Explicit algorithm overridden: %q", cfg.Job.Algorithm)
	}
	if cfg.Job.Optimizer != "mayfly" || cfg.Job.Seed != 42 || cfg.Job.MaxIters != 200 {
		t.Errorf("Job defaults not applied: %+v", cfg.Job)
	}
}

func TestLoadRejectsInvalidJob(t *testing.T) {
	path := writeConfig(t, `
job:
  algorithm: annealing
`)
	if _, err := Load(path); err == nil {
		t.Error("Expected an error for an unknown algorithm")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestValidateJob(t *testing.T) {
	valid := store.RunConfig{Algorithm: "vqe", Preset: "ising", Optimizer: "mayfly", Eigenpairs: 1}
	if err := ValidateJob(&valid); err != nil {
		t.Errorf("Valid job rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*store.RunConfig)
	}{
		{"bad algorithm", func(j *store.RunConfig) { j.Algorithm = "sa" }},
		{"bad preset", func(j *store.RunConfig) { j.Preset = "heisenberg" }},
		{"bad optimizer", func(j *store.RunConfig) { j.Optimizer = "adam" }},
		{"bad gradient", func(j *store.RunConfig) { j.Gradient = "spsa" }},
		{"negative beta", func(j *store.RunConfig) { j.Beta = -1 }},
		{"vqd without eigenpairs", func(j *store.RunConfig) { j.Algorithm = "vqd"; j.Eigenpairs = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := valid
			tc.mutate(&job)
			if err := ValidateJob(&job); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestBuildOperatorPresets(t *testing.T) {
	cases := []struct {
		job    store.RunConfig
		qubits int
	}{
		{store.RunConfig{Preset: "two-level"}, 1},
		{store.RunConfig{Preset: "h2"}, 2},
		{store.RunConfig{Preset: "ising", Qubits: 3, Field: 1}, 3},
		{store.RunConfig{Qubits: 1, Terms: []sim.Term{{Coefficient: 1, Paulis: "Z"}}}, 1},
	}
	for _, tc := range cases {
		op, err := BuildOperator(&tc.job)
		if err != nil {
			t.Fatalf("BuildOperator(%+v) failed: %v", tc.job, err)
		}
		if op.Qubits() != tc.qubits {
			t.Errorf("Qubits = %d, want %d", op.Qubits(), tc.qubits)
		}
	}

	if _, err := BuildOperator(&store.RunConfig{Preset: "bogus"}); err == nil {
		t.Error("Expected an error for an unknown preset")
	}
}

func TestBuildOptimizer(t *testing.T) {
	for _, name := range []string{"mayfly", "nelder-mead", "l-bfgs"} {
		opt, err := BuildOptimizer(&store.RunConfig{Optimizer: name, MaxIters: 10, PopSize: 5})
		if err != nil {
			t.Fatalf("BuildOptimizer(%s) failed: %v", name, err)
		}
		if opt.Name() != name {
			t.Errorf("Name = %q, want %q", opt.Name(), name)
		}
	}

	if _, err := BuildOptimizer(&store.RunConfig{Optimizer: "adam"}); err == nil {
		t.Error("Expected an error for an unknown optimizer")
	}
}

func TestBuildGradient(t *testing.T) {
	if g := BuildGradient(&store.RunConfig{}); g != nil {
		t.Error("No gradient configured should mean nil strategy")
	}
	if g := BuildGradient(&store.RunConfig{Gradient: "finite-difference"}); g == nil {
		t.Error("finite-difference should build a strategy")
	}
	if g := BuildGradient(&store.RunConfig{Gradient: "parameter-shift"}); g == nil {
		t.Error("parameter-shift should build a strategy")
	}
}
