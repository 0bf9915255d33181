package config

import (
	"fmt"
	"os"
)

// LoadExperiment loads and parses an experiment file
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file %s: %w", path, err)
	}
	exp, err := ParseExperimentYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse experiment file %s: %w", path, err)
	}
	return exp, nil
}

// validateExperiment performs validation on the experiment configuration
func validateExperiment(exp *Experiment) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[exp.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", exp.LogLevel)
	}

	if err := validateModel(&exp.Model); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}

	if exp.Explore == nil && exp.Optimize == nil {
		return fmt.Errorf("at least one of explore or optimize must be configured")
	}
	if exp.Explore != nil {
		if err := validateExplore(exp.Explore); err != nil {
			return fmt.Errorf("explore validation failed: %w", err)
		}
	}
	if exp.Optimize != nil {
		if err := validateOptimize(exp.Optimize); err != nil {
			return fmt.Errorf("optimize validation failed: %w", err)
		}
	}

	return nil
}

func validateModel(m *Model) error {
	if m.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if m.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", m.Horizon)
	}
	if m.Scenarios <= 0 {
		return fmt.Errorf("scenarios must be positive, got %d", m.Scenarios)
	}
	return nil
}

func validateExplore(e *Explore) error {
	switch e.Strategy {
	case "sequential", "threaded":
	case "distributed":
		if len(e.WorkerAddrs) == 0 {
			return fmt.Errorf("distributed strategy requires worker_addrs")
		}
	default:
		return fmt.Errorf("invalid strategy: %s (must be sequential, threaded, or distributed)", e.Strategy)
	}

	if len(e.Policies) == 0 {
		return fmt.Errorf("at least one policy must be defined")
	}
	for i, p := range e.Policies {
		if len(p) == 0 {
			return fmt.Errorf("policy %d has an empty parameter vector", i+1)
		}
	}
	if e.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	return nil
}

func validateOptimize(o *Optimize) error {
	if o.MaxEvaluations < 0 {
		return fmt.Errorf("max_evaluations cannot be negative")
	}
	if o.Population < 0 {
		return fmt.Errorf("population cannot be negative")
	}
	if o.InitStepSize < 0 {
		return fmt.Errorf("init_step_size cannot be negative")
	}
	for i, w := range o.Weights {
		if w < 0 {
			return fmt.Errorf("weight %d cannot be negative", i+1)
		}
	}
	if o.Batch != nil {
		if err := validateBatch(o.Batch); err != nil {
			return fmt.Errorf("batch validation failed: %w", err)
		}
	}
	return nil
}

func validateBatch(b *Batch) error {
	switch b.Kind {
	case "full":
	case "fixed":
		if b.N <= 0 {
			return fmt.Errorf("fixed batch requires a positive n, got %d", b.N)
		}
	case "fraction":
		if b.Fraction <= 0 || b.Fraction > 1 {
			return fmt.Errorf("fraction must be in (0, 1], got %v", b.Fraction)
		}
	default:
		return fmt.Errorf("invalid kind: %s (must be full, fixed, or fraction)", b.Kind)
	}
	return nil
}
