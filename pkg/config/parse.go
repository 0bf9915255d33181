package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseExperimentYAML parses an Experiment from YAML bytes and validates it.
// This is used for APIs where the experiment is provided as payload (not via
// the filesystem).
func ParseExperimentYAML(data []byte) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse experiment yaml: %w", err)
	}

	applyDefaults(&exp)
	if err := validateExperiment(&exp); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}

	return &exp, nil
}

// ParseExperimentYAMLString parses an Experiment from a YAML string and validates it.
func ParseExperimentYAMLString(yamlText string) (*Experiment, error) {
	return ParseExperimentYAML([]byte(yamlText))
}

func applyDefaults(exp *Experiment) {
	if exp.LogLevel == "" {
		exp.LogLevel = "info"
	}
	if exp.Explore != nil && exp.Explore.Strategy == "" {
		exp.Explore.Strategy = "sequential"
	}
}
