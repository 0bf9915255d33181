package config

import (
	"strings"
	"testing"
)

const validExperimentYAML = `
log_level: info
output_dir: results
crn:
  enabled: true
  base_seed: 42
model:
  name: accumulator
  horizon: 10
  scenarios: 20
  scenario_seed: 7
explore:
  strategy: threaded
  workers: 4
  policies:
    - [1.0]
    - [2.5]
    - [5.0]
optimize:
  max_evaluations: 100
  weights: [1.0, 0.5]
  batch:
    kind: fixed
    n: 8
`

func TestParseValidExperiment(t *testing.T) {
	exp, err := ParseExperimentYAMLString(validExperimentYAML)
	if err != nil {
		t.Fatalf("failed to parse valid experiment: %v", err)
	}

	if exp.LogLevel != "info" {
		t.Errorf("expected log_level info, got %s", exp.LogLevel)
	}
	if !exp.CRN.Enabled || exp.CRN.BaseSeed != 42 {
		t.Errorf("crn section mangled: %+v", exp.CRN)
	}
	if exp.Model.Name != "accumulator" || exp.Model.Horizon != 10 || exp.Model.Scenarios != 20 {
		t.Errorf("model section mangled: %+v", exp.Model)
	}
	if exp.Explore.Strategy != "threaded" || exp.Explore.Workers != 4 {
		t.Errorf("explore section mangled: %+v", exp.Explore)
	}
	if len(exp.Explore.Policies) != 3 || exp.Explore.Policies[1][0] != 2.5 {
		t.Errorf("policies mangled: %v", exp.Explore.Policies)
	}
	if exp.Optimize.MaxEvaluations != 100 || exp.Optimize.Batch.Kind != "fixed" || exp.Optimize.Batch.N != 8 {
		t.Errorf("optimize section mangled: %+v", exp.Optimize)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	exp, err := ParseExperimentYAMLString(`
model:
  name: accumulator
  horizon: 5
  scenarios: 3
explore:
  policies: [[1.0]]
`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if exp.LogLevel != "info" {
		t.Errorf("expected default log_level info, got %s", exp.LogLevel)
	}
	if exp.Explore.Strategy != "sequential" {
		t.Errorf("expected default strategy sequential, got %s", exp.Explore.Strategy)
	}
}

func TestParseRejectsInvalidExperiments(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "model: [",
			wantErr: "parse experiment yaml",
		},
		{
			name: "bad log level",
			yaml: `
log_level: verbose
model: {name: m, horizon: 5, scenarios: 3}
explore: {policies: [[1.0]]}
`,
			wantErr: "invalid log_level",
		},
		{
			name: "missing model name",
			yaml: `
model: {horizon: 5, scenarios: 3}
explore: {policies: [[1.0]]}
`,
			wantErr: "model name cannot be empty",
		},
		{
			name: "non-positive horizon",
			yaml: `
model: {name: m, horizon: 0, scenarios: 3}
explore: {policies: [[1.0]]}
`,
			wantErr: "horizon must be positive",
		},
		{
			name: "no mode configured",
			yaml: `
model: {name: m, horizon: 5, scenarios: 3}
`,
			wantErr: "at least one of explore or optimize",
		},
		{
			name: "bad strategy",
			yaml: `
model: {name: m, horizon: 5, scenarios: 3}
explore: {strategy: turbo, policies: [[1.0]]}
`,
			wantErr: "invalid strategy",
		},
		{
			name: "distributed without workers",
			yaml: `
model: {name: m, horizon: 5, scenarios: 3}
explore: {strategy: distributed, policies: [[1.0]]}
`,
			wantErr: "requires worker_addrs",
		},
		{
			name: "empty policy vector",
			yaml: `
model: {name: m, horizon: 5, scenarios: 3}
explore: {policies: [[]]}
`,
			wantErr: "empty parameter vector",
		},
		{
			name: "bad batch kind",
			yaml: `
model: {name: m, horizon: 5, scenarios: 3}
optimize: {batch: {kind: half}}
`,
			wantErr: "invalid kind",
		},
		{
			name: "bad fraction",
			yaml: `
model: {name: m, horizon: 5, scenarios: 3}
optimize: {batch: {kind: fraction, fraction: 1.5}}
`,
			wantErr: "fraction must be in",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExperimentYAMLString(tc.yaml)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}
