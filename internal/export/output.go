// Package export writes experiment results to disk as CSV plus a YAML echo
// of the experiment configuration.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// CellRow is one metric of one grid cell in long format
type CellRow struct {
	PolicyIndex   int     `csv:"policy_index"`
	ScenarioIndex int     `csv:"scenario_index"`
	Metric        string  `csv:"metric"`
	Value         float64 `csv:"value"`
}

// FrontierRow is one component of one frontier point in long format.
// Kind is "param" or "objective"; Index is the component position.
type FrontierRow struct {
	Point int     `csv:"point"`
	Kind  string  `csv:"kind"`
	Index int     `csv:"index"`
	Value float64 `csv:"value"`
}

// SummaryRow is the one-line search result summary
type SummaryRow struct {
	Iterations        int    `csv:"iterations"`
	Evaluations       int    `csv:"evaluations"`
	Converged         bool   `csv:"converged"`
	TerminationReason string `csv:"termination_reason"`
}

// OutputManager handles structured experiment output with CSV logging
type OutputManager struct {
	dir          string
	cellFile     *os.File
	frontierFile *os.File

	cellHeaderWritten     bool
	frontierHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "cells.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating cells.csv: %w", err)
	}
	om.cellFile = f

	f, err = os.Create(filepath.Join(dir, "frontier.csv"))
	if err != nil {
		om.cellFile.Close()
		return nil, fmt.Errorf("creating frontier.csv: %w", err)
	}
	om.frontierFile = f

	return om, nil
}

// Close closes the underlying files
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{om.cellFile, om.frontierFile} {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteConfig saves the experiment configuration as YAML
func (om *OutputManager) WriteConfig(cfg any) error {
	if om == nil {
		return nil
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(om.dir, "config.yaml"), raw, 0644)
}

// WriteCell appends one grid cell to cells.csv, one row per metric in sorted
// key order. The outcome must be a numeric map.
func (om *OutputManager) WriteCell(policyIndex, scenarioIndex int, outcome sim.Outcome) error {
	if om == nil {
		return nil
	}
	values, ok := outcome.(map[string]float64)
	if !ok {
		return fmt.Errorf("cell (%d, %d): outcome %T is not a numeric map", policyIndex, scenarioIndex, outcome)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]CellRow, len(keys))
	for i, k := range keys {
		rows[i] = CellRow{
			PolicyIndex:   policyIndex,
			ScenarioIndex: scenarioIndex,
			Metric:        k,
			Value:         values[k],
		}
	}

	if !om.cellHeaderWritten {
		if err := gocsv.Marshal(rows, om.cellFile); err != nil {
			return fmt.Errorf("writing cells: %w", err)
		}
		om.cellHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, om.cellFile); err != nil {
		return fmt.Errorf("writing cells: %w", err)
	}
	return nil
}

// WriteFrontier appends frontier points to frontier.csv in long format
func (om *OutputManager) WriteFrontier(points []models.ParetoPoint) error {
	if om == nil {
		return nil
	}
	var rows []FrontierRow
	for i, p := range points {
		for j, v := range p.Params {
			rows = append(rows, FrontierRow{Point: i + 1, Kind: "param", Index: j + 1, Value: v})
		}
		for j, v := range p.Objectives {
			rows = append(rows, FrontierRow{Point: i + 1, Kind: "objective", Index: j + 1, Value: v})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	if !om.frontierHeaderWritten {
		if err := gocsv.Marshal(rows, om.frontierFile); err != nil {
			return fmt.Errorf("writing frontier: %w", err)
		}
		om.frontierHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, om.frontierFile); err != nil {
		return fmt.Errorf("writing frontier: %w", err)
	}
	return nil
}

// WriteSummary saves the one-line search result summary to summary.csv
func (om *OutputManager) WriteSummary(result *models.OptimizationResult) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "summary.csv"))
	if err != nil {
		return fmt.Errorf("creating summary.csv: %w", err)
	}
	defer f.Close()

	rows := []SummaryRow{{
		Iterations:        result.Iterations,
		Evaluations:       result.Evaluations,
		Converged:         result.Converged,
		TerminationReason: result.TerminationReason,
	}}
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
