// Package store persists experiments, exploration cells, and search results
// in SQLite. The engine never depends on it; callers wire it in as an
// outcome-callback collaborator.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	experiment_id TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	kind          TEXT NOT NULL,
	config_yaml   TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cells (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment_id  TEXT NOT NULL,
	policy_index   INTEGER NOT NULL,
	scenario_index INTEGER NOT NULL,
	outcome_json   TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(experiment_id)
);

CREATE TABLE IF NOT EXISTS search_results (
	experiment_id      TEXT PRIMARY KEY,
	iterations         INTEGER NOT NULL,
	evaluations        INTEGER NOT NULL,
	converged          INTEGER NOT NULL,
	termination_reason TEXT,
	created_at         TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(experiment_id)
);

CREATE TABLE IF NOT EXISTS frontier_points (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment_id   TEXT NOT NULL,
	params_json     TEXT NOT NULL,
	objectives_json TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(experiment_id)
);
`

// Store persists experiment data in SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// ExperimentRecord is one persisted experiment
type ExperimentRecord struct {
	ID         string
	Name       string
	Kind       string
	ConfigYAML string
	CreatedAt  time.Time
}

// CellRecord is one persisted grid cell outcome. Indices are 1-based.
type CellRecord struct {
	PolicyIndex   int
	ScenarioIndex int
	Outcome       sim.Outcome
}

// CreateExperiment registers a new experiment and returns its record
func (s *Store) CreateExperiment(name, kind, configYAML string) (ExperimentRecord, error) {
	rec := ExperimentRecord{
		ID:         utils.GenerateExperimentID(),
		Name:       name,
		Kind:       kind,
		ConfigYAML: configYAML,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO experiments (experiment_id, name, kind, config_yaml, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Kind, rec.ConfigYAML, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return ExperimentRecord{}, fmt.Errorf("insert experiment: %w", err)
	}
	return rec, nil
}

// ListExperiments returns all experiments, newest first
func (s *Store) ListExperiments() ([]ExperimentRecord, error) {
	rows, err := s.db.Query(
		`SELECT experiment_id, name, kind, config_yaml, created_at
		 FROM experiments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query experiments: %w", err)
	}
	defer rows.Close()

	var records []ExperimentRecord
	for rows.Next() {
		var rec ExperimentRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Kind, &rec.ConfigYAML, &createdAt); err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveCell persists one grid cell outcome. The outcome must be JSON-encodable.
func (s *Store) SaveCell(experimentID string, policyIndex, scenarioIndex int, outcome sim.Outcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO cells (experiment_id, policy_index, scenario_index, outcome_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		experimentID, policyIndex, scenarioIndex, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert cell: %w", err)
	}
	return nil
}

// SaveCells persists a batch of cells in one transaction
func (s *Store) SaveCells(experimentID string, cells []CellRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	stmt, err := tx.Prepare(
		`INSERT INTO cells (experiment_id, policy_index, scenario_index, outcome_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cells {
		raw, err := json.Marshal(c.Outcome)
		if err != nil {
			return fmt.Errorf("marshal outcome (%d, %d): %w", c.PolicyIndex, c.ScenarioIndex, err)
		}
		if _, err := stmt.Exec(experimentID, c.PolicyIndex, c.ScenarioIndex, string(raw), now); err != nil {
			return fmt.Errorf("insert cell (%d, %d): %w", c.PolicyIndex, c.ScenarioIndex, err)
		}
	}
	return tx.Commit()
}

// LoadCells returns every cell of an experiment in insertion order. Numeric
// outcome maps come back as map[string]float64.
func (s *Store) LoadCells(experimentID string) ([]CellRecord, error) {
	rows, err := s.db.Query(
		`SELECT policy_index, scenario_index, outcome_json
		 FROM cells WHERE experiment_id = ? ORDER BY id`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	var cells []CellRecord
	for rows.Next() {
		var c CellRecord
		var raw string
		if err := rows.Scan(&c.PolicyIndex, &c.ScenarioIndex, &raw); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		var generic any
		if err := json.Unmarshal([]byte(raw), &generic); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
		c.Outcome = normalizeOutcome(generic)
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// SaveResult persists a search result and its frontier in one transaction
func (s *Store) SaveResult(experimentID string, result *models.OptimizationResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	converged := 0
	if result.Converged {
		converged = 1
	}
	_, err = tx.Exec(
		`INSERT INTO search_results (experiment_id, iterations, evaluations, converged, termination_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		experimentID, result.Iterations, result.Evaluations, converged,
		result.TerminationReason, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	for _, p := range result.Frontier {
		params, err := json.Marshal(p.Params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		objectives, err := json.Marshal(p.Objectives)
		if err != nil {
			return fmt.Errorf("marshal objectives: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO frontier_points (experiment_id, params_json, objectives_json)
			 VALUES (?, ?, ?)`,
			experimentID, string(params), string(objectives),
		)
		if err != nil {
			return fmt.Errorf("insert frontier point: %w", err)
		}
	}
	return tx.Commit()
}

// LoadResult returns the persisted search result of an experiment
func (s *Store) LoadResult(experimentID string) (*models.OptimizationResult, error) {
	result := &models.OptimizationResult{}
	var converged int
	err := s.db.QueryRow(
		`SELECT iterations, evaluations, converged, termination_reason
		 FROM search_results WHERE experiment_id = ?`, experimentID).
		Scan(&result.Iterations, &result.Evaluations, &converged, &result.TerminationReason)
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}
	result.Converged = converged != 0

	rows, err := s.db.Query(
		`SELECT params_json, objectives_json
		 FROM frontier_points WHERE experiment_id = ? ORDER BY id`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("query frontier: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var paramsRaw, objectivesRaw string
		if err := rows.Scan(&paramsRaw, &objectivesRaw); err != nil {
			return nil, fmt.Errorf("scan frontier point: %w", err)
		}
		var p models.ParetoPoint
		if err := json.Unmarshal([]byte(paramsRaw), &p.Params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		if err := json.Unmarshal([]byte(objectivesRaw), &p.Objectives); err != nil {
			return nil, fmt.Errorf("decode objectives: %w", err)
		}
		result.Frontier = append(result.Frontier, p)
	}
	return result, rows.Err()
}

// normalizeOutcome converts all-numeric maps to map[string]float64
func normalizeOutcome(v any) sim.Outcome {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	numeric := make(map[string]float64, len(m))
	for k, val := range m {
		f, ok := val.(float64)
		if !ok {
			return v
		}
		numeric[k] = f
	}
	return numeric
}
