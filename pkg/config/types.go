package config

// Experiment represents the main experiment configuration
type Experiment struct {
	LogLevel  string `yaml:"log_level"`
	OutputDir string `yaml:"output_dir,omitempty"`
	Database  string `yaml:"database,omitempty"`

	CRN      CRN       `yaml:"crn"`
	Model    Model     `yaml:"model"`
	Explore  *Explore  `yaml:"explore,omitempty"`
	Optimize *Optimize `yaml:"optimize,omitempty"`
}

// CRN configures the common-random-numbers streams
type CRN struct {
	Enabled  bool  `yaml:"enabled"`
	BaseSeed int64 `yaml:"base_seed"`
}

// Model describes the simulated system and its scenario ensemble
type Model struct {
	Name         string `yaml:"name"`
	Horizon      int    `yaml:"horizon"`
	Scenarios    int    `yaml:"scenarios"`
	ScenarioSeed int64  `yaml:"scenario_seed"`
}

// Explore configures a policy-by-scenario grid run
type Explore struct {
	Strategy string `yaml:"strategy"` // sequential, threaded, or distributed
	Workers  int    `yaml:"workers,omitempty"`
	// Policies lists the parameter vectors spanning the grid
	Policies [][]float64 `yaml:"policies"`
	// WorkerAddrs are the worker endpoints for the distributed strategy
	WorkerAddrs []string `yaml:"worker_addrs,omitempty"`
}

// Optimize configures a frontier search
type Optimize struct {
	MaxEvaluations int       `yaml:"max_evaluations,omitempty"`
	Population     int       `yaml:"population,omitempty"`
	InitStepSize   float64   `yaml:"init_step_size,omitempty"`
	Weights        []float64 `yaml:"weights,omitempty"`
	SamplerSeed    int64     `yaml:"sampler_seed,omitempty"`
	Batch          *Batch    `yaml:"batch,omitempty"`
}

// Batch configures scenario subsampling per evaluation
type Batch struct {
	Kind     string  `yaml:"kind"` // full, fixed, or fraction
	N        int     `yaml:"n,omitempty"`
	Fraction float64 `yaml:"fraction,omitempty"`
}
