package distrib

import (
	"fmt"
	"sync"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
)

// Model is everything a worker needs to run grid cells for one problem:
// the immutable config, the scenario set, and a policy prototype that
// reconstructs concrete policies from parameter vectors.
type Model struct {
	Config    sim.Config
	Scenarios []sim.Scenario
	Prototype sim.VectorPolicy
}

// Registry maps model names to models. Coordinator and workers must register
// the same models under the same names; only names, indices, parameter
// vectors, and seeds cross the wire.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates an empty model registry
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds a model under a name. Duplicate names are rejected.
func (r *Registry) Register(name string, model *Model) error {
	if name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if model == nil || model.Config == nil || model.Prototype == nil {
		return fmt.Errorf("model %q is incomplete", name)
	}
	if err := sim.ValidateScenarios(model.Scenarios); err != nil {
		return fmt.Errorf("model %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[name]; exists {
		return fmt.Errorf("model %q already registered", name)
	}
	r.models[name] = model
	return nil
}

// Lookup returns the model registered under name
func (r *Registry) Lookup(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}
