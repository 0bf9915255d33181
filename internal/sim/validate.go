package sim

import (
	"fmt"
	"reflect"
	"sync"
)

// Validator is an optional self-check hook on scenario and config types.
// Validate is called once per concrete type when a ValidationCache is used.
type Validator interface {
	Validate() error
}

// ValidationCache records which concrete types have already passed their
// Validate hook, so repeated evaluation calls do not re-run it. The cache is
// owned by the caller and passed through explicitly; the engine keeps no
// hidden global state.
type ValidationCache struct {
	mu   sync.Mutex
	seen map[reflect.Type]bool
}

// NewValidationCache creates an empty validation cache
func NewValidationCache() *ValidationCache {
	return &ValidationCache{seen: make(map[reflect.Type]bool)}
}

// isValidated reports whether t already passed its Validate hook
func (c *ValidationCache) isValidated(t reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[t]
}

// markValidated records t as having passed its Validate hook
func (c *ValidationCache) markValidated(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[t] = true
}

// ValidateScenarios checks that the scenario collection is non-empty and
// homogeneous: every element must share the concrete type of the first.
func ValidateScenarios(scenarios []Scenario) error {
	return ValidateScenariosCached(nil, scenarios)
}

// ValidateScenariosCached is ValidateScenarios with a caller-owned cache for
// the per-type Validate hook. The homogeneity scan itself always runs; only
// the self-check is skipped for types already seen.
func ValidateScenariosCached(cache *ValidationCache, scenarios []Scenario) error {
	if len(scenarios) == 0 {
		return &ValidationError{Field: "scenarios", Reason: "collection must not be empty"}
	}

	first := reflect.TypeOf(scenarios[0])
	for i, sc := range scenarios {
		if got := reflect.TypeOf(sc); got != first {
			return &ValidationError{
				Field:  "scenarios",
				Reason: fmt.Sprintf("element %d has type %v, expected %v (collections must be homogeneous)", i, got, first),
			}
		}
	}

	if cache != nil && cache.isValidated(first) {
		return nil
	}
	if v, ok := scenarios[0].(Validator); ok {
		if err := v.Validate(); err != nil {
			return &ValidationError{Field: "scenarios", Reason: fmt.Sprintf("type %v failed validation: %v", first, err)}
		}
	}
	if cache != nil {
		cache.markValidated(first)
	}
	return nil
}
