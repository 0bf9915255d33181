package evaluate

import (
	"time"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// StreamManager hands out the per-scenario random stream. With CRN enabled,
// the stream depends only on the base seed and the 1-based scenario index, so
// scenario i sees identical draws no matter which policy is being evaluated
// or which thread asks. Disabled, every call returns a fresh
// non-reproducible generator.
type StreamManager struct {
	cfg models.CRNConfig
}

// NewStreamManager creates a stream manager for the given CRN configuration
func NewStreamManager(cfg models.CRNConfig) *StreamManager {
	return &StreamManager{cfg: cfg}
}

// Enabled reports whether common random numbers are in effect
func (m *StreamManager) Enabled() bool {
	return m.cfg.Enabled
}

// Stream returns the random source for the given 1-based scenario index.
// Pure when CRN is enabled: two calls with the same index yield generators
// producing identical sequences.
func (m *StreamManager) Stream(scenarioIndex int) *utils.RandSource {
	return utils.NewRandSource(m.Seed(scenarioIndex))
}

// Seed returns the seed behind Stream, so remote workers can reconstruct the
// identical generator on the far side of a serialization boundary.
func (m *StreamManager) Seed(scenarioIndex int) int64 {
	if !m.cfg.Enabled {
		return time.Now().UnixNano()
	}
	return utils.DeriveSeed(m.cfg.BaseSeed, scenarioIndex)
}
