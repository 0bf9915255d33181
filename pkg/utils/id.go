package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateExperimentID generates a unique experiment identifier
func GenerateExperimentID() string {
	return uuid.NewString()
}

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("run-%s-%s", timestamp, uuid.NewString()[:8])
}
