package utils

import (
	"strings"
	"testing"
)

func TestGenerateExperimentIDUnique(t *testing.T) {
	a := GenerateExperimentID()
	b := GenerateExperimentID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}

func TestGenerateRunIDFormat(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "run-") {
		t.Fatalf("expected run- prefix, got %q", id)
	}
	if GenerateRunID() == id {
		t.Fatalf("expected distinct run IDs")
	}
}
