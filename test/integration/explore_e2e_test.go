//go:build integration
// +build integration

package integration_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/demo"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/distrib"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/evaluate"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/explore"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/export"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/store"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/config"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

const exploreExperimentYAML = `
log_level: error
crn:
  enabled: true
  base_seed: 42
model:
  name: accumulator
  horizon: 8
  scenarios: 6
  scenario_seed: 11
explore:
  strategy: sequential
  policies:
    - [1.0]
    - [3.5]
    - [7.0]
`

func buildGrid(t *testing.T, exp *config.Experiment) *explore.Grid {
	t.Helper()
	prototype := demo.Policy{}
	policies := make([]sim.Policy, len(exp.Explore.Policies))
	for i, v := range exp.Explore.Policies {
		p, err := prototype.WithParams(v)
		if err != nil {
			t.Fatalf("policy %d: %v", i+1, err)
		}
		policies[i] = p
	}
	return &explore.Grid{
		Config:    demo.Config{Horizon: exp.Model.Horizon},
		Scenarios: demo.GenerateScenarios(exp.Model.Scenarios, exp.Model.ScenarioSeed),
		Policies:  policies,
		Streams: evaluate.NewStreamManager(models.CRNConfig{
			Enabled:  exp.CRN.Enabled,
			BaseSeed: exp.CRN.BaseSeed,
		}),
	}
}

func runGrid(t *testing.T, exec explore.Executor, grid *explore.Grid) map[[2]int]map[string]float64 {
	t.Helper()
	var mu sync.Mutex
	results := make(map[[2]int]map[string]float64)
	err := exec.RunGrid(grid, func(p, s int, outcome sim.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		results[[2]int{p, s}] = outcome.(map[string]float64)
	})
	if err != nil {
		t.Fatalf("%s: %v", exec.Name(), err)
	}
	return results
}

func startWorkers(t *testing.T, grid *explore.Grid, modelName string, n int) *distrib.Pool {
	t.Helper()
	registry := distrib.NewRegistry()
	err := registry.Register(modelName, &distrib.Model{
		Config:    grid.Config,
		Scenarios: grid.Scenarios,
		Prototype: demo.Policy{},
	})
	if err != nil {
		t.Fatalf("register model: %v", err)
	}

	conns := make([]*grpc.ClientConn, n)
	for i := range conns {
		lis := bufconn.Listen(1024 * 1024)
		server := grpc.NewServer()
		distrib.RegisterWorkerServer(server, distrib.NewWorker(registry, nil))
		go func() {
			_ = server.Serve(lis)
		}()
		t.Cleanup(server.Stop)

		conn, err := grpc.NewClient("passthrough:///bufnet",
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}))
		if err != nil {
			t.Fatalf("dial bufconn: %v", err)
		}
		t.Cleanup(func() { _ = conn.Close() })
		conns[i] = conn
	}
	return distrib.NewPoolWithConns(conns...)
}

// TestE2E_StrategyEquivalence verifies that all three execution strategies
// produce identical result sets under common random numbers.
func TestE2E_StrategyEquivalence(t *testing.T) {
	exp, err := config.ParseExperimentYAMLString(exploreExperimentYAML)
	if err != nil {
		t.Fatalf("parse experiment: %v", err)
	}

	sequential := runGrid(t, explore.SequentialExecutor{}, buildGrid(t, exp))
	threaded := runGrid(t, &explore.ThreadedExecutor{Workers: 4}, buildGrid(t, exp))

	distGrid := buildGrid(t, exp)
	pool := startWorkers(t, distGrid, exp.Model.Name, 2)
	distributed := runGrid(t, &explore.DistributedExecutor{Pool: pool, Model: exp.Model.Name}, distGrid)

	wantCells := len(exp.Explore.Policies) * exp.Model.Scenarios
	for name, got := range map[string]map[[2]int]map[string]float64{
		"threaded":    threaded,
		"distributed": distributed,
	} {
		if len(got) != wantCells {
			t.Fatalf("%s: expected %d cells, got %d", name, wantCells, len(got))
		}
		for cell, want := range sequential {
			if got[cell]["final_value"] != want["final_value"] {
				t.Errorf("%s: cell %v final_value %v, sequential %v",
					name, cell, got[cell]["final_value"], want["final_value"])
			}
		}
	}
}

// TestE2E_ExploreExportAndPersist runs a grid and round-trips the results
// through the CSV exporter and the SQLite store.
func TestE2E_ExploreExportAndPersist(t *testing.T) {
	exp, err := config.ParseExperimentYAMLString(exploreExperimentYAML)
	if err != nil {
		t.Fatalf("parse experiment: %v", err)
	}
	grid := buildGrid(t, exp)

	dir := t.TempDir()
	output, err := export.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("create output manager: %v", err)
	}
	db, err := store.NewStore(filepath.Join(dir, "experiments.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()

	rec, err := db.CreateExperiment(exp.Model.Name, "explore", exploreExperimentYAML)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}

	var cells []store.CellRecord
	err = explore.SequentialExecutor{}.RunGrid(grid, func(p, s int, outcome sim.Outcome) {
		cells = append(cells, store.CellRecord{PolicyIndex: p, ScenarioIndex: s, Outcome: outcome})
		if err := output.WriteCell(p, s, outcome); err != nil {
			t.Errorf("write cell (%d, %d): %v", p, s, err)
		}
	})
	if err != nil {
		t.Fatalf("run grid: %v", err)
	}
	if err := output.Close(); err != nil {
		t.Fatalf("close output: %v", err)
	}
	if err := db.SaveCells(rec.ID, cells); err != nil {
		t.Fatalf("save cells: %v", err)
	}

	csv, err := os.ReadFile(filepath.Join(dir, "cells.csv"))
	if err != nil {
		t.Fatalf("read cells.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	// header + 2 metrics per cell
	if want := 1 + 2*grid.Cells(); len(lines) != want {
		t.Errorf("expected %d CSV lines, got %d", want, len(lines))
	}

	loaded, err := db.LoadCells(rec.ID)
	if err != nil {
		t.Fatalf("load cells: %v", err)
	}
	if len(loaded) != grid.Cells() {
		t.Fatalf("expected %d persisted cells, got %d", grid.Cells(), len(loaded))
	}
	first := loaded[0].Outcome.(map[string]float64)
	want := cells[0].Outcome.(map[string]float64)
	if first["final_value"] != want["final_value"] {
		t.Errorf("persisted outcome drifted: %v vs %v", first, want)
	}
}
