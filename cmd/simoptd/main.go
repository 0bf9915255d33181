// Command simoptd runs simulation-optimization experiments over the demo
// accumulator model: grid explorations, frontier searches, and the gRPC
// worker daemon backing the distributed strategy.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/demo"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/distrib"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/evaluate"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/explore"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/export"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/optimize"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/store"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/config"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/logger"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

func main() {
	var mode string
	var configPath string
	var listenAddr string
	var logLevel string

	flag.StringVar(&mode, "mode", "explore", "run mode (explore, optimize, worker)")
	flag.StringVar(&configPath, "config", "", "experiment YAML file")
	flag.StringVar(&listenAddr, "listen", ":50051", "worker listen address (worker mode)")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if configPath == "" {
		logger.Error("missing required flag", "flag", "-config")
		os.Exit(1)
	}

	exp, err := config.LoadExperiment(configPath)
	if err != nil {
		logger.Error("failed to load experiment", "path", configPath, "error", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = exp.LogLevel
	}
	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	switch mode {
	case "explore":
		err = runExplore(exp)
	case "optimize":
		err = runOptimize(exp)
	case "worker":
		err = runWorker(exp, listenAddr)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		logger.Error("run failed", "mode", mode, "error", err)
		os.Exit(1)
	}
}

// problemData builds the shared demo-model problem data from the experiment
func problemData(exp *config.Experiment) (demo.Config, []sim.Scenario, models.CRNConfig) {
	cfg := demo.Config{Horizon: exp.Model.Horizon}
	scenarios := demo.GenerateScenarios(exp.Model.Scenarios, exp.Model.ScenarioSeed)
	crn := models.CRNConfig{Enabled: exp.CRN.Enabled, BaseSeed: exp.CRN.BaseSeed}
	return cfg, scenarios, crn
}

func buildPolicies(vectors [][]float64) ([]sim.Policy, error) {
	prototype := demo.Policy{}
	policies := make([]sim.Policy, len(vectors))
	for i, v := range vectors {
		p, err := prototype.WithParams(v)
		if err != nil {
			return nil, fmt.Errorf("policy %d: %w", i+1, err)
		}
		policies[i] = p
	}
	return policies, nil
}

func buildExecutor(exp *config.Experiment) (explore.Executor, func(), error) {
	cleanup := func() {}
	switch exp.Explore.Strategy {
	case "sequential":
		return explore.SequentialExecutor{}, cleanup, nil
	case "threaded":
		return &explore.ThreadedExecutor{Workers: exp.Explore.Workers}, cleanup, nil
	case "distributed":
		pool, err := distrib.DialPool(exp.Explore.WorkerAddrs)
		if err != nil {
			return nil, cleanup, err
		}
		return &explore.DistributedExecutor{Pool: pool, Model: exp.Model.Name}, pool.Close, nil
	default:
		return nil, cleanup, fmt.Errorf("unknown strategy %q", exp.Explore.Strategy)
	}
}

func runExplore(exp *config.Experiment) error {
	if exp.Explore == nil {
		return fmt.Errorf("experiment has no explore section")
	}

	cfg, scenarios, crn := problemData(exp)
	policies, err := buildPolicies(exp.Explore.Policies)
	if err != nil {
		return err
	}

	executor, cleanup, err := buildExecutor(exp)
	if err != nil {
		return err
	}
	defer cleanup()

	output, err := export.NewOutputManager(exp.OutputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(exp); err != nil {
		return err
	}

	grid := &explore.Grid{
		Config:    cfg,
		Scenarios: scenarios,
		Policies:  policies,
		Streams:   evaluate.NewStreamManager(crn),
		Progress: func(done, total int) {
			if done == total || done%100 == 0 {
				logger.Info("exploration progress", "done", done, "total", total)
			}
		},
	}

	logger.Info("starting exploration",
		"strategy", executor.Name(),
		"policies", len(policies),
		"scenarios", len(scenarios),
		"cells", grid.Cells())

	var cells []store.CellRecord
	var exportErr error
	err = executor.RunGrid(grid, func(p, s int, outcome sim.Outcome) {
		cells = append(cells, store.CellRecord{PolicyIndex: p, ScenarioIndex: s, Outcome: outcome})
		if exportErr == nil {
			exportErr = output.WriteCell(p, s, outcome)
		}
	})
	if err != nil {
		return err
	}
	if exportErr != nil {
		return exportErr
	}

	if exp.Database != "" {
		if err := persistCells(exp, cells); err != nil {
			return err
		}
	}

	logger.Info("exploration finished", "cells", len(cells))
	return nil
}

func persistCells(exp *config.Experiment, cells []store.CellRecord) error {
	db, err := store.NewStore(exp.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.CreateExperiment(exp.Model.Name, "explore", configEcho(exp))
	if err != nil {
		return err
	}
	if err := db.SaveCells(rec.ID, cells); err != nil {
		return err
	}
	logger.Info("exploration persisted", "experiment_id", rec.ID, "database", exp.Database)
	return nil
}

func runOptimize(exp *config.Experiment) error {
	if exp.Optimize == nil {
		return fmt.Errorf("experiment has no optimize section")
	}

	cfg, scenarios, crn := problemData(exp)
	problem := &optimize.Problem{
		Config:     cfg,
		Scenarios:  scenarios,
		Prototype:  demo.Policy{},
		Metric:     demo.Metric(),
		Objectives: demo.Objectives(),
		CRN:        crn,
		Weights:    exp.Optimize.Weights,
		Batch:      batchSpec(exp.Optimize.Batch),
	}

	backend := &optimize.CMAESBackend{
		MaxEvaluations: exp.Optimize.MaxEvaluations,
		Population:     exp.Optimize.Population,
		InitStepSize:   exp.Optimize.InitStepSize,
		SamplerSeed:    exp.Optimize.SamplerSeed,
	}

	result, err := backend.Optimize(problem)
	if err != nil {
		return err
	}

	output, err := export.NewOutputManager(exp.OutputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(exp); err != nil {
		return err
	}
	if err := output.WriteFrontier(result.Frontier); err != nil {
		return err
	}
	if err := output.WriteSummary(result); err != nil {
		return err
	}

	if exp.Database != "" {
		db, err := store.NewStore(exp.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		rec, err := db.CreateExperiment(exp.Model.Name, "optimize", configEcho(exp))
		if err != nil {
			return err
		}
		if err := db.SaveResult(rec.ID, result); err != nil {
			return err
		}
		logger.Info("search persisted", "experiment_id", rec.ID, "database", exp.Database)
	}

	logger.Info("search finished",
		"frontier_size", len(result.Frontier),
		"evaluations", result.Evaluations,
		"converged", result.Converged,
		"reason", result.TerminationReason)
	return nil
}

func runWorker(exp *config.Experiment, listenAddr string) error {
	cfg, scenarios, _ := problemData(exp)

	registry := distrib.NewRegistry()
	err := registry.Register(exp.Model.Name, &distrib.Model{
		Config:    cfg,
		Scenarios: scenarios,
		Prototype: demo.Policy{},
	})
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := distrib.NewWorker(registry, logger.Default)
	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("worker shutting down")
		_ = lis.Close()
		<-errCh
		return nil
	}
}

// configEcho serializes the experiment for the persisted record
func configEcho(exp *config.Experiment) string {
	raw, err := yaml.Marshal(exp)
	if err != nil {
		return ""
	}
	return string(raw)
}

func batchSpec(b *config.Batch) evaluate.BatchSpec {
	if b == nil {
		return evaluate.FullBatch()
	}
	switch b.Kind {
	case "fixed":
		return evaluate.FixedBatch(b.N)
	case "fraction":
		return evaluate.FractionBatch(b.Fraction)
	default:
		return evaluate.FullBatch()
	}
}
