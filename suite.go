package sqlbench

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Environment supplies a running, reachable database and its connection
// handle. The suite starts and stops it, but the lifecycle implementation
// (container, external server) lives with the caller's chosen provisioner.
type Environment interface {
	Start(ctx context.Context) (*sql.DB, error)
	Stop(ctx context.Context) error
}

// Generator populates the environment with a parameterized volume of
// synthetic rows before measurement begins. Populate must be safe to call
// again for the next parameter set.
type Generator interface {
	Populate(ctx context.Context, db *sql.DB, persons, records int) error
}

// SuiteConfig describes one full benchmark invocation.
type SuiteConfig struct {
	Warmup     int
	Measured   int
	Timeout    time.Duration
	Sequential bool
	ParamSets  []Params
}

// ParamReport pairs a comparison with the dataset shape it ran under.
type ParamReport struct {
	Params Params
	Report ComparisonReport
}

// RunOutput carries both presentation forms of the same results: the
// per-parameter-set reports for the text summary and the JSON artifact.
type RunOutput struct {
	Artifact *Artifact
	Reports  []ParamReport
}

// Suite sequences the whole pipeline explicitly: provision, generate,
// execute, aggregate, compare. Nothing here depends on a test framework
// driving the order.
type Suite struct {
	env      Environment
	gen      Generator
	registry *Registry
	log      logrus.FieldLogger
}

func NewSuite(env Environment, gen Generator, registry *Registry, log logrus.FieldLogger) *Suite {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Suite{env: env, gen: gen, registry: registry, log: log}
}

// Run drives one benchmark invocation. Provisioning and generation errors
// abort; per-variant failures flow through the measurements into the
// report. On cancellation Run returns the output built so far along with
// the context error.
func (s *Suite) Run(ctx context.Context, cfg SuiteConfig) (*RunOutput, error) {
	db, err := s.env.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}

	defer func() {
		// the container should go away even when the run was interrupted
		if err := s.env.Stop(context.Background()); err != nil {
			s.log.WithError(err).Warn("environment stop failed")
		}
	}()

	engine := NewEngine(db, s.log)
	variants := s.registry.List()
	output := &RunOutput{Artifact: NewArtifact()}

	for _, p := range cfg.ParamSets {
		s.log.WithFields(logrus.Fields{
			"persons": p.Persons,
			"records": p.Records,
		}).Info("populating dataset")

		// the loader may fan out over several connections
		db.SetMaxOpenConns(0)

		if err := s.gen.Populate(ctx, db, p.Persons, p.Records); err != nil {
			return output, fmt.Errorf("generate: %w", err)
		}

		// every measured iteration must reuse the same connection, so the
		// pool is clamped to one before the engine starts
		db.SetMaxOpenConns(1)

		s.log.WithFields(logrus.Fields{
			"variants": len(variants),
			"warmup":   cfg.Warmup,
			"measured": cfg.Measured,
		}).Info("running benchmark")

		byVariant, runErr := s.runVariants(ctx, engine, variants, cfg)

		results := make([]AggregateResult, 0, len(variants))
		for _, v := range variants {
			results = append(results, Aggregate(v.ID, byVariant[v.ID]))
		}

		report := Compare(results)

		output.Reports = append(output.Reports, ParamReport{Params: p, Report: report})
		output.Artifact.Append(report, p, variants)

		if runErr != nil {
			return output, runErr
		}
	}

	return output, nil
}

func (s *Suite) runVariants(ctx context.Context, engine *Engine, variants []QueryVariant, cfg SuiteConfig) (map[string][]Measurement, error) {
	if !cfg.Sequential {
		return engine.RunInterleaved(ctx, variants, cfg.Warmup, cfg.Measured, cfg.Timeout)
	}

	byVariant := make(map[string][]Measurement, len(variants))

	for _, v := range variants {
		measurements, err := engine.Run(ctx, v, cfg.Warmup, cfg.Measured, cfg.Timeout)
		byVariant[v.ID] = measurements

		if err != nil {
			return byVariant, err
		}
	}

	return byVariant, nil
}
