package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/config"
	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/logging"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/parser"
	"github.com/born-ml/gradgraph/internal/telemetry"
)

// session is a configured algorithm built from a run file.
type session struct {
	cfg     *config.Config
	alg     *autodiff.Algorithm
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

func loadSession(path string, logOut io.Writer, reg prometheus.Registerer) (*session, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging()
	logCfg.Output = logOut
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	s := &session{logger: logger, metrics: telemetry.NewMetrics(reg)}
	if err := s.rebuild(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// rebuild compiles the expression of cfg into a new graph.
func (s *session) rebuild(cfg *config.Config) error {
	var opts []graph.Option
	if cfg.Scalar {
		opts = append(opts, graph.WithScalar())
	}
	g, err := parser.Compile(cfg.Expression, ops.NewRegistry(), opts...)
	if err != nil {
		return err
	}

	inputs, seeds, err := matrices(cfg)
	if err != nil {
		return err
	}

	algOpts := []autodiff.Option{
		autodiff.WithLogger(s.logger),
		autodiff.WithObserver(s.metrics),
	}
	if cfg.SymbolicOnly {
		algOpts = append(algOpts, autodiff.WithSymbolicOnly())
	}

	s.metrics.SetGraph(g)
	s.cfg = cfg
	s.alg = autodiff.New(g, inputs, seeds, algOpts...)
	s.logger.Info("graph built", "nodes", g.Len(), "rules", len(g.Rules()), "run_id", s.alg.ID().String())
	return nil
}

// apply switches to cfg. When the graph is unchanged only the inputs are
// replaced and the graph is kept. It reports whether the graph was rebuilt.
func (s *session) apply(cfg *config.Config) (bool, error) {
	if !s.cfg.SameGraph(cfg) || s.cfg.SymbolicOnly != cfg.SymbolicOnly {
		return true, s.rebuild(cfg)
	}

	inputs, seeds, err := matrices(cfg)
	if err != nil {
		return false, err
	}
	s.cfg = cfg
	s.alg = s.alg.Update(inputs, seeds)
	s.logger.Info("inputs updated", "run_id", s.alg.ID().String())
	return false, nil
}

func matrices(cfg *config.Config) (inputs, seeds map[string]matrix.Matrix, err error) {
	if inputs, err = cfg.InputMatrices(); err != nil {
		return nil, nil, fmt.Errorf("inputs: %w", err)
	}
	if seeds, err = cfg.DerivativeMatrices(); err != nil {
		return nil, nil, fmt.Errorf("derivatives: %w", err)
	}
	return inputs, seeds, nil
}
