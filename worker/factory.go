package worker

import (
	"context"
	"fmt"

	"github.com/snow-ghost/jigsaw/core"
	"github.com/snow-ghost/jigsaw/pkg/observability"
	"github.com/snow-ghost/jigsaw/worker/telemetry"
)

// NewTelemetry wires logging, metrics and tracing as described by config
func NewTelemetry(config *Config, version string) (*telemetry.Telemetry, error) {
	obs, err := observability.NewManager(observability.Config{
		ServiceName:    "jigsaw-solver",
		ServiceVersion: version,
		Environment:    getEnv("JIGSAW_ENVIRONMENT", "development"),
		JaegerEndpoint: config.JaegerEndpoint,
		LogLevel:       config.LogLevel,
		LogFormat:      config.LogFormat,
		LogOutput:      "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create observability manager: %w", err)
	}
	return telemetry.NewTelemetry(obs), nil
}

// NewSolverFromSource loads pieces from src and builds a solver for the grid that
// dims derives from them.
func NewSolverFromSource(ctx context.Context, src core.PieceSource, dims func([]core.Piece) (core.Dims, error), config *Config, opts ...Option) (*Solver, []core.Piece, error) {
	pieces, err := src.Pieces()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pieces: %w", err)
	}
	d, err := dims(pieces)
	if err != nil {
		return nil, nil, err
	}
	s, err := NewSolver(ctx, pieces, d, config, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, pieces, nil
}

// FixedDims returns a dims function that ignores the pieces.
func FixedDims(d core.Dims) func([]core.Piece) (core.Dims, error) {
	return func([]core.Piece) (core.Dims, error) { return d, nil }
}
