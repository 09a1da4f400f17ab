package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snow-ghost/jigsaw/core"
	"github.com/snow-ghost/jigsaw/imageio"
	"github.com/snow-ghost/jigsaw/worker"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		healthcheck()
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := worker.LoadConfig()
	if path := os.Getenv("CONFIG"); path != "" {
		var err error
		if cfg, err = worker.LoadConfigFile(path); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	piecesDir := os.Getenv("PIECES_DIR")
	if piecesDir == "" {
		return errors.New("PIECES_DIR is required")
	}
	outputPath := os.Getenv("OUTPUT_PATH")
	if outputPath == "" {
		outputPath = "solved.png"
	}

	tel, err := worker.NewTelemetry(cfg, version)
	if err != nil {
		return err
	}
	obs := tel.Observability()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()
	logger := obs.GetLogger()

	if cfg.MetricsAddr != "" {
		tel.Publish("jigsaw_progress")

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(obs.GetMetrics().Registry(), promhttp.HandlerOpts{}))
		mux.Handle("/health", http.HandlerFunc(tel.HealthHandler))
		mux.Handle("/progress", http.HandlerFunc(tel.ProgressHandler))
		mux.Handle("/debug/vars", expvar.Handler())

		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics server starting", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	solver, pieces, err := worker.NewSolverFromSource(ctx, imageio.DirSource{Dir: piecesDir}, gridDims, cfg, worker.WithTelemetry(tel))
	if err != nil {
		return err
	}
	logger.Info("pieces loaded",
		"count", len(pieces),
		"piece_width", pieces[0].Raster.Width,
		"piece_height", pieces[0].Raster.Height,
		"seed", solver.Seed())

	res, err := solver.Solve(ctx)
	if err != nil {
		return fmt.Errorf("solver failed: %w", err)
	}

	img, err := imageio.Compose(res.Best, pieces)
	if err != nil {
		return err
	}
	if err := imageio.SavePNG(outputPath, img); err != nil {
		return err
	}

	logger.Info("solution saved",
		"path", outputPath,
		"cost", res.Cost,
		"generations", res.Generations)
	return nil
}

// gridDims reads GRID_ROWS and GRID_COLS, or infers the grid from ORIGINAL_IMAGE.
func gridDims(pieces []core.Piece) (core.Dims, error) {
	rows, _ := strconv.Atoi(os.Getenv("GRID_ROWS"))
	cols, _ := strconv.Atoi(os.Getenv("GRID_COLS"))
	if rows > 0 && cols > 0 {
		return core.Dims{Rows: rows, Cols: cols}, nil
	}

	original := os.Getenv("ORIGINAL_IMAGE")
	if original == "" {
		return core.Dims{}, errors.New("either GRID_ROWS and GRID_COLS or ORIGINAL_IMAGE is required")
	}
	header, err := imageio.DecodeConfigFile(original)
	if err != nil {
		return core.Dims{}, err
	}
	return imageio.InferDims(header.Width, header.Height, pieces[0].Raster.Width, pieces[0].Raster.Height)
}
