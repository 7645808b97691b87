package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rishabh-bhattad/audioset-downloader-win/internal/catalog"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/config"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/dispatch"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/fetch"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/history"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/pathplan"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/pipeline"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/probe"
	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

// historyRetention prunes records older than this at startup
const historyRetention = 60 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting AudioSet downloader",
		"root_path", cfg.RootPath,
		"split", cfg.DownloadType,
		"workers", cfg.WorkerCount,
		"format", cfg.AudioFormat)

	if cfg.HasCookieConflict() {
		slog.Warn("Both COOKIE_FILE and COOKIES_FROM_BROWSER are set, using cookie file",
			"cookie_file", cfg.CookieFile)
	}

	if err := os.MkdirAll(cfg.RootPath, 0o755); err != nil {
		return fmt.Errorf("failed to create root path: %w", err)
	}

	// Cancel the run on SIGINT/SIGTERM; in-flight attempts finish, no new
	// tasks start
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Make sure a yt-dlp binary is available (warn but continue, a
	// system-installed binary may still work)
	if err := fetch.Install(ctx); err != nil {
		slog.Warn("yt-dlp install check failed - continuing anyway", "error", err)
	}

	// Initialize the run-history database
	var recorder dispatch.Recorder
	var db *history.DB
	runID := uuid.NewString()
	if cfg.HistoryDBPath != "" {
		db, err = history.New(cfg.HistoryDBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize history database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close history database", "error", err)
			}
		}()

		if err := db.DeleteOldRecords(historyRetention); err != nil {
			slog.Warn("Failed to prune old history records", "error", err)
		}

		recorder = history.NewRecorder(db, runID)
		slog.Info("Recording outcomes", "run_id", runID, "history_db", cfg.HistoryDBPath)
	}

	tasks, mapping, err := loadTasks(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("Catalog loaded", "tasks", len(tasks))

	fetcher := fetch.New(fetch.Options{
		Format:             cfg.AudioFormat,
		Quality:            cfg.AudioQuality,
		CookieFile:         cfg.CookieFile,
		CookiesFromBrowser: cfg.CookiesFromBrowser,
	})
	validator := probe.New(cfg.FFprobePath)
	planner := pathplan.NewPlanner(cfg.RootPath, mapping)

	pipe := pipeline.New(fetcher, validator, cfg.MaxRetries, time.Duration(cfg.RetryDelaySeconds)*time.Second)
	if cfg.CookiesFromBrowser {
		pipe.SetCookieRefresher(fetcher)
	}

	dispatcher := dispatch.New(planner, pipe, cfg.AudioFormat, cfg.CopyAndReplicate, cfg.WorkerCount)
	if recorder != nil {
		dispatcher.SetRecorder(recorder)
	}

	summary := dispatcher.DispatchAll(ctx, tasks)

	if ctx.Err() != nil {
		slog.Warn("Run interrupted before completion")
	}
	slog.Info("Done",
		"total", summary.Total,
		"skipped", summary.Skipped,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)

	reportFailures(db, runID)

	return nil
}

// loadTasks fetches the label mapping and segment catalog, then applies the
// configured label filter and index slice
func loadTasks(ctx context.Context, cfg *config.Config) ([]models.DownloadTask, *catalog.LabelMapping, error) {
	client := catalog.New()

	mapping, err := client.FetchLabelMapping(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch label mapping: %w", err)
	}
	slog.Info("Label mapping loaded", "labels", mapping.Len())

	tasks, err := client.FetchSegments(ctx, cfg.DownloadType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch segment catalog: %w", err)
	}

	if len(cfg.Labels) > 0 {
		wanted, err := mapping.MachineCodes(cfg.Labels)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid label filter: %w", err)
		}
		tasks = catalog.FilterByLabels(tasks, wanted)
		slog.Info("Label filter applied", "labels", cfg.Labels, "remaining", len(tasks))
	}

	tasks = catalog.Slice(tasks, cfg.StartIndex, cfg.EndIndex)

	return tasks, mapping, nil
}

// reportFailures logs the failed tasks of this run for the operator
func reportFailures(db *history.DB, runID string) {
	if db == nil {
		return
	}

	failures, err := db.GetRunFailures(runID)
	if err != nil {
		slog.Warn("Failed to load run failures", "error", err)
		return
	}

	for _, failure := range failures {
		slog.Warn("Failed segment",
			"ytid", failure.YTID,
			"start", failure.StartSeconds,
			"end", failure.EndSeconds,
			"attempts", failure.Attempts,
			"error", failure.ErrorMessage)
	}
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
