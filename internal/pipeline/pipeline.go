// Package pipeline implements the per-task download state machine
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rishabh-bhattad/audioset-downloader-win/internal/pathplan"
	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

// ErrRetriesExhausted is the terminal error after the attempt budget is spent
var ErrRetriesExhausted = errors.New("retries exhausted")

// Pipeline runs one download task through existence check, fetch-with-retry,
// validation, and replication. A Pipeline is safe for concurrent use.
type Pipeline struct {
	fetcher    Fetcher
	validator  Validator
	refresher  CookieRefresher
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	// sleep is replaced in tests to run retries without wall-clock waits
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a pipeline. maxRetries is the total attempt budget per task.
func New(fetcher Fetcher, validator Validator, maxRetries int, retryDelay time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		validator:  validator,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     slog.Default(),
		sleep:      sleepCtx,
	}
}

// SetCookieRefresher installs the optional between-attempt cookie refresh
// side channel
func (p *Pipeline) SetCookieRefresher(r CookieRefresher) {
	p.refresher = r
}

// Run executes the state machine for one task against its planned paths.
// paths[0] is the canonical destination; the rest are replication targets.
func (p *Pipeline) Run(ctx context.Context, task models.DownloadTask, paths []pathplan.PlannedPath) models.Result {
	if len(paths) == 0 {
		return models.Result{Outcome: models.OutcomeFailed, Err: fmt.Errorf("task %s has no planned paths", task.YTID)}
	}
	canonical := paths[0].Path

	// A valid file on disk is authoritative proof of prior success; restart
	// runs must not touch the network for it.
	if fileExists(canonical) {
		if duration, ok := p.validator.Duration(ctx, canonical); ok && duration > 0 {
			p.logger.Info("Already downloaded, skipping", "ytid", task.YTID, "path", canonical, "duration", duration)
			return models.Result{Outcome: models.OutcomeSkipped}
		}
		p.logger.Warn("Existing file is corrupt, re-downloading", "ytid", task.YTID, "path", canonical)
		p.removeFile(canonical)
	}

	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Result{Outcome: models.OutcomeFailed, Attempts: attempt - 1, Err: err}
		}

		if err := p.fetcher.Fetch(ctx, task.YTID, task.StartSeconds, task.EndSeconds, canonical); err != nil {
			p.logger.Warn("Fetch attempt failed",
				"ytid", task.YTID,
				"attempt", attempt,
				"max_retries", p.maxRetries,
				"error", err)
		}

		if fileExists(canonical) {
			if duration, ok := p.validator.Duration(ctx, canonical); ok && duration > 0 {
				p.logger.Info("Download completed",
					"ytid", task.YTID,
					"path", canonical,
					"attempts", attempt,
					"duration", duration)
				p.replicate(canonical, paths[1:])
				return models.Result{Outcome: models.OutcomeSucceeded, Attempts: attempt}
			}
			// Never leave a corrupt file where the next run would trust it
			p.logger.Warn("Downloaded file failed validation, deleting", "ytid", task.YTID, "path", canonical)
			p.removeFile(canonical)
		}

		if attempt == p.maxRetries {
			break
		}

		p.logger.Warn("Retrying download",
			"ytid", task.YTID,
			"attempt", attempt,
			"max_retries", p.maxRetries,
			"delay", p.retryDelay)

		if p.refresher != nil {
			if err := p.refresher.RefreshCookies(ctx); err != nil {
				p.logger.Warn("Cookie refresh failed", "ytid", task.YTID, "error", err)
			}
		}

		if err := p.sleep(ctx, p.retryDelay); err != nil {
			return models.Result{Outcome: models.OutcomeFailed, Attempts: attempt, Err: err}
		}
	}

	p.logger.Error("Download failed after all attempts", "ytid", task.YTID, "attempts", p.maxRetries)
	return models.Result{
		Outcome:  models.OutcomeFailed,
		Attempts: p.maxRetries,
		Err:      fmt.Errorf("%w after %d attempts for %s", ErrRetriesExhausted, p.maxRetries, task.YTID),
	}
}

// replicate copies the canonical file to each secondary label path.
// Replication is best-effort: a failed copy is logged and does not downgrade
// the task's success.
func (p *Pipeline) replicate(canonical string, targets []pathplan.PlannedPath) {
	for _, target := range targets {
		if err := copyFile(canonical, target.Path); err != nil {
			p.logger.Warn("Failed to replicate to label directory",
				"source", canonical,
				"target", target.Path,
				"label", target.Label,
				"error", err)
			continue
		}
		p.logger.Debug("Replicated to label directory", "target", target.Path, "label", target.Label)
	}
}

func (p *Pipeline) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("Failed to delete file", "path", path, "error", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return out.Sync()
}

// sleepCtx waits for d or until the context is canceled
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
