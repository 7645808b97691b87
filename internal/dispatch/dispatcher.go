// Package dispatch fans the download pipeline out over the task list
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rishabh-bhattad/audioset-downloader-win/internal/pathplan"
	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

// PipelineRunner runs the download state machine for one task
type PipelineRunner interface {
	Run(ctx context.Context, task models.DownloadTask, paths []pathplan.PlannedPath) models.Result
}

// PathPlanner resolves a task's destination paths
type PathPlanner interface {
	Plan(task models.DownloadTask, format string, replicate bool) ([]pathplan.PlannedPath, error)
}

// Recorder persists per-task outcomes for post-run reporting
type Recorder interface {
	Record(task models.DownloadTask, result models.Result) error
}

// Summary aggregates the outcomes of a dispatch run
type Summary struct {
	Total     int
	Skipped   int
	Succeeded int
	Failed    int
}

// Dispatcher runs the pipeline over all tasks with a bounded worker pool.
// Task failures are isolated: one task exhausting its retries never aborts
// its siblings or the run.
type Dispatcher struct {
	planner   PathPlanner
	pipeline  PipelineRunner
	recorder  Recorder // optional
	format    string
	replicate bool
	workers   int
	logger    *slog.Logger
}

// New creates a dispatcher with the given worker count (minimum 1)
func New(planner PathPlanner, pipeline PipelineRunner, format string, replicate bool, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		planner:   planner,
		pipeline:  pipeline,
		format:    format,
		replicate: replicate,
		workers:   workers,
		logger:    slog.Default(),
	}
}

// SetRecorder installs the optional outcome recorder
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

type indexedTask struct {
	index int
	task  models.DownloadTask
}

// DispatchAll processes every task and returns the aggregate counts. A
// canceled context stops handing out new tasks; in-flight tasks finish their
// current attempt.
func (d *Dispatcher) DispatchAll(ctx context.Context, tasks []models.DownloadTask) Summary {
	total := len(tasks)
	d.logger.Info("Dispatching downloads", "total", total, "workers", d.workers)

	taskCh := make(chan indexedTask)
	outcomes := make(chan models.Outcome, total)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range taskCh {
				outcomes <- d.runOne(ctx, it, total)
			}
		}()
	}

feed:
	for i, task := range tasks {
		if ctx.Err() != nil {
			d.logger.Warn("Dispatch canceled, not starting remaining tasks", "remaining", total-i)
			break feed
		}
		select {
		case <-ctx.Done():
			d.logger.Warn("Dispatch canceled, not starting remaining tasks", "remaining", total-i)
			break feed
		case taskCh <- indexedTask{index: i, task: task}:
		}
	}
	close(taskCh)
	wg.Wait()
	close(outcomes)

	summary := Summary{Total: total}
	for outcome := range outcomes {
		switch outcome {
		case models.OutcomeSkipped:
			summary.Skipped++
		case models.OutcomeSucceeded:
			summary.Succeeded++
		case models.OutcomeFailed:
			summary.Failed++
		}
	}

	d.logger.Info("Dispatch complete",
		"total", summary.Total,
		"skipped", summary.Skipped,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)

	return summary
}

// runOne plans and runs a single task, containing every failure as an outcome
func (d *Dispatcher) runOne(ctx context.Context, it indexedTask, total int) models.Outcome {
	d.logger.Info("Downloading segment", "row", it.index+1, "total", total, "ytid", it.task.YTID)

	paths, err := d.planner.Plan(it.task, d.format, d.replicate)
	if err != nil {
		d.logger.Error("Failed to plan destination paths",
			"ytid", it.task.YTID,
			"labels", it.task.Labels,
			"error", err)
		result := models.Result{Outcome: models.OutcomeFailed, Err: err}
		d.record(it.task, result)
		return result.Outcome
	}

	result := d.pipeline.Run(ctx, it.task, paths)
	d.record(it.task, result)
	return result.Outcome
}

func (d *Dispatcher) record(task models.DownloadTask, result models.Result) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(task, result); err != nil {
		d.logger.Warn("Failed to record task outcome", "ytid", task.YTID, "error", err)
	}
}
