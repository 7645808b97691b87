// Package pathplan maps download tasks to their label-partitioned destination paths
package pathplan

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rishabh-bhattad/audioset-downloader-win/internal/catalog"
	"github.com/rishabh-bhattad/audioset-downloader-win/internal/config"
	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

// PlannedPath is one destination for a task's audio file. The first planned
// path of a task is the canonical one; any others are replication targets.
type PlannedPath struct {
	Label string
	Path  string
}

// Planner resolves destination paths under a label-partitioned directory tree
type Planner struct {
	rootPath string
	mapping  *catalog.LabelMapping
}

// NewPlanner creates a planner rooted at rootPath
func NewPlanner(rootPath string, mapping *catalog.LabelMapping) *Planner {
	return &Planner{
		rootPath: filepath.Clean(rootPath),
		mapping:  mapping,
	}
}

// Plan resolves the destination paths for a task. With replicate set it
// returns one path per label, primary first; otherwise only the primary
// label's path. Label directories are created before returning. Any label
// code missing from the mapping fails the whole plan with ErrUnknownLabel.
func (p *Planner) Plan(task models.DownloadTask, format string, replicate bool) ([]PlannedPath, error) {
	if len(task.Labels) == 0 {
		return nil, fmt.Errorf("task %s has no labels", task.YTID)
	}

	labels := task.Labels
	if !replicate {
		labels = task.Labels[:1]
	}

	// Resolve every label before touching the filesystem so a bad catalog
	// row fails cleanly.
	displays := make([]string, 0, len(labels))
	for _, code := range labels {
		display, err := p.mapping.DisplayName(code)
		if err != nil {
			return nil, err
		}
		displays = append(displays, display)
	}

	filename := Filename(task, format)

	planned := make([]PlannedPath, 0, len(displays))
	for _, display := range displays {
		dir := filepath.Join(p.rootPath, display)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create label directory %s: %w", dir, err)
		}
		planned = append(planned, PlannedPath{
			Label: display,
			Path:  filepath.Join(dir, filename),
		})
	}

	return planned, nil
}

// Filename returns the destination file name for a task:
// {ytid}_{start}-{end}.{ext}
func Filename(task models.DownloadTask, format string) string {
	return fmt.Sprintf("%s_%s-%s.%s",
		task.YTID,
		FormatSeconds(task.StartSeconds),
		FormatSeconds(task.EndSeconds),
		config.ExtensionFor(format),
	)
}

// FormatSeconds renders a seconds value with at least one decimal place, so
// 30 becomes "30.0" and 12.25 stays "12.25". This keeps file names stable
// across runs against trees produced by earlier versions of the tool.
func FormatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
