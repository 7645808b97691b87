package catalog

import (
	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

// FilterByLabels keeps tasks whose label set intersects the wanted machine
// codes. An empty wanted set keeps everything.
func FilterByLabels(tasks []models.DownloadTask, wanted []string) []models.DownloadTask {
	if len(wanted) == 0 {
		return tasks
	}

	wantedSet := make(map[string]struct{}, len(wanted))
	for _, code := range wanted {
		wantedSet[code] = struct{}{}
	}

	var filtered []models.DownloadTask
	for _, task := range tasks {
		for _, label := range task.Labels {
			if _, ok := wantedSet[label]; ok {
				filtered = append(filtered, task)
				break
			}
		}
	}
	return filtered
}

// Slice applies an optional [start, end) index range for chunked batch runs.
// A negative bound means unset; out-of-range bounds are clamped.
func Slice(tasks []models.DownloadTask, start, end int) []models.DownloadTask {
	if start < 0 {
		start = 0
	}
	if end < 0 || end > len(tasks) {
		end = len(tasks)
	}
	if start > end {
		start = end
	}
	return tasks[start:end]
}
