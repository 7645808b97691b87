package pathplan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rishabh-bhattad/audioset-downloader-win/internal/catalog"
	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

func testMapping() *catalog.LabelMapping {
	return catalog.NewLabelMapping(map[string]string{
		"Speech": "/m/09x0r",
		"Music":  "/m/0284vy3",
		"Dog":    "/m/0bt9lr",
	})
}

func testTask() models.DownloadTask {
	return models.DownloadTask{
		YTID:         "abc123",
		StartSeconds: 10.0,
		EndSeconds:   20.0,
		Labels:       []string{"/m/09x0r", "/m/0284vy3"},
	}
}

func TestPlanner_PlanReplicate(t *testing.T) {
	root := t.TempDir()
	planner := NewPlanner(root, testMapping())

	paths, err := planner.Plan(testTask(), "wav", true)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	require.Equal(t, "Speech", paths[0].Label)
	require.Equal(t, filepath.Join(root, "Speech", "abc123_10.0-20.0.wav"), paths[0].Path)
	require.Equal(t, "Music", paths[1].Label)
	require.Equal(t, filepath.Join(root, "Music", "abc123_10.0-20.0.wav"), paths[1].Path)

	// Label directories exist after planning
	for _, p := range paths {
		info, err := os.Stat(filepath.Dir(p.Path))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestPlanner_PlanPrimaryOnly(t *testing.T) {
	root := t.TempDir()
	planner := NewPlanner(root, testMapping())

	paths, err := planner.Plan(testTask(), "wav", false)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, "Speech", paths[0].Label)

	// Only the primary label directory is created
	_, err = os.Stat(filepath.Join(root, "Music"))
	require.True(t, os.IsNotExist(err))
}

func TestPlanner_PlanUnknownLabel(t *testing.T) {
	root := t.TempDir()
	planner := NewPlanner(root, testMapping())

	task := testTask()
	task.Labels = []string{"/m/09x0r", "/m/unknown"}

	_, err := planner.Plan(task, "wav", true)
	require.Error(t, err)
	require.ErrorIs(t, err, catalog.ErrUnknownLabel)

	// Nothing was created for a failed plan
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPlanner_PlanUnknownSecondaryLabelWithoutReplication(t *testing.T) {
	// Without replication only the primary label needs to resolve
	root := t.TempDir()
	planner := NewPlanner(root, testMapping())

	task := testTask()
	task.Labels = []string{"/m/09x0r", "/m/unknown"}

	paths, err := planner.Plan(task, "wav", false)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestPlanner_PlanNoLabels(t *testing.T) {
	planner := NewPlanner(t.TempDir(), testMapping())

	_, err := planner.Plan(models.DownloadTask{YTID: "abc123"}, "wav", true)
	require.Error(t, err)
}

func TestPlanner_PlanIdempotentDirectories(t *testing.T) {
	root := t.TempDir()
	planner := NewPlanner(root, testMapping())

	_, err := planner.Plan(testTask(), "wav", true)
	require.NoError(t, err)
	_, err = planner.Plan(testTask(), "wav", true)
	require.NoError(t, err)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		task   models.DownloadTask
		format string
		want   string
	}{
		{
			name:   "vorbis maps to ogg",
			task:   models.DownloadTask{YTID: "abc123", StartSeconds: 30, EndSeconds: 40},
			format: "vorbis",
			want:   "abc123_30.0-40.0.ogg",
		},
		{
			name:   "wav keeps extension",
			task:   models.DownloadTask{YTID: "abc123", StartSeconds: 10, EndSeconds: 20},
			format: "wav",
			want:   "abc123_10.0-20.0.wav",
		},
		{
			name:   "fractional seconds preserved",
			task:   models.DownloadTask{YTID: "xy-z", StartSeconds: 12.25, EndSeconds: 22.5},
			format: "mp3",
			want:   "xy-z_12.25-22.5.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Filename(tt.task, tt.format))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	require.Equal(t, "30.0", FormatSeconds(30))
	require.Equal(t, "0.0", FormatSeconds(0))
	require.Equal(t, "12.25", FormatSeconds(12.25))
	require.Equal(t, "9.5", FormatSeconds(9.5))
}
