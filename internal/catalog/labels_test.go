package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

func testMapping() *LabelMapping {
	return NewLabelMapping(map[string]string{
		"Speech": "/m/09x0r",
		"Music":  "/m/0284vy3",
		"Dog":    "/m/0bt9lr",
	})
}

func TestLabelMapping_DisplayName(t *testing.T) {
	m := testMapping()

	display, err := m.DisplayName("/m/09x0r")
	require.NoError(t, err)
	require.Equal(t, "Speech", display)

	_, err = m.DisplayName("/m/missing")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLabelMapping_MachineCode(t *testing.T) {
	m := testMapping()

	code, err := m.MachineCode("Music")
	require.NoError(t, err)
	require.Equal(t, "/m/0284vy3", code)

	_, err = m.MachineCode("Thunder")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLabelMapping_MachineCodes(t *testing.T) {
	m := testMapping()

	codes, err := m.MachineCodes([]string{"Speech", "Dog"})
	require.NoError(t, err)
	require.Equal(t, []string{"/m/09x0r", "/m/0bt9lr"}, codes)

	_, err = m.MachineCodes([]string{"Speech", "Thunder"})
	require.ErrorIs(t, err, ErrUnknownLabel)
}

func TestFilterByLabels(t *testing.T) {
	tasks := []models.DownloadTask{
		{YTID: "a", Labels: []string{"/m/09x0r"}},
		{YTID: "b", Labels: []string{"/m/0284vy3", "/m/0bt9lr"}},
		{YTID: "c", Labels: []string{"/m/0jbk"}},
	}

	tests := []struct {
		name      string
		wanted    []string
		wantYTIDs []string
	}{
		{
			name:      "empty filter keeps all",
			wanted:    nil,
			wantYTIDs: []string{"a", "b", "c"},
		},
		{
			name:      "single code",
			wanted:    []string{"/m/09x0r"},
			wantYTIDs: []string{"a"},
		},
		{
			name:      "matches any label in the set",
			wanted:    []string{"/m/0bt9lr"},
			wantYTIDs: []string{"b"},
		},
		{
			name:      "multiple codes",
			wanted:    []string{"/m/09x0r", "/m/0jbk"},
			wantYTIDs: []string{"a", "c"},
		},
		{
			name:      "no matches",
			wanted:    []string{"/m/none"},
			wantYTIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterByLabels(tasks, tt.wanted)
			var ytids []string
			for _, task := range filtered {
				ytids = append(ytids, task.YTID)
			}
			require.Equal(t, tt.wantYTIDs, ytids)
		})
	}
}

func TestSlice(t *testing.T) {
	tasks := make([]models.DownloadTask, 10)
	for i := range tasks {
		tasks[i].YTID = string(rune('a' + i))
	}

	tests := []struct {
		name      string
		start     int
		end       int
		wantLen   int
		wantFirst string
	}{
		{"both unset", -1, -1, 10, "a"},
		{"contiguous range", 5, 8, 3, "f"},
		{"start only", 7, -1, 3, "h"},
		{"end only", -1, 4, 4, "a"},
		{"end past length clamps", 5, 100, 5, "f"},
		{"start past length", 20, -1, 0, ""},
		{"empty range", 4, 4, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sliced := Slice(tasks, tt.start, tt.end)
			require.Len(t, sliced, tt.wantLen)
			if tt.wantLen > 0 {
				require.Equal(t, tt.wantFirst, sliced[0].YTID)
			}
		})
	}
}
