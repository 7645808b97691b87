// Package probe inspects audio files to decide whether a download is complete
package probe

import (
	"context"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// probeTimeout bounds a single ffprobe invocation
const probeTimeout = 30 * time.Second

// FFprobe reports audio durations using the ffprobe binary
type FFprobe struct{}

// New creates an ffprobe-backed validator. A non-empty binPath overrides the
// ffprobe binary looked up on PATH.
func New(binPath string) *FFprobe {
	if binPath != "" {
		ffprobe.SetFFProbeBinPath(binPath)
	}
	return &FFprobe{}
}

// Duration returns the duration of the audio file at path in seconds. The
// second return value is false when the file cannot be probed or carries no
// duration metadata; parse failures and process errors all fold into that
// invalid signal.
func (f *FFprobe) Duration(ctx context.Context, path string) (float64, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	data, err := ffprobe.ProbeURL(probeCtx, path)
	if err != nil {
		return 0, false
	}
	if data.Format == nil {
		return 0, false
	}

	return data.Format.DurationSeconds, true
}
