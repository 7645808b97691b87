package pipeline

import (
	"context"
)

// Fetcher produces a local audio file for a source clip's time window
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Fetcher interface {
	Fetch(ctx context.Context, ytid string, start, end float64, destPath string) error
}

// Validator reports a file's audio duration, or invalid when the file cannot
// be probed
type Validator interface {
	Duration(ctx context.Context, path string) (float64, bool)
}

// CookieRefresher re-derives authentication cookies between failed attempts
type CookieRefresher interface {
	RefreshCookies(ctx context.Context) error
}
