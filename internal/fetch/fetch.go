// Package fetch invokes yt-dlp to produce audio clips for catalog segments
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lrstanley/go-ytdlp"
)

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="

	// refreshURL is hit with --skip-download to re-export browser cookies
	refreshURL = "https://www.youtube.com"

	// cookieBrowser is the browser profile cookies are derived from
	cookieBrowser = "firefox"
)

// Options configures how clips are fetched
type Options struct {
	Format             string
	Quality            int
	CookieFile         string
	CookiesFromBrowser bool
}

// Client fetches audio clips through yt-dlp
type Client struct {
	opts   Options
	logger *slog.Logger
}

// New creates a yt-dlp fetch client. When both cookie sources are set the
// cookie file wins and a warning is logged.
func New(opts Options) *Client {
	logger := slog.Default()
	if opts.CookieFile != "" && opts.CookiesFromBrowser {
		logger.Warn("Both cookie file and browser cookies configured, using cookie file",
			"cookie_file", opts.CookieFile)
	}
	return &Client{
		opts:   opts,
		logger: logger,
	}
}

// Install makes sure a yt-dlp binary is available, downloading one if needed
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

// Fetch downloads the [start, end) window of a source clip as audio in the
// configured format, writing it to destPath. A non-nil error covers both
// process failure and missing output; callers validate the file themselves.
func (c *Client) Fetch(ctx context.Context, ytid string, start, end float64, destPath string) error {
	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat(c.opts.Format).
		AudioQuality(strconv.Itoa(c.opts.Quality)).
		Output(destPath).
		PostProcessorArgs(fmt.Sprintf("-ss %g -to %g", start, end))

	switch {
	case c.opts.CookieFile != "":
		dl = dl.Cookies(c.opts.CookieFile)
	case c.opts.CookiesFromBrowser:
		dl = dl.CookiesFromBrowser(cookieBrowser)
	}

	if _, err := dl.Run(ctx, watchURLPrefix+ytid); err != nil {
		return fmt.Errorf("yt-dlp failed for %s: %w", ytid, err)
	}

	return nil
}

// RefreshCookies re-exports cookies from the browser profile without
// downloading anything. Used between failed attempts when browser cookies
// are configured; failures are for the caller to ignore.
func (c *Client) RefreshCookies(ctx context.Context) error {
	dl := ytdlp.New().
		CookiesFromBrowser(cookieBrowser).
		SkipDownload()

	if _, err := dl.Run(ctx, refreshURL); err != nil {
		return fmt.Errorf("cookie refresh failed: %w", err)
	}

	return nil
}
