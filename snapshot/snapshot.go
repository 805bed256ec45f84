package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// ============================================================================
// SNAPSHOT — Headless Chrome screenshot of a running dashboard
// ============================================================================
// Captures the page after the charts have loaded. Used by `winedash
// -snapshot` to produce a PNG of the whole dashboard for reports.
// ============================================================================

// ErrNoBrowser is returned when no Chrome or Chromium binary can be found.
var ErrNoBrowser = errors.New("no chrome binary found")

const (
	DefaultWidth   = 1400
	DefaultHeight  = 1000
	DefaultWait    = 2 * time.Second
	DefaultTimeout = 60 * time.Second

	// Every chart is an <img>; the pie is last in the layout.
	readySelector = "#pie_chart"
)

// Options controls a capture. Zero fields take the defaults above.
type Options struct {
	URL       string
	Width     int
	Height    int
	Wait      time.Duration // settle time after the charts are visible
	Timeout   time.Duration
	ChromeBin string // empty: $CHROME_BIN, then PATH, then well-known paths
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Wait < 0 {
		o.Wait = 0
	} else if o.Wait == 0 {
		o.Wait = DefaultWait
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ChromeBin == "" {
		o.ChromeBin = FindChrome()
	}
	return o
}

// Capture loads opts.URL in headless Chrome and returns a full-page PNG.
func Capture(ctx context.Context, opts Options) ([]byte, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("snapshot: empty URL")
	}
	opts = opts.withDefaults()
	if opts.ChromeBin == "" {
		return nil, fmt.Errorf("snapshot: %w", ErrNoBrowser)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
		chromedp.ExecPath(opts.ChromeBin),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, opts.Timeout)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.Sleep(opts.Wait),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", opts.URL, err)
	}
	return buf, nil
}

// FindChrome returns the first Chrome or Chromium binary it can locate,
// or "" if there is none.
func FindChrome() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
