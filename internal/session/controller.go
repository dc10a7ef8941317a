package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ytget/yt-web-downloader/internal/client"
	"github.com/ytget/yt-web-downloader/internal/model"
)

// DefaultPollInterval is the status polling period.
const DefaultPollInterval = time.Second

var (
	// ErrEmptyURL is returned when the trimmed URL is empty.
	ErrEmptyURL = errors.New("session: URL is empty")

	// ErrSessionActive is returned when a download is already being tracked.
	ErrSessionActive = errors.New("session: a download is already active")

	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("session: controller is closed")
)

// TickerFunc starts a recurring tick source and returns its channel and a stop func.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func defaultTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Options configures a Controller.
type Options struct {
	// PollInterval is the time between status checks.
	// Default: 1s
	PollInterval time.Duration

	// NewTicker creates the poll tick source.
	// Default: time.NewTicker
	NewTicker TickerFunc

	// Messages overrides the user-facing strings.
	// Default: DefaultMessages()
	Messages *Messages

	// Logger receives transient failures.
	// Default: log.Default()
	Logger *log.Logger

	// Debug logs every poll tick.
	Debug bool
}

// Controller owns the lifecycle of at most one in-flight download.
type Controller struct {
	api    client.API
	view   Presenter
	msgs   Messages
	logger *log.Logger
	opts   Options

	mu          sync.Mutex
	downloadID  string
	stopPolling context.CancelFunc
	cancelStart context.CancelFunc
	starting    bool
	closed      bool

	wg sync.WaitGroup
}

// NewController creates a controller that talks to api and renders into view.
func NewController(api client.API, view Presenter, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = defaultTicker
	}
	msgs := DefaultMessages()
	if opts.Messages != nil {
		msgs = *opts.Messages
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		api:    api,
		view:   view,
		msgs:   msgs,
		logger: logger,
		opts:   opts,
	}
}

// StartDownload validates rawURL, requests a download and begins polling.
// Failures are rendered through the Presenter and also returned.
func (c *Controller) StartDownload(ctx context.Context, rawURL string, format model.Format) error {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		c.view.Alert(c.messages().EnterURL)
		return ErrEmptyURL
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.downloadID != "" || c.starting {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.starting = true
	c.cancelStart = cancel
	c.mu.Unlock()

	c.view.SetStartEnabled(false)
	c.view.ShowStatus(fmt.Sprintf(c.messages().Starting, format), 0)

	id, err := c.api.StartDownload(ctx, url, format)

	c.mu.Lock()
	c.starting = false
	c.cancelStart = nil
	if c.closed {
		// Close may have run before the control was disabled above.
		c.mu.Unlock()
		c.view.SetStartEnabled(true)
		return ErrClosed
	}
	if err != nil {
		c.mu.Unlock()
		c.view.ShowError(c.failureMessage(err))
		c.view.SetStartEnabled(true)
		return fmt.Errorf("start download: %w", err)
	}
	c.beginLocked(id)
	c.mu.Unlock()
	return nil
}

// LoadFiles fetches the server's file list and renders it. On failure the
// previously rendered list is left untouched.
func (c *Controller) LoadFiles(ctx context.Context) error {
	files, err := c.api.ListFiles(ctx)
	if err != nil {
		c.logger.Printf("Failed to load files: %v", err)
		return fmt.Errorf("load files: %w", err)
	}
	c.view.RenderFiles(files)
	return nil
}

// SetMessages replaces the user-facing strings, e.g. after a language change.
func (c *Controller) SetMessages(m Messages) {
	c.mu.Lock()
	c.msgs = m
	c.mu.Unlock()
}

func (c *Controller) messages() Messages {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msgs
}

// Active returns the id of the tracked download, if any.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downloadID, c.downloadID != ""
}

// Wait blocks until no poll task is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close abandons the active session or pending start, waits for the poll
// task to exit and re-enables the start control. Later calls to
// StartDownload return ErrClosed. It must not be called from a Presenter
// method.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	busy := c.downloadID != "" || c.starting
	if c.cancelStart != nil {
		c.cancelStart()
		c.cancelStart = nil
	}
	c.clearLocked()
	c.mu.Unlock()

	c.wg.Wait()
	if busy {
		c.view.SetStartEnabled(true)
	}
}

// beginLocked records id as the active session and starts its poll task.
// c.mu must be held.
func (c *Controller) beginLocked(id string) {
	ctx, cancel := context.WithCancel(context.Background())
	c.downloadID = id
	c.stopPolling = cancel
	c.wg.Add(1)
	go c.poll(ctx, id)
}

// poll runs one status check per tick until the session ends.
func (c *Controller) poll(ctx context.Context, id string) {
	defer c.wg.Done()

	ticks, stop := c.opts.NewTicker(c.opts.PollInterval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if c.tick(ctx, id) {
				return
			}
		}
	}
}

// tick performs one status check and reports whether polling is over.
func (c *Controller) tick(ctx context.Context, id string) bool {
	st, err := c.api.Status(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		// Transient failures never change state; the next tick retries.
		c.logger.Printf("Status check error: %v", err)
		return false
	}

	if c.opts.Debug {
		c.logger.Printf("Status for %s: %s %d%%", id, st.Status, st.Progress)
	}

	if !st.Status.IsTerminal() {
		if st.Status == model.StatusDownloading {
			c.view.ShowStatus(c.messages().Downloading, clampProgress(st.Progress))
		} else {
			c.logger.Printf("Status check error: unknown status %q", st.Status)
		}
		return false
	}

	if !c.end(id) {
		return true
	}
	if st.Status == model.StatusCompleted {
		c.view.ShowSuccess(c.messages().Completed, st.Filename)
		c.view.ClearURL()
		c.view.SetStartEnabled(true)
		c.LoadFiles(context.WithoutCancel(ctx))
		return true
	}

	msg := st.Error
	if msg == "" {
		msg = c.messages().DownloadFailed
	}
	c.view.ShowError(msg)
	c.view.SetStartEnabled(true)
	return true
}

// end clears the session if id is still the active one.
func (c *Controller) end(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.downloadID != id {
		return false
	}
	c.clearLocked()
	return true
}

// clearLocked stops the poll task and forgets the session. c.mu must be held.
func (c *Controller) clearLocked() {
	if c.stopPolling != nil {
		c.stopPolling()
		c.stopPolling = nil
	}
	c.downloadID = ""
}

func (c *Controller) failureMessage(err error) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return c.messages().DownloadFailed
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
