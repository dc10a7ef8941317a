package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/platform"
)

var (
	// ErrURLRequired is returned by Start for an empty URL.
	ErrURLRequired = errors.New("URL is required")
	// ErrTaskNotFound is returned by Status for an unknown id.
	ErrTaskNotFound = errors.New("Download not found")
	// ErrShuttingDown is returned by Start after Shutdown.
	ErrShuttingDown = errors.New("download service is shutting down")
)

// DefaultMaxParallel bounds concurrent yt-dlp processes when unset.
const DefaultMaxParallel = 2

// Options configures a Service.
type Options struct {
	StagingDir  string
	MaxParallel int
	// Retries is the number of extra fetch attempts after a failure
	Retries    int
	RetryDelay time.Duration
	Fetcher    Fetcher
	Importer   Importer
	Recorder   Recorder // optional
	Logger     *log.Logger
	Debug      bool
}

// Service handles download operations
type Service struct {
	tasks      map[string]*model.DownloadTask
	tasksMutex sync.RWMutex

	sem        chan struct{}
	stagingDir string
	retries    int
	retryDelay time.Duration
	fetcher    Fetcher
	importer   Importer
	recorder   Recorder
	logger     *log.Logger
	debug      bool
	onUpdate   func(*model.DownloadTask) // called with a copy after every change

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closed   bool
	closedMu sync.Mutex
}

// NewService creates a new download service
func NewService(opts Options) (*Service, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("download: fetcher is required")
	}
	if opts.Importer == nil {
		return nil, errors.New("download: importer is required")
	}
	if opts.StagingDir == "" {
		return nil, errors.New("download: staging directory is required")
	}
	if err := platform.CreateDirectoryIfNotExists(opts.StagingDir); err != nil {
		return nil, fmt.Errorf("download: staging directory: %w", err)
	}

	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		tasks:      make(map[string]*model.DownloadTask),
		sem:        make(chan struct{}, maxParallel),
		stagingDir: opts.StagingDir,
		retries:    opts.Retries,
		retryDelay: retryDelay,
		fetcher:    opts.Fetcher,
		importer:   opts.Importer,
		recorder:   opts.Recorder,
		logger:     logger,
		debug:      opts.Debug,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.tasksMutex.Lock()
	s.onUpdate = callback
	s.tasksMutex.Unlock()
}

// Start validates the request and queues a new task. The returned task is a
// copy; it starts in the downloading state at 0% even while queued.
func (s *Service) Start(url, format string) (*model.DownloadTask, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrURLRequired
	}
	f, err := model.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	s.closedMu.Lock()
	defer s.closedMu.Unlock()
	if s.closed {
		return nil, ErrShuttingDown
	}

	task := model.NewDownloadTask(url, f)

	s.tasksMutex.Lock()
	s.tasks[task.ID] = task
	snapshot := task.Clone()
	s.tasksMutex.Unlock()

	if s.recorder != nil {
		s.recorder.DownloadStarted(f.String())
	}
	s.logger.Printf("Download %s queued: %s (%s)", task.ID, url, f)

	s.wg.Add(1)
	go s.run(task)

	return snapshot, nil
}

// Status returns a copy of the task with the given id
func (s *Service) Status(id string) (*model.DownloadTask, error) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Tasks returns copies of all tasks, oldest first
func (s *Service) Tasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task.Clone())
	}
	s.tasksMutex.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.Before(tasks[j].StartedAt)
	})
	return tasks
}

// Wait blocks until every started task has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Shutdown stops accepting tasks, cancels running downloads and waits for
// them to exit or for ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.closedMu.Lock()
	s.closed = true
	s.closedMu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run waits for a slot and drives one task to a terminal status
func (s *Service) run(task *model.DownloadTask) {
	defer s.wg.Done()

	select {
	case s.sem <- struct{}{}:
	case <-s.ctx.Done():
		s.finish(task, "", 0, s.ctx.Err())
		return
	}
	defer func() { <-s.sem }()

	if s.recorder != nil {
		s.recorder.DownloadRunning(1)
		defer s.recorder.DownloadRunning(-1)
	}

	dir := filepath.Join(s.stagingDir, task.ID)
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Printf("Failed to clean staging dir %s: %v", dir, err)
		}
	}()

	name, size, err := s.process(task, dir)
	s.finish(task, name, size, err)
}

// process fetches into dir and imports the result into storage
func (s *Service) process(task *model.DownloadTask, dir string) (string, int64, error) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", 0, fmt.Errorf("create staging dir: %w", err)
	}

	req := FetchRequest{URL: task.URL, Format: task.Format, Dir: dir}
	if err := s.fetchWithRetry(req, task); err != nil {
		return "", 0, err
	}

	path, err := platform.FindDownloadedFile(dir)
	if err != nil {
		return "", 0, err
	}
	if task.Format == model.FormatAudio && !strings.EqualFold(filepath.Ext(path), "."+DefaultAudioCodec) {
		// Post-processing failed to produce the expected container.
		s.logger.Printf("Download %s: audio output has unexpected extension: %s", task.ID, filepath.Base(path))
	}

	name, size, err := s.importer.Import(s.ctx, path)
	if err != nil {
		return "", 0, fmt.Errorf("store file: %w", err)
	}
	return name, size, nil
}

// fetchWithRetry attempts a fetch with retry logic
func (s *Service) fetchWithRetry(req FetchRequest, task *model.DownloadTask) error {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-s.ctx.Done():
				return s.ctx.Err()
			}
			s.logger.Printf("Retrying download %s, attempt %d", task.ID, attempt+1)
		}

		err := s.fetcher.Fetch(s.ctx, req, func(p Progress) {
			s.updateProgress(task, p)
		})
		if err == nil {
			return nil
		}

		lastErr = err
		s.logger.Printf("Download attempt %d failed for %s: %v", attempt+1, task.ID, err)
		if s.ctx.Err() != nil {
			return s.ctx.Err()
		}
	}
	return lastErr
}

// updateProgress applies a progress report to task
func (s *Service) updateProgress(task *model.DownloadTask, p Progress) {
	s.tasksMutex.Lock()
	if p.Total > 0 {
		percent := int(float64(p.Downloaded) / float64(p.Total) * 100)
		if percent > 100 {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}
		task.Percent = percent
	}
	if p.Title != "" && task.Title == "" {
		task.Title = p.Title
	}
	snapshot, callback := task.Clone(), s.onUpdate
	s.tasksMutex.Unlock()

	if s.debug {
		s.logger.Printf("Download %s: %d%%", task.ID, snapshot.Percent)
	}
	if callback != nil {
		callback(snapshot)
	}
}

// finish moves task to completed or error
func (s *Service) finish(task *model.DownloadTask, name string, size int64, err error) {
	s.tasksMutex.Lock()
	if err != nil {
		task.Status = model.StatusError
		task.LastError = err.Error()
	} else {
		task.Status = model.StatusCompleted
		task.Percent = 100
		task.Filename = name
		task.FileSize = size
	}
	task.FinishedAt = time.Now()
	snapshot, callback := task.Clone(), s.onUpdate
	s.tasksMutex.Unlock()

	if err != nil {
		s.logger.Printf("Download %s failed: %v", task.ID, err)
	} else {
		s.logger.Printf("Download %s completed: %s", task.ID, name)
	}

	if s.recorder != nil {
		s.recorder.DownloadFinished(snapshot.Status.String())
		if err == nil {
			s.recorder.FileStored(size)
		}
	}
	if callback != nil {
		callback(snapshot)
	}
}
