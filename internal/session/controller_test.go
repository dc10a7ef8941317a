package session

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-web-downloader/internal/client"
	"github.com/ytget/yt-web-downloader/internal/model"
)

// fakeServer scripts the download API and counts requests per route.
type fakeServer struct {
	mu          sync.Mutex
	startCode   int
	startBody   any
	statuses    []any // model.StatusResponse or an int status code
	files       []model.FileEntry
	filesCode   int
	startCalls  atomic.Int32
	statusCalls atomic.Int32
	filesCalls  atomic.Int32
	lastFormat  model.Format

	// startGate, when set, holds POST /download until closed or cancelled.
	startGate    chan struct{}
	startEntered chan struct{}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/download":
		f.startCalls.Add(1)
		var req model.StartRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.lastFormat = req.Format
		if f.startGate != nil {
			close(f.startEntered)
			select {
			case <-f.startGate:
			case <-r.Context().Done():
				return
			}
		}
		code := f.startCode
		if code == 0 {
			code = http.StatusOK
		}
		body := f.startBody
		if body == nil {
			body = model.StartResponse{DownloadID: "dl-1", Status: model.StartedStatus}
		}
		writeJSON(w, code, body)

	case r.Method == http.MethodGet && r.URL.Path == "/status/dl-1":
		f.statusCalls.Add(1)
		if len(f.statuses) == 0 {
			writeJSON(w, http.StatusOK, model.StatusResponse{Status: model.StatusDownloading})
			return
		}
		next := f.statuses[0]
		f.statuses = f.statuses[1:]
		if code, ok := next.(int); ok {
			w.WriteHeader(code)
			w.Write([]byte("not json"))
			return
		}
		writeJSON(w, http.StatusOK, next)

	case r.Method == http.MethodGet && r.URL.Path == "/files":
		f.filesCalls.Add(1)
		if f.filesCode != 0 {
			w.WriteHeader(f.filesCode)
			return
		}
		files := f.files
		if files == nil {
			files = []model.FileEntry{}
		}
		writeJSON(w, http.StatusOK, files)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeServer) format() model.Format {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFormat
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// manualTicker hands out a tick channel the test drives by hand.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
	started atomic.Int32
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) factory(time.Duration) (<-chan time.Time, func()) {
	m.started.Add(1)
	return m.ch, func() { m.stopped.Store(true) }
}

func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not accept tick")
	}
}

func (m *manualTicker) assertNoListener(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
		t.Fatal("poll loop is still running")
	case <-time.After(50 * time.Millisecond):
	}
}

type harness struct {
	srv    *fakeServer
	view   *recorder
	ticker *manualTicker
	ctrl   *Controller
}

func newHarness(t *testing.T, srv *fakeServer) *harness {
	t.Helper()
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)

	api, err := client.New(hs.URL, client.Options{})
	require.NoError(t, err)

	h := &harness{srv: srv, view: newRecorder(), ticker: newManualTicker()}
	h.ctrl = NewController(api, h.view, Options{
		NewTicker: h.ticker.factory,
		Logger:    log.New(io.Discard, "", 0),
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

func TestStartDownload_EmptyURL(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	for _, raw := range []string{"", "   ", "\t\n"} {
		err := h.ctrl.StartDownload(context.Background(), raw, model.FormatVideo)
		assert.ErrorIs(t, err, ErrEmptyURL)
	}

	snap := h.view.snapshot()
	assert.Equal(t, []string{"Please enter a URL", "Please enter a URL", "Please enter a URL"}, snap.alerts)
	assert.True(t, snap.enabled)
	assert.Zero(t, h.srv.startCalls.Load())
	assert.Zero(t, h.srv.statusCalls.Load())
	assert.Zero(t, h.srv.filesCalls.Load())
	assert.Zero(t, h.ticker.started.Load())
}

func TestStartDownload_SinglePost(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "  https://youtu.be/abc  ", model.FormatAudio))

	assert.Equal(t, int32(1), h.srv.startCalls.Load())
	assert.Equal(t, model.FormatAudio, h.srv.format())

	id, ok := h.ctrl.Active()
	assert.True(t, ok)
	assert.Equal(t, "dl-1", id)

	snap := h.view.snapshot()
	assert.False(t, snap.enabled)
	assert.Equal(t, []string{"enabled:false", "status:Starting audio download...:0"}, snap.events)
}

func TestStartDownload_RejectsSecondSession(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))
	err := h.ctrl.StartDownload(context.Background(), "https://youtu.be/b", model.FormatVideo)

	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, int32(1), h.srv.startCalls.Load())
}

func TestStartDownload_ServerError(t *testing.T) {
	h := newHarness(t, &fakeServer{
		startCode: http.StatusBadRequest,
		startBody: model.ErrorResponse{Error: "URL is required"},
	})

	err := h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo)
	require.Error(t, err)

	snap := h.view.snapshot()
	assert.Equal(t, "Error: URL is required", snap.message)
	assert.True(t, snap.enabled)
	_, active := h.ctrl.Active()
	assert.False(t, active)
	assert.Zero(t, h.ticker.started.Load())
}

func TestStartDownload_GenericFailure(t *testing.T) {
	h := newHarness(t, &fakeServer{
		startCode: http.StatusInternalServerError,
		startBody: "oops",
	})

	err := h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo)
	require.Error(t, err)

	snap := h.view.snapshot()
	assert.Equal(t, "Error: Download failed", snap.message)
	assert.True(t, snap.enabled)
}

func TestStartDownload_NetworkFailure(t *testing.T) {
	api, err := client.New("http://127.0.0.1:1", client.Options{Timeout: time.Second})
	require.NoError(t, err)

	view := newRecorder()
	ctrl := NewController(api, view, Options{Logger: log.New(io.Discard, "", 0)})

	err = ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo)
	require.Error(t, err)

	snap := view.snapshot()
	assert.Equal(t, "Error: Download failed", snap.message)
	assert.True(t, snap.enabled)
	_, active := ctrl.Active()
	assert.False(t, active)
}

func TestPolling_CompletedSequence(t *testing.T) {
	h := newHarness(t, &fakeServer{
		statuses: []any{
			model.StatusResponse{Status: model.StatusDownloading, Progress: 10},
			model.StatusResponse{Status: model.StatusDownloading, Progress: 55},
			model.StatusResponse{Status: model.StatusCompleted, Progress: 100, Filename: "x.mp4"},
		},
		files: []model.FileEntry{{Name: "x.mp4", Size: 2048, URL: "/downloads/x.mp4"}},
	})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))

	h.ticker.tick(t)
	h.ticker.tick(t)
	h.ticker.tick(t)
	h.ctrl.Wait()

	assert.True(t, h.ticker.stopped.Load())
	h.ticker.assertNoListener(t)

	snap := h.view.snapshot()
	assert.Equal(t, []int{0, 10, 55, 100}, snap.progress)
	assert.Equal(t, "Download completed! (x.mp4)", snap.message)
	assert.True(t, snap.enabled)
	assert.Equal(t, 1, snap.cleared)
	require.Len(t, snap.files, 1)
	assert.Equal(t, "x.mp4", snap.files[0][0].Name)

	assert.Equal(t, int32(3), h.srv.statusCalls.Load())
	assert.Equal(t, int32(1), h.srv.filesCalls.Load())

	_, active := h.ctrl.Active()
	assert.False(t, active)
}

func TestPolling_ErrorSequence(t *testing.T) {
	h := newHarness(t, &fakeServer{
		statuses: []any{
			model.StatusResponse{Status: model.StatusDownloading, Progress: 0},
			model.StatusResponse{Status: model.StatusError, Error: "disk full"},
		},
	})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))

	h.ticker.tick(t)
	h.ticker.tick(t)
	h.ctrl.Wait()

	assert.True(t, h.ticker.stopped.Load())
	h.ticker.assertNoListener(t)

	snap := h.view.snapshot()
	assert.Equal(t, "Error: disk full", snap.message)
	assert.True(t, snap.enabled)
	assert.Zero(t, snap.cleared)
	assert.Zero(t, h.srv.filesCalls.Load())

	_, active := h.ctrl.Active()
	assert.False(t, active)
}

func TestPolling_ErrorWithoutMessage(t *testing.T) {
	h := newHarness(t, &fakeServer{
		statuses: []any{model.StatusResponse{Status: model.StatusError}},
	})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))
	h.ticker.tick(t)
	h.ctrl.Wait()

	assert.Equal(t, "Error: Download failed", h.view.snapshot().message)
}

func TestPolling_TransientFailuresKeepPolling(t *testing.T) {
	h := newHarness(t, &fakeServer{
		statuses: []any{
			http.StatusInternalServerError,
			http.StatusOK, // 200 with a body that does not parse
			model.StatusResponse{Status: model.StatusDownloading, Progress: 30},
			model.StatusResponse{Status: model.StatusCompleted, Filename: "y.mp3"},
		},
	})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatAudio))

	h.ticker.tick(t)
	h.ticker.tick(t)

	// Failed ticks leave everything as it was.
	h.ticker.tick(t)
	_, active := h.ctrl.Active()
	assert.True(t, active)

	h.ticker.tick(t)
	h.ctrl.Wait()

	snap := h.view.snapshot()
	assert.Equal(t, []int{0, 30, 100}, snap.progress)
	assert.Equal(t, int32(4), h.srv.statusCalls.Load())
	assert.True(t, snap.enabled)
}

func TestPolling_ClampsProgress(t *testing.T) {
	h := newHarness(t, &fakeServer{
		statuses: []any{
			model.StatusResponse{Status: model.StatusDownloading, Progress: 140},
			model.StatusResponse{Status: model.StatusDownloading, Progress: -3},
		},
	})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))
	h.ticker.tick(t)
	h.ticker.tick(t)
	h.ticker.tick(t) // ensures the second tick has been rendered

	snap := h.view.snapshot()
	require.GreaterOrEqual(t, len(snap.progress), 3)
	assert.Equal(t, []int{0, 100, 0}, snap.progress[:3])
}

func TestClose_StopsPolling(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))
	h.ticker.tick(t)

	h.ctrl.Close()

	assert.True(t, h.ticker.stopped.Load())
	h.ticker.assertNoListener(t)
	_, active := h.ctrl.Active()
	assert.False(t, active)
}

func TestNewSessionAfterCompletion(t *testing.T) {
	h := newHarness(t, &fakeServer{
		statuses: []any{model.StatusResponse{Status: model.StatusCompleted, Filename: "a.mp4"}},
	})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))
	h.ticker.tick(t)
	h.ctrl.Wait()

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/b", model.FormatVideo))
	assert.Equal(t, int32(2), h.srv.startCalls.Load())
	h.ticker.tick(t)
	assert.Equal(t, int32(2), h.ticker.started.Load())
}

func TestClose_ReenablesStart(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	require.NoError(t, h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo))
	h.ticker.tick(t)
	require.False(t, h.view.snapshot().enabled)

	h.ctrl.Close()

	assert.True(t, h.view.snapshot().enabled)
}

func TestClose_IdleLeavesViewAlone(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	h.ctrl.Close()

	assert.Empty(t, h.view.snapshot().events)
}

func TestClose_DuringStartRequest(t *testing.T) {
	srv := &fakeServer{
		startGate:    make(chan struct{}),
		startEntered: make(chan struct{}),
	}
	h := newHarness(t, srv)

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo)
	}()

	select {
	case <-srv.startEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("start request never reached the server")
	}

	h.ctrl.Close()
	close(srv.startGate)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("StartDownload did not return after Close")
	}

	_, active := h.ctrl.Active()
	assert.False(t, active)
	assert.Zero(t, h.ticker.started.Load())
	assert.True(t, h.view.snapshot().enabled)
}

func TestStartDownload_AfterClose(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	h.ctrl.Close()
	err := h.ctrl.StartDownload(context.Background(), "https://youtu.be/a", model.FormatVideo)

	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, h.srv.startCalls.Load())
	assert.Empty(t, h.view.snapshot().events)
}

func TestLoadFiles_Empty(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	require.NoError(t, h.ctrl.LoadFiles(context.Background()))

	snap := h.view.snapshot()
	require.Len(t, snap.files, 1)
	assert.Empty(t, snap.files[0])
}

func TestLoadFiles_Entry(t *testing.T) {
	entry := model.FileEntry{Name: "clip.mp4", Size: 1536, URL: "/downloads/clip.mp4"}
	h := newHarness(t, &fakeServer{files: []model.FileEntry{entry}})

	require.NoError(t, h.ctrl.LoadFiles(context.Background()))

	snap := h.view.snapshot()
	require.Len(t, snap.files, 1)
	assert.Equal(t, []model.FileEntry{entry}, snap.files[0])
}

func TestLoadFiles_FailureKeepsList(t *testing.T) {
	h := newHarness(t, &fakeServer{filesCode: http.StatusInternalServerError})

	err := h.ctrl.LoadFiles(context.Background())
	require.Error(t, err)

	snap := h.view.snapshot()
	assert.Empty(t, snap.files)
	assert.Empty(t, snap.message)
}

func TestDefaultTicker(t *testing.T) {
	ch, stop := defaultTicker(5 * time.Millisecond)
	defer stop()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("default ticker did not fire")
	}
}

func TestClampProgress(t *testing.T) {
	tests := []struct{ in, want int }{{-1, 0}, {0, 0}, {50, 50}, {100, 100}, {101, 100}}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampProgress(tt.in), "clampProgress(%d)", tt.in)
	}
}

func TestSetMessages(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	msgs := DefaultMessages()
	msgs.EnterURL = "Пожалуйста, введите URL"
	h.ctrl.SetMessages(msgs)

	err := h.ctrl.StartDownload(context.Background(), "", model.FormatAudio)
	require.ErrorIs(t, err, ErrEmptyURL)
	assert.Equal(t, []string{"Пожалуйста, введите URL"}, h.view.snapshot().alerts)
}
