package session

import (
	"fmt"
	"sync"

	"github.com/ytget/yt-web-downloader/internal/model"
)

// recorder is a Presenter that keeps every call for assertions.
type recorder struct {
	mu       sync.Mutex
	events   []string
	progress []int
	message  string
	enabled  bool
	alerts   []string
	files    [][]model.FileEntry
	cleared  int
}

func newRecorder() *recorder {
	return &recorder{enabled: true}
}

func (r *recorder) ShowStatus(message string, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = message
	r.progress = append(r.progress, progress)
	r.events = append(r.events, fmt.Sprintf("status:%s:%d", message, progress))
}

func (r *recorder) ShowSuccess(message, filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = fmt.Sprintf("%s (%s)", message, filename)
	r.progress = append(r.progress, 100)
	r.events = append(r.events, "success:"+r.message)
}

func (r *recorder) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = "Error: " + message
	r.progress = append(r.progress, 0)
	r.events = append(r.events, "error:"+message)
}

func (r *recorder) SetStartEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	r.events = append(r.events, fmt.Sprintf("enabled:%v", enabled))
}

func (r *recorder) ClearURL() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
	r.events = append(r.events, "clear")
}

func (r *recorder) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
	r.events = append(r.events, "alert:"+message)
}

func (r *recorder) RenderFiles(files []model.FileEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, files)
	r.events = append(r.events, fmt.Sprintf("files:%d", len(files)))
}

func (r *recorder) snapshot() recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return recorder{
		events:   append([]string(nil), r.events...),
		progress: append([]int(nil), r.progress...),
		message:  r.message,
		enabled:  r.enabled,
		alerts:   append([]string(nil), r.alerts...),
		files:    append([][]model.FileEntry(nil), r.files...),
		cleared:  r.cleared,
	}
}
