// Package console renders a download session as plain text lines for the
// headless client.
package console

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/render"
)

// Prefix starts every line the presenter writes.
const Prefix = "[yt-web]"

// Presenter writes session updates to an io.Writer. Repeated progress
// values are collapsed into a single line.
type Presenter struct {
	mu           sync.Mutex
	out          io.Writer
	baseURL      string
	lastMessage  string
	lastProgress int
	failed       bool
	succeeded    bool
}

// NewPresenter creates a Presenter writing to out. baseURL, when set, is
// prefixed to relative file links.
func NewPresenter(out io.Writer, baseURL string) *Presenter {
	return &Presenter{out: out, baseURL: baseURL, lastProgress: -1}
}

func (p *Presenter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, Prefix+" "+format+"\n", args...)
}

// ShowStatus prints the message and progress when either changed.
func (p *Presenter) ShowStatus(message string, progress int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if message == p.lastMessage && progress == p.lastProgress {
		return
	}
	p.lastMessage, p.lastProgress = message, progress
	p.printf("%s %d%%", message, progress)
}

// ShowSuccess prints the completion line.
func (p *Presenter) ShowSuccess(message, filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.succeeded = true
	p.lastMessage, p.lastProgress = "", -1
	p.printf("%s (%s)", message, filename)
}

// ShowError prints the failure line and marks the session failed.
func (p *Presenter) ShowError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
	p.lastMessage, p.lastProgress = "", -1
	p.printf("Error: %s", message)
}

// SetStartEnabled is a no-op; there is no start control.
func (p *Presenter) SetStartEnabled(bool) {}

// ClearURL is a no-op; the URL comes from the command line.
func (p *Presenter) ClearURL() {}

// Alert prints message.
func (p *Presenter) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("%s", message)
}

// RenderFiles prints the file list as an aligned table.
func (p *Presenter) RenderFiles(files []model.FileEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(files) == 0 {
		p.printf("%s", render.EmptyFilesMessage)
		return
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, render.FormatBytes(f.Size), p.baseURL+f.URL)
	}
	tw.Flush()
}

// Failed reports whether an error was shown.
func (p *Presenter) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Succeeded reports whether a completion was shown.
func (p *Presenter) Succeeded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.succeeded
}
