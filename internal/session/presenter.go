package session

import "github.com/ytget/yt-web-downloader/internal/model"

// Presenter renders controller state. Implementations must be safe to call
// from any goroutine; the poll task calls them from its own goroutine.
type Presenter interface {
	// ShowStatus renders an in-progress banner with progress in 0..100.
	ShowStatus(message string, progress int)

	// ShowSuccess renders "<message> (<filename>)" with a full progress bar.
	ShowSuccess(message, filename string)

	// ShowError renders "Error: <message>" with an empty progress bar.
	ShowError(message string)

	// SetStartEnabled toggles the start control.
	SetStartEnabled(enabled bool)

	// ClearURL empties the URL input.
	ClearURL()

	// Alert shows a blocking notice to the user.
	Alert(message string)

	// RenderFiles replaces the file list. An empty slice is the empty state.
	RenderFiles(files []model.FileEntry)
}

// Messages are the user-facing strings the controller emits.
type Messages struct {
	EnterURL       string
	Starting       string // fmt pattern, receives the format name
	Downloading    string
	Completed      string
	DownloadFailed string
}

// DefaultMessages returns the English message set.
func DefaultMessages() Messages {
	return Messages{
		EnterURL:       "Please enter a URL",
		Starting:       "Starting %s download...",
		Downloading:    "Downloading...",
		Completed:      "Download completed!",
		DownloadFailed: "Download failed",
	}
}
