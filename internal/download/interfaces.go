package download

import (
	"context"

	"github.com/ytget/yt-web-downloader/internal/model"
)

// Downloader is what the HTTP layer needs from the download service.
type Downloader interface {
	Start(url, format string) (*model.DownloadTask, error)
	Status(id string) (*model.DownloadTask, error)
	Tasks() []*model.DownloadTask
}

// FetchRequest describes one yt-dlp invocation.
type FetchRequest struct {
	URL    string
	Format model.Format
	// Dir is a per-task staging directory the fetcher writes into
	Dir string
}

// Progress is reported by a Fetcher while it runs.
type Progress struct {
	Downloaded int64
	Total      int64 // 0 when unknown
	Title      string
}

// Fetcher downloads media for a request into req.Dir.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest, progress func(Progress)) error
}

// Importer moves a finished staged file into permanent storage and returns
// its stored name and size.
type Importer interface {
	Import(ctx context.Context, path string) (string, int64, error)
}

// Recorder receives download lifecycle events, typically for metrics.
type Recorder interface {
	DownloadStarted(format string)
	DownloadRunning(delta int)
	DownloadFinished(status string)
	FileStored(size int64)
}
