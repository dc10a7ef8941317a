package model

import (
	"time"

	"github.com/google/uuid"
)

// DownloadTask represents a single download tracked by the server
type DownloadTask struct {
	ID         string
	URL        string
	Format     Format
	Status     Status
	Percent    int       // 0 to 100
	Filename   string    // base name of the stored file
	LastError  string    // last error message if any
	Title      string    // video title, once known
	FileSize   int64     // stored size in bytes
	StartedAt  time.Time // when the task was accepted
	FinishedAt time.Time // when the task reached a terminal status
}

// NewDownloadTask creates a task in the downloading state at 0%
func NewDownloadTask(url string, format Format) *DownloadTask {
	return &DownloadTask{
		ID:        NewDownloadID(),
		URL:       url,
		Format:    format,
		Status:    StatusDownloading,
		StartedAt: time.Now(),
	}
}

// NewDownloadID returns a fresh opaque download identifier
func NewDownloadID() string {
	return uuid.NewString()
}

// Snapshot returns the wire representation of the task
func (dt *DownloadTask) Snapshot() StatusResponse {
	return StatusResponse{
		Status:   dt.Status,
		Progress: dt.Percent,
		Filename: dt.Filename,
		Error:    dt.LastError,
	}
}

// Clone returns a copy that is safe to read without the owner's lock
func (dt *DownloadTask) Clone() *DownloadTask {
	c := *dt
	return &c
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" {
		return dt.Title
	}
	if dt.Filename != "" {
		return dt.Filename
	}
	return dt.URL
}
