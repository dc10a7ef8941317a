package model

import (
	"testing"
	"time"
)

func TestNewDownloadTask(t *testing.T) {
	before := time.Now()
	task := NewDownloadTask("https://youtube.com/watch?v=test", FormatAudio)

	if task.ID == "" {
		t.Error("Expected non-empty task ID")
	}

	if task.Status != StatusDownloading {
		t.Errorf("Expected status to be downloading, got %s", task.Status)
	}

	if task.Percent != 0 {
		t.Errorf("Expected progress 0, got %d", task.Percent)
	}

	if task.Format != FormatAudio {
		t.Errorf("Expected format audio, got %s", task.Format)
	}

	if task.StartedAt.Before(before) {
		t.Errorf("Expected StartedAt after %v, got %v", before, task.StartedAt)
	}
}

func TestNewDownloadID_Unique(t *testing.T) {
	id1 := NewDownloadID()
	id2 := NewDownloadID()

	if id1 == id2 {
		t.Error("Expected different download IDs")
	}

	if len(id1) != 36 {
		t.Errorf("Expected UUID length 36, got %d for ID: %s", len(id1), id1)
	}
}

func TestDownloadTask_Snapshot(t *testing.T) {
	task := &DownloadTask{
		Status:    StatusError,
		Percent:   42,
		Filename:  "clip.mp4",
		LastError: "disk full",
	}

	snap := task.Snapshot()
	if snap.Status != StatusError || snap.Progress != 42 || snap.Filename != "clip.mp4" || snap.Error != "disk full" {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}

func TestDownloadTask_Clone(t *testing.T) {
	task := &DownloadTask{ID: "a", Percent: 10}
	c := task.Clone()
	c.Percent = 90

	if task.Percent != 10 {
		t.Errorf("Clone should not alias the original, got %d", task.Percent)
	}
}

func TestDownloadTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		filename string
		url      string
		expected string
	}{
		{"Video Title", "video.mp4", "https://youtube.com/watch?v=123", "Video Title"},
		{"", "video.mp4", "https://youtube.com/watch?v=123", "video.mp4"},
		{"", "", "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
	}

	for _, test := range tests {
		task := &DownloadTask{Title: test.title, Filename: test.filename, URL: test.url}
		result := task.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', filename='%s' = '%s', expected '%s'",
				test.title, test.filename, result, test.expected)
		}
	}
}
