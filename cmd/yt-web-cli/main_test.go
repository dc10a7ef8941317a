package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/yt-web-downloader/internal/model"
)

func newServer(t *testing.T, final model.StatusResponse) *httptest.Server {
	t.Helper()

	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /download", func(w http.ResponseWriter, r *http.Request) {
		var req model.StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: "URL is required"})
			return
		}
		_ = json.NewEncoder(w).Encode(model.StartResponse{DownloadID: "abc", Status: model.StartedStatus})
	})
	mux.HandleFunc("GET /status/abc", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			_ = json.NewEncoder(w).Encode(model.StatusResponse{Status: model.StatusDownloading, Progress: 40})
			return
		}
		_ = json.NewEncoder(w).Encode(final)
	})
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.FileEntry{{Name: "clip.mp4", Size: 2048, URL: "/downloads/clip.mp4"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Completed(t *testing.T) {
	srv := newServer(t, model.StatusResponse{Status: model.StatusCompleted, Progress: 100, Filename: "clip.mp4"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-server", srv.URL, "-interval", "5ms", "https://example.com/v"}, &stdout, &stderr)

	assert.Equal(t, ExitSuccess, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "[yt-web] Starting video download... 0%")
	assert.Contains(t, out, "[yt-web] Downloading... 40%")
	assert.Contains(t, out, "[yt-web] Download completed! (clip.mp4)")
	assert.Contains(t, out, srv.URL+"/downloads/clip.mp4")
}

func TestRun_Failed(t *testing.T) {
	srv := newServer(t, model.StatusResponse{Status: model.StatusError, Error: "Unsupported URL"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-server", srv.URL, "-interval", "5ms", "-format", "audio", "https://example.com/v"}, &stdout, &stderr)

	assert.Equal(t, ExitDownloadFailed, code)
	assert.Contains(t, stdout.String(), "[yt-web] Starting audio download... 0%")
	assert.Contains(t, stdout.String(), "[yt-web] Error: Unsupported URL")
}

func TestRun_List(t *testing.T) {
	srv := newServer(t, model.StatusResponse{})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-server", srv.URL, "-list"}, &stdout, &stderr)

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), "clip.mp4")
	assert.Contains(t, stdout.String(), "2 KB")
}

func TestRun_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no url", []string{}},
		{"two urls", []string{"a", "b"}},
		{"bad format", []string{"-format", "flac", "https://example.com/v"}},
		{"bad server", []string{"-server", "not a url", "https://example.com/v"}},
		{"unknown flag", []string{"-nope"}},
		{"blank url", []string{"   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, ExitInvalidArgs, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-server", url, "https://example.com/v"}, &stdout, &stderr)
	assert.Equal(t, ExitServerNotReach, code)
	assert.Contains(t, stdout.String(), "[yt-web] Error: Download failed")
}
