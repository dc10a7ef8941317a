package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/juju/ratelimit"

	"github.com/ytget/yt-web-downloader/internal/download"
	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/platform"
	"github.com/ytget/yt-web-downloader/internal/render"
	"github.com/ytget/yt-web-downloader/internal/storage"
)

const maxRequestBody = 64 << 10

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, model.ErrorResponse{Error: msg})
}

func (s *Server) handleStartDownload(w http.ResponseWriter, r *http.Request) {
	var req model.StartRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := s.downloads.Start(req.URL, string(req.Format))
	switch {
	case errors.Is(err, download.ErrURLRequired), errors.Is(err, model.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, download.ErrShuttingDown):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.logger.Printf("Start download failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.StartResponse{
		DownloadID: task.ID,
		Status:     model.StartedStatus,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.downloads.Status(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, download.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task.Snapshot())
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.files.List(r.Context())
	if err != nil {
		s.logger.Printf("List files failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")

	rd, err := s.files.NewReader(r.Context(), name)
	switch {
	case errors.Is(err, platform.ErrInvalidFileName):
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	case errors.Is(err, storage.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "File not found")
		return
	case err != nil:
		s.logger.Printf("Open %s failed: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to open file")
		return
	}
	defer rd.Close()

	if ct := rd.ContentType(); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", strconv.FormatInt(rd.Size(), 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)

	var src io.Reader = rd
	if s.serveRate > 0 {
		src = ratelimit.Reader(rd, ratelimit.NewBucketWithRate(float64(s.serveRate), s.serveRate))
	}
	if _, err := io.Copy(w, src); err != nil && s.debug {
		s.logger.Printf("Serve %s interrupted: %v", name, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>YT Web Downloader</title>
</head>
<body>
<h1>YT Web Downloader</h1>
<p>Start downloads with <code>POST /download</code> or the desktop client.</p>
<h2>Downloaded files</h2>
<div id="filesList">{{.Files}}</div>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	files, err := s.files.List(r.Context())
	if err != nil {
		s.logger.Printf("List files failed: %v", err)
		files = nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// FileListHTML escapes every file name.
	data := struct{ Files template.HTML }{Files: template.HTML(render.FileListHTML(files))}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Printf("Render index failed: %v", err)
	}
}
