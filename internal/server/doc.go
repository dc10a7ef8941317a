package server

// Package server exposes the download service and the file library over
// HTTP: JSON endpoints for starting and polling downloads, file listing and
// file serving, plus health and Prometheus endpoints.
