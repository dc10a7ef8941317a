package client

// Package client is a typed HTTP client for the download server API:
// starting a download, polling its status, and listing stored files.
// It performs exactly one request per call; there is no retry policy.
