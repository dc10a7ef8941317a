package session

// Package session implements the download session controller: it submits a
// download, polls the server once per interval until the download reaches a
// terminal status, and drives a Presenter. At most one session is active per
// controller.
