package model

import "errors"

// Status is the server-reported state of a download.
type Status string

const (
	// StatusDownloading means the download is queued or in progress
	StatusDownloading Status = "downloading"

	// StatusCompleted means the file was downloaded and stored
	StatusCompleted Status = "completed"

	// StatusError means the download failed
	StatusError Status = "error"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if polling should stop on this status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Format selects what the server extracts from a URL.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
)

// DefaultFormat is used when a request carries no format.
const DefaultFormat = FormatVideo

// Formats returns the closed set of accepted formats in display order
func Formats() []Format {
	return []Format{FormatVideo, FormatAudio}
}

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// Valid reports whether f is one of the accepted formats
func (f Format) Valid() bool {
	return f == FormatVideo || f == FormatAudio
}

// ErrInvalidFormat is returned for formats outside the accepted set.
var ErrInvalidFormat = errors.New(`Format must be either "audio" or "video"`)

// ParseFormat converts s into a Format. An empty string yields DefaultFormat.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return DefaultFormat, nil
	}
	f := Format(s)
	if !f.Valid() {
		return "", ErrInvalidFormat
	}
	return f, nil
}
