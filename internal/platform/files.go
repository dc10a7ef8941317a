package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// PlaceholderFile keeps an otherwise empty downloads folder in version control.
const PlaceholderFile = ".gitkeep"

// File extensions yt-dlp uses for unfinished downloads
var (
	SkippedExtensions = []string{".part", ".ytdl"}
)

// Errors
var (
	ErrInvalidFileName = errors.New("invalid file name")
	ErrNoOutputFile    = errors.New("no downloaded file found")
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// ValidateFileName rejects names that could escape a flat directory
func ValidateFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}

// IsPartialFile reports whether name is an in-progress yt-dlp artifact
func IsPartialFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ReplaceExtension swaps the extension of path for ext (given with or without dot)
func ReplaceExtension(path, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// FindDownloadedFile returns the largest finished regular file in dir.
// Each task downloads into its own directory, so this is the task's output.
func FindDownloadedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read staging directory: %w", err)
	}

	var (
		best     string
		bestSize int64 = -1
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || IsPartialFile(entry.Name()) || entry.Name() == PlaceholderFile {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, entry.Name())
			bestSize = info.Size()
		}
	}

	if best == "" {
		return "", fmt.Errorf("%w in %s", ErrNoOutputFile, dir)
	}
	return best, nil
}
