package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/platform"
)

// DownloadsRoute is the URL prefix files are served under.
const DownloadsRoute = "/downloads/"

// ErrFileNotFound is returned when a stored file does not exist.
var ErrFileNotFound = errors.New("storage: file not found")

// Library is the set of downloaded files.
type Library struct {
	bucket *blob.Bucket
}

// Open opens the library at bucketURL.
func Open(ctx context.Context, bucketURL string) (*Library, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	return NewLibrary(bucket), nil
}

// NewLibrary wraps an already opened bucket.
func NewLibrary(bucket *blob.Bucket) *Library {
	return &Library{bucket: bucket}
}

// DirBucketURL returns the fileblob URL for a local directory.
func DirBucketURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// List returns every stored file sorted by name. The placeholder file is
// never listed.
func (l *Library) List(ctx context.Context) ([]model.FileEntry, error) {
	files := make([]model.FileEntry, 0)

	iter := l.bucket.List(&blob.ListOptions{Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		if obj.IsDir || obj.Key == platform.PlaceholderFile {
			continue
		}
		files = append(files, model.FileEntry{
			Name: obj.Key,
			Size: obj.Size,
			URL:  FileURL(obj.Key),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FileURL returns the server path a file is downloadable from.
func FileURL(name string) string {
	return DownloadsRoute + url.PathEscape(name)
}

// Import moves the local file at path into the library under its base name
// and returns that name and the stored size.
func (l *Library) Import(ctx context.Context, path string) (string, int64, error) {
	name := filepath.Base(path)
	if err := platform.ValidateFileName(name); err != nil {
		return "", 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w, err := l.bucket.NewWriter(ctx, name, &blob.WriterOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", name, err)
	}

	size, copyErr := io.Copy(w, f)
	closeErr := w.Close()
	if copyErr != nil {
		return "", 0, fmt.Errorf("write %s: %w", name, copyErr)
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("write %s: %w", name, closeErr)
	}

	f.Close()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", 0, fmt.Errorf("remove staged %s: %w", path, err)
	}

	return name, size, nil
}

// NewReader opens a stored file for reading. The caller must close it.
func (l *Library) NewReader(ctx context.Context, name string) (*blob.Reader, error) {
	if err := platform.ValidateFileName(name); err != nil {
		return nil, err
	}
	if name == platform.PlaceholderFile {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	r, err := l.bucket.NewReader(ctx, name, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return r, nil
}

// Close releases the underlying bucket.
func (l *Library) Close() error {
	return l.bucket.Close()
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
