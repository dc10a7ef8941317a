package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/yt-web-downloader/internal/model"
)

// Common errors.
var (
	ErrNotFound      = errors.New("client: resource not found")
	ErrNoDownloadID  = errors.New("client: server returned no download id")
	ErrInvalidServer = errors.New("client: invalid server URL")
)

// API is the set of calls the session controller makes against the server.
type API interface {
	StartDownload(ctx context.Context, url string, format model.Format) (string, error)
	Status(ctx context.Context, downloadID string) (*model.StatusResponse, error)
	ListFiles(ctx context.Context) ([]model.FileEntry, error)
}

// APIError is returned for non-2xx responses. Message carries the server's
// "error" field when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ServerMessage returns the server-provided error text carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// Options configures the HTTP client.
type Options struct {
	// Timeout for individual requests. Zero means no timeout.
	Timeout time.Duration

	// Transport overrides the default transport.
	Transport http.RoundTripper
}

// Client talks to one download server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the server at serverURL (e.g. "http://localhost:5067").
func New(serverURL string, opts Options) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServer, serverURL)
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		client: &http.Client{
			Transport: opts.Transport,
			Timeout:   opts.Timeout,
		},
	}, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL turns a server-relative link (such as FileEntry.URL) into an absolute URL.
func (c *Client) ResolveURL(ref string) (*url.URL, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse link %q: %w", ref, err)
	}
	return base.ResolveReference(r), nil
}

// StartDownload issues POST /download and returns the server's download id.
func (c *Client) StartDownload(ctx context.Context, rawURL string, format model.Format) (string, error) {
	body, err := json.Marshal(model.StartRequest{URL: rawURL, Format: format})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var resp model.StartResponse
	if err := c.do(ctx, http.MethodPost, "/download", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if resp.DownloadID == "" {
		return "", ErrNoDownloadID
	}
	return resp.DownloadID, nil
}

// Status issues GET /status/{id}.
func (c *Client) Status(ctx context.Context, downloadID string) (*model.StatusResponse, error) {
	var resp model.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(downloadID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFiles issues GET /files.
func (c *Client) ListFiles(ctx context.Context) ([]model.FileEntry, error) {
	var files []model.FileEntry
	if err := c.do(ctx, http.MethodGet, "/files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// do performs a single request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er model.ErrorResponse
		if json.Unmarshal(data, &er) == nil {
			apiErr.Message = er.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
