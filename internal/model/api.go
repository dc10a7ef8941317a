package model

// StartRequest is the body of POST /download.
type StartRequest struct {
	URL    string `json:"url"`
	Format Format `json:"format"`
}

// StartResponse is returned by POST /download on success.
type StartResponse struct {
	DownloadID string `json:"download_id"`
	Status     string `json:"status"`
}

// StatusResponse is returned by GET /status/{id}.
type StatusResponse struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FileEntry is one row of GET /files.
type FileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StartedStatus is the status string in StartResponse.
const StartedStatus = "started"
