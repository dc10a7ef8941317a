package model

// Package model defines the data shared by the client and the server: the
// JSON shapes of the download API, download formats and statuses, and the
// server-side download task record.
