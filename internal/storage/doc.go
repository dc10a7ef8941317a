package storage

// Package storage keeps downloaded files in a gocloud blob bucket. The bucket
// URL selects the backend: file:///path for a local folder, mem:// for tests,
// or s3://bucket for S3-compatible object storage.
