package download

// Package download runs server-side downloads through yt-dlp
// (via github.com/lrstanley/go-ytdlp). It owns the task table, bounds
// concurrency, tracks progress, and hands finished files to the storage
// library.
