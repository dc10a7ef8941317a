package platform

// Package platform contains filesystem helpers shared by the server: managed
// directories, file name validation, and locating the file yt-dlp produced
// inside a task's staging directory.
