package ui

// Package ui contains the Fyne desktop client. RootUI renders a download
// session and the server's file list, and forwards user actions to a
// session controller. All UI strings are localized via Localization.
