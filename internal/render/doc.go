package render

// Package render holds the pure presentation helpers shared by every front
// end: human-readable byte sizes, HTML text escaping, and the HTML fragment
// for the downloaded-files list.
