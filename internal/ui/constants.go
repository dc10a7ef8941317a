package ui

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconRefresh  = "⟳"
)

// Text fragments
const (
	ProgressLabelFormat = "%d%%"
	ErrorPrefix         = "Error: "
	SuccessFormat       = "%s (%s)"
)

// Layout sizing
const (
	WindowWidth     float32 = 640
	WindowHeight    float32 = 520
	SizeLabelWidth  float32 = 80
	FilesListHeight float32 = 220
)
