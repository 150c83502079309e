package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100
)

// Vertical space reserved around the main content: header, command bar,
// summary line and footer.
const chromeHeight = 6

// DefaultUIInterval is how often the header clock is re-rendered.
const DefaultUIInterval = time.Second
