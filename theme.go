package chatstream

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg   int // User message accent
	Assistant int // Assistant label
	Pending   int // Placeholder text while waiting for the first delta
	Error     int // Error messages
	Muted     int // Status bar, timestamps
	CodeBg    int // Code block background
	Accent    int // Headings, links
	Selected  int // Highlighted sidebar entry
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Assistant: 2,
		Pending:   8,
		Error:     1,
		Muted:     8,
		CodeBg:    0,
		Accent:    5,
		Selected:  6,
	}
}
