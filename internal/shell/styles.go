package shell

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#7C3AED")
	muted   = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#10B981")
	warning = lipgloss.Color("#F59E0B")
	danger  = lipgloss.Color("#EF4444")
)

// Styles decorates shell output. The zero value prints plain text.
type Styles struct {
	enabled bool

	Prompt  lipgloss.Style
	Title   lipgloss.Style
	Folder  lipgloss.Style
	File    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles returns the shell palette, or plain output when color is false.
func NewStyles(color bool) Styles {
	return Styles{
		enabled: color,

		Prompt:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		Title:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Folder:  lipgloss.NewStyle().Foreground(accent),
		File:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Success: lipgloss.NewStyle().Foreground(success).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(warning),
		Error:   lipgloss.NewStyle().Foreground(danger).Bold(true),
	}
}

func (s Styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}
