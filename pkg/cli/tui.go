package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal summaries.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Help  lipgloss.Style
	Box   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:  lipgloss.NewStyle().Foreground(t.Dim),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
	}
}

// Row is one labeled line of a Summary.
type Row struct {
	Label string
	Value string
}

// Summary renders a boxed title followed by aligned label/value rows and an
// optional dimmed footnote.
type Summary struct {
	Styles Styles
	Title  string
	Rows   []Row
	Note   string
}

// Render renders the summary to a string.
func (s Summary) Render() string {
	width := 0
	for _, r := range s.Rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	lines := []string{s.Styles.Title.Render(s.Title), ""}
	for _, r := range s.Rows {
		label := s.Styles.Label.Render(r.Label + strings.Repeat(" ", width-lipgloss.Width(r.Label)))
		lines = append(lines, label+"  "+r.Value)
	}
	if s.Note != "" {
		lines = append(lines, "", s.Styles.Help.Render(s.Note))
	}
	return s.Styles.Box.Render(strings.Join(lines, "\n"))
}
