package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clashmap/internal/theme"
)

// ModalStyles groups the styles needed to render modal frames.
type ModalStyles struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Footer lipgloss.Style
}

// NewModalStyles derives modal styles from a palette.
func NewModalStyles(pal *theme.Palette) ModalStyles {
	return ModalStyles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.Accent).
			Background(pal.BgHighlight).
			Padding(1, 2),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(pal.Accent),
		Body:   lipgloss.NewStyle().Foreground(pal.Fg),
		Footer: lipgloss.NewStyle().Foreground(pal.FgMuted),
	}
}

// RenderModal renders a modal with the provided title, body lines and footer.
func RenderModal(title string, body []string, footer string, styles ModalStyles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	if len(body) > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.Body.Render(strings.Join(body, "\n")))
	}
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Footer.Render(footer))
	}
	return styles.Frame.Render(b.String())
}
