package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Done  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Bad   = lipgloss.NewStyle().Foreground(Red)

	barFilled = lipgloss.NewStyle().Foreground(Green)
	barEmpty  = lipgloss.NewStyle().Foreground(Surface1)
)

// Bar renders fraction in [0,1] as a horizontal meter of width cells.
func Bar(fraction float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := int(fraction*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	out := ""
	for i := 0; i < width; i++ {
		if i < filled {
			out += barFilled.Render("█")
		} else {
			out += barEmpty.Render("░")
		}
	}
	return out
}
