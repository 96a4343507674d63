package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dailymile/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is a command-palette overlay backed by bubbles/textinput.
type Palette struct {
	input   textinput.Model
	hints   []string
	visible bool
	width   int
}

// NewPalette creates an inactive Palette that suggests hints by prefix.
func NewPalette(hints []string) Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 128
	return Palette{input: ti, hints: hints}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Matching returns at most five hints starting with the typed prefix.
func (p Palette) Matching() []string {
	prefix := strings.ToLower(p.input.Value())
	var matching []string
	for _, h := range p.hints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			matching = append(matching, h)
			if len(matching) == 5 {
				break
			}
		}
	}
	return matching
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if matching := p.Matching(); len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
