package widgets

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	widgetdto "dailymile/internal/modules/widget/dto"
	"dailymile/internal/ui/theme"
)

// Port is the minimal interface this view needs from the widget usecase.
type Port interface {
	List(ctx context.Context) ([]widgetdto.WidgetInfo, error)
	Reload(ctx context.Context, input widgetdto.ReloadInput) (widgetdto.ReloadOutput, error)
}

type LoadedMsg struct {
	Widgets []widgetdto.WidgetInfo
	Err     error
}

type ReloadedMsg struct {
	Out widgetdto.ReloadOutput
	Err error
}

type widgetItem struct{ info widgetdto.WidgetInfo }

func (i widgetItem) Title() string { return i.info.Name }
func (i widgetItem) Description() string {
	state := "enabled"
	if !i.info.Enabled {
		state = "disabled"
	}
	return fmt.Sprintf("%s  %s  [%s]", i.info.Version, state, strings.Join(i.info.Kinds, ","))
}
func (i widgetItem) FilterValue() string { return i.info.Name }

type Model struct {
	port    Port
	list    list.Model
	output  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Widgets"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	vp.SetContent(theme.Muted.Render("enter: reload every widget"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, output: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd { return m.loadCmd() }

// Filtering reports whether the widget list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ReloadAll refreshes every widget, as a forced progress save would.
func (m *Model) ReloadAll(all bool) tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.reloadCmd(all), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*4/10, m.height)
		m.output.Width = m.width - m.width*4/10 - 4
		m.output.Height = m.height - 4

	case LoadedMsg:
		if msg.Err != nil {
			m.output.SetContent(theme.Bad.Render("Error loading widgets: " + msg.Err.Error()))
			return m, nil
		}
		items := make([]list.Item, len(msg.Widgets))
		for i, w := range msg.Widgets {
			items[i] = widgetItem{info: w}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case ReloadedMsg:
		m.loading = false
		m.output.SetContent(renderReload(msg.Out, msg.Err))
		m.output.GotoTop()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.Filtering() {
			cmds = append(cmds, m.ReloadAll(true))
			return m, tea.Batch(cmds...)
		}
	}

	var lCmd, vCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	m.output, vCmd = m.output.Update(msg)
	cmds = append(cmds, lCmd, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	body := m.output.View()
	if m.loading {
		body = m.spinner.View() + " Reloading…"
	}
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(10, m.width-listW-2)).
		Height(max(1, m.height-2)).
		Render(body)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func renderReload(out widgetdto.ReloadOutput, err error) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("reload scope=%s", out.Scope)) + "\n\n")
	for _, r := range out.Reloaded {
		if r.Error != "" {
			sb.WriteString(theme.Bad.Render(r.Name+": "+r.Error) + "\n")
			continue
		}
		sb.WriteString(theme.Hot.Render(r.Name) + "\n" + r.Rendered + "\n\n")
	}
	if len(out.Skipped) > 0 {
		sb.WriteString(theme.Muted.Render("skipped: "+strings.Join(out.Skipped, ", ")) + "\n")
	}
	if err != nil && len(out.Reloaded) == 0 {
		sb.WriteString(theme.Bad.Render("error: "+err.Error()) + "\n")
	}
	return sb.String()
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		widgets, err := m.port.List(context.Background())
		return LoadedMsg{Widgets: widgets, Err: err}
	}
}

func (m Model) reloadCmd(all bool) tea.Cmd {
	scope := widgetdto.ScopeTargeted
	if all {
		scope = widgetdto.ScopeAll
	}
	return func() tea.Msg {
		out, err := m.port.Reload(context.Background(), widgetdto.ReloadInput{Scope: scope})
		return ReloadedMsg{Out: out, Err: err}
	}
}
