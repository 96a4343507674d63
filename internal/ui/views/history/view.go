package history

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "dailymile/internal/modules/history/dto"
	"dailymile/internal/ui/theme"
)

type Port interface {
	List(ctx context.Context, limit int) ([]historydto.DailyTotalOutput, error)
	Streak(ctx context.Context) (historydto.StreakOutput, error)
}

type LoadedMsg struct {
	Days   []historydto.DailyTotalOutput
	Streak historydto.StreakOutput
	Err    error
}

type dayItem struct {
	day       historydto.DailyTotalOutput
	qualifies bool
}

func (i dayItem) Title() string { return i.day.Day }
func (i dayItem) Description() string {
	mark := "  "
	if i.qualifies {
		mark = "✓ "
	}
	return fmt.Sprintf("%s%.2f mi", mark, i.day.Miles)
}
func (i dayItem) FilterValue() string { return i.day.Day }

type Model struct {
	port   Port
	days   int
	list   list.Model
	streak historydto.StreakOutput
	err    error
	width  int
	height int
}

func New(port Port, days int) Model {
	if days <= 0 {
		days = 30
	}
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Daily totals"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{port: port, days: days, list: l}
}

func (m Model) Init() tea.Cmd { return m.Load() }

func (m Model) Load() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{Err: fmt.Errorf("history is not configured")}
		}
		ctx := context.Background()
		days, err := m.port.List(ctx, m.days)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		streak, err := m.port.Streak(ctx)
		return LoadedMsg{Days: days, Streak: streak, Err: err}
	}
}

// Filtering reports whether the list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Streak() historydto.StreakOutput { return m.streak }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width/2, m.height)
		return m, nil
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.streak = msg.Streak
		items := make([]list.Item, len(msg.Days))
		for i, day := range msg.Days {
			items[i] = dayItem{day: day, qualifies: day.Miles >= msg.Streak.Threshold}
		}
		return m, m.list.SetItems(items)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	listPane := lipgloss.NewStyle().Width(m.width / 2).Height(m.height).Render(m.list.View())

	summary := theme.Title.Render("Streak") + "\n\n"
	if m.streak.Count > 0 {
		summary += theme.Done.Render(fmt.Sprintf("%d day(s)", m.streak.Count)) + "\n"
		summary += theme.Muted.Render("since "+m.streak.StartDate) + "\n"
	} else {
		summary += theme.Muted.Render("no active streak") + "\n"
	}
	summary += "\n" + theme.Muted.Render(fmt.Sprintf("a day counts at %.2f mi", m.streak.Threshold))
	if m.err != nil {
		summary += "\n\n" + theme.Bad.Render("error: "+m.err.Error())
	}
	detailPane := theme.Pane.Width(max(10, m.width-m.width/2-2)).Height(max(1, m.height-2)).Render(summary)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}
