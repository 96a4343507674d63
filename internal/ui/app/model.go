package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "dailymile/internal/modules/history/dto"
	notifydto "dailymile/internal/modules/notify/dto"
	progressdto "dailymile/internal/modules/progress/dto"
	widgetdto "dailymile/internal/modules/widget/dto"
	"dailymile/internal/ui/components"
	"dailymile/internal/ui/theme"
	historyview "dailymile/internal/ui/views/history"
	todayview "dailymile/internal/ui/views/today"
	widgetsview "dailymile/internal/ui/views/widgets"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type ProgressPort interface {
	Save(ctx context.Context, input progressdto.SaveInput) (progressdto.SaveOutput, error)
	Show(ctx context.Context) (progressdto.SnapshotOutput, error)
	Status(ctx context.Context) (progressdto.StatusOutput, error)
	Repair(ctx context.Context) (progressdto.RepairOutput, error)
	Refresh(ctx context.Context) error
}

type HistoryPort interface {
	List(ctx context.Context, limit int) ([]historydto.DailyTotalOutput, error)
	Streak(ctx context.Context) (historydto.StreakOutput, error)
}

type WidgetPort interface {
	List(ctx context.Context) ([]widgetdto.WidgetInfo, error)
	Reload(ctx context.Context, input widgetdto.ReloadInput) (widgetdto.ReloadOutput, error)
}

type NotifyPort interface {
	ScheduleReminder(ctx context.Context) (notifydto.ReminderOutput, error)
	PresentReminder(ctx context.Context, scheduled notifydto.ReminderOutput) (notifydto.PresentOutput, error)
}

// Ports groups the usecases the dashboard talks to. Nil ports disable the
// matching palette commands.
type Ports struct {
	Progress ProgressPort
	History  HistoryPort
	Widgets  WidgetPort
	Notify   NotifyPort
}

type Options struct {
	PollInterval time.Duration
	HistoryDays  int
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabToday tabID = iota
	tabHistory
	tabWidgets
	tabCount
)

var tabLabels = [tabCount]string{"Today", "History", "Widgets"}

var paletteHints = []string{
	"progress:save <miles> [goal]",
	"progress:force <miles> [goal]",
	"progress:repair",
	"progress:refresh",
	"widget:reload [all]",
	"notify:reminder",
}

// ─── async messages ───────────────────────────────────────────────────────────

type savedMsg struct {
	out progressdto.SaveOutput
	err error
}

type repairedMsg struct {
	out progressdto.RepairOutput
	err error
}

type refreshedMsg struct{ err error }

type reminderMsg struct {
	out notifydto.PresentOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Reload  key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Reload:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "reload widgets")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Reload},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; everything else is delegated to ports and views.
type Model struct {
	ports Ports

	todayView   todayview.Model
	historyView historyview.Model
	widgetView  widgetsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(ports Ports, opts Options) Model {
	var widgetPort widgetsview.Port
	if ports.Widgets != nil {
		widgetPort = ports.Widgets
	}
	var todayPort todayview.Port
	if ports.Progress != nil {
		todayPort = ports.Progress
	}
	var historyPort historyview.Port
	if ports.History != nil {
		historyPort = ports.History
	}
	return Model{
		ports:       ports,
		todayView:   todayview.New(todayPort, opts.PollInterval),
		historyView: historyview.New(historyPort, opts.HistoryDays),
		widgetView:  widgetsview.New(widgetPort),
		activeTab:   tabToday,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(paletteHints),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.todayView.Init(),
		m.historyView.Init(),
		m.widgetView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	// Background messages go to their owning view regardless of the tab.
	case todayview.PollMsg, todayview.LoadedMsg:
		var cmd tea.Cmd
		m.todayView, cmd = m.todayView.Update(msg)
		return m, cmd
	case historyview.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd
	case widgetsview.LoadedMsg, widgetsview.ReloadedMsg:
		var cmd tea.Cmd
		m.widgetView, cmd = m.widgetView.Update(msg)
		return m, cmd

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		s := msg.out.Snapshot
		m.status = fmt.Sprintf("saved %.2f/%.2f mi (v%d, %s)", s.TotalDistance, s.GoalMiles, s.Version, msg.out.Scope)
		if msg.out.CompletionNotified {
			m.status += "  goal reached"
		}
		return m, tea.Batch(m.todayView.Load(), m.historyView.Load())

	case repairedMsg:
		switch {
		case msg.err != nil:
			m.status = "repair failed: " + msg.err.Error()
		case msg.out.Repaired:
			m.status = fmt.Sprintf("snapshot repaired (v%d)", msg.out.Snapshot.Version)
		default:
			m.status = "snapshot already valid"
		}
		return m, m.todayView.Load()

	case refreshedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		} else {
			m.status = "refreshed"
		}
		return m, tea.Batch(m.todayView.Load(), m.historyView.Load())

	case reminderMsg:
		switch {
		case msg.err != nil:
			m.status = "reminder failed: " + msg.err.Error()
		case msg.out.Suppressed:
			m.status = "reminder suppressed, goal already reached"
		default:
			m.status = msg.out.Reminder.Title + ": " + msg.out.Reminder.Body
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewFiltering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "r":
			switch m.activeTab {
			case tabToday:
				return m, m.todayView.Load()
			case tabHistory:
				return m, m.historyView.Load()
			}
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabToday:
		m.todayView, cmd = m.todayView.Update(msg)
	case tabHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case tabWidgets:
		m.widgetView, cmd = m.widgetView.Update(msg)
	}
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabToday:
		return m.todayView.View()
	case tabHistory:
		return m.historyView.View()
	case tabWidgets:
		return m.widgetView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "dailymile  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if s := m.todayView.Snapshot(); s.IsCompleted {
		left = theme.Done.Render("● goal") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "progress:save", "progress:force":
		if m.ports.Progress == nil {
			m.status = "progress is not configured"
			return m, nil
		}
		if len(parts) < 2 {
			m.status = "usage: " + parts[0] + " <miles> [goal]"
			return m, nil
		}
		in := progressdto.SaveInput{Force: parts[0] == "progress:force"}
		var err error
		if in.DistanceMiles, err = strconv.ParseFloat(parts[1], 64); err != nil {
			m.status = "invalid miles: " + parts[1]
			return m, nil
		}
		if len(parts) >= 3 {
			if in.GoalMiles, err = strconv.ParseFloat(parts[2], 64); err != nil {
				m.status = "invalid goal: " + parts[2]
				return m, nil
			}
		}
		return m, m.saveCmd(in)

	case "progress:repair":
		if m.ports.Progress == nil {
			m.status = "progress is not configured"
			return m, nil
		}
		return m, m.repairCmd()

	case "progress:refresh":
		if m.ports.Progress == nil {
			m.status = "progress is not configured"
			return m, nil
		}
		return m, m.refreshCmd()

	case "widget:reload":
		m.activeTab = tabWidgets
		all := len(parts) >= 2 && parts[1] == "all"
		return m, m.widgetView.ReloadAll(all)

	case "notify:reminder":
		if m.ports.Notify == nil {
			m.status = "notifications are not configured"
			return m, nil
		}
		return m, m.reminderCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabHistory:
		return m.historyView.Filtering()
	case tabWidgets:
		return m.widgetView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.todayView, _ = m.todayView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
	m.widgetView, _ = m.widgetView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) saveCmd(in progressdto.SaveInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Progress.Save(context.Background(), in)
		return savedMsg{out: out, err: err}
	}
}

func (m Model) repairCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Progress.Repair(context.Background())
		return repairedMsg{out: out, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: m.ports.Progress.Refresh(context.Background())}
	}
}

func (m Model) reminderCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		scheduled, err := m.ports.Notify.ScheduleReminder(ctx)
		if err != nil {
			return reminderMsg{err: err}
		}
		out, err := m.ports.Notify.PresentReminder(ctx, scheduled)
		return reminderMsg{out: out, err: err}
	}
}
