package today

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	progressdto "dailymile/internal/modules/progress/dto"
	"dailymile/internal/ui/theme"
)

// Port is the slice of the progress usecase the Today tab reads.
type Port interface {
	Show(ctx context.Context) (progressdto.SnapshotOutput, error)
	Status(ctx context.Context) (progressdto.StatusOutput, error)
}

type PollMsg struct{}

type LoadedMsg struct {
	Snapshot progressdto.SnapshotOutput
	Status   progressdto.StatusOutput
	Err      error
}

// Model polls the progress store at a fixed cadence, the way a foreground
// tracking screen does while an activity is running.
type Model struct {
	port     Port
	interval time.Duration
	spinner  spinner.Model
	snapshot progressdto.SnapshotOutput
	status   progressdto.StatusOutput
	err      error
	loaded   bool
	width    int
	height   int
}

func New(port Port, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{port: port, interval: interval, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Load(), m.spinner.Tick)
}

// Load reads the snapshot once, outside the polling cadence.
func (m Model) Load() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{Err: fmt.Errorf("progress is not configured")}
		}
		ctx := context.Background()
		snapshot, err := m.port.Show(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		status, err := m.port.Status(ctx)
		return LoadedMsg{Snapshot: snapshot, Status: status, Err: err}
	}
}

func (m Model) poll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return PollMsg{} })
}

func (m Model) Snapshot() progressdto.SnapshotOutput { return m.snapshot }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case PollMsg:
		return m, m.Load()
	case LoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.snapshot = msg.Snapshot
			m.status = msg.Status
		}
		return m, m.poll()
	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading today…")
	}
	s := m.snapshot
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Today") + "  " + theme.Muted.Render(s.TrackingDay) + "\n\n")

	barW := max(10, min(m.width-8, 48))
	sb.WriteString(theme.Bar(s.Progress, barW) + "\n\n")
	headline := fmt.Sprintf("%.2f / %.2f mi  (%.0f%%)", s.TotalDistance, s.GoalMiles, s.Progress*100)
	if s.IsCompleted {
		sb.WriteString(theme.Done.Render(headline+"  goal reached") + "\n")
	} else {
		sb.WriteString(theme.Hot.Render(headline) + "\n")
	}
	if remaining := s.GoalMiles - s.TotalDistance; remaining > 0 {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%.2f mi to go", remaining)) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(theme.Muted.Render("state:    ") + s.State + "\n")
	sb.WriteString(theme.Muted.Render("version:  ") + fmt.Sprintf("%d", s.Version) + "\n")
	updated := "never"
	if !s.LastUpdate.IsZero() {
		updated = s.LastUpdate.Local().Format("15:04:05")
	}
	sb.WriteString(theme.Muted.Render("updated:  ") + updated + "\n")
	if m.status.NeedsRefresh {
		sb.WriteString(theme.Hot.Render("refresh pending") + "\n")
	}
	if m.err != nil {
		sb.WriteString("\n" + theme.Bad.Render("error: "+m.err.Error()) + "\n")
	}
	return theme.Pane.Width(max(20, m.width-2)).Render(sb.String())
}
