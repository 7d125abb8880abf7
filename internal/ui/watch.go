package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Source provides the state shown by the watch view
type Source interface {
	Seats(ctx context.Context, mask seat.Capability) ([]seat.Seat, error)
	Surfaces(ctx context.Context) ([]surface.Surface, error)
}

// Message types
type (
	snapshotMsg struct {
		seats    []seat.Seat
		surfaces []surface.Surface
		err      error
		at       time.Time
	}
	tickMsg time.Time
)

type watchKeys struct {
	Quit    key.Binding
	Refresh key.Binding
}

var defaultWatchKeys = watchKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// WatchModel polls a Source and renders seats and surfaces as live tables
type WatchModel struct {
	source   Source
	interval time.Duration
	timeout  time.Duration
	keys     watchKeys

	table   table.Model
	spinner spinner.Model

	seats     []seat.Seat
	surfaces  []surface.Surface
	err       error
	updated   time.Time
	loading   bool
	refreshes int
}

// NewWatchModel creates a watch view refreshing every interval
func NewWatchModel(source Source, interval time.Duration) *WatchModel {
	if interval <= 0 {
		interval = time.Second
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "SURFACE", Width: 10},
			{Title: "ACCEPTED SEATS", Width: 30},
			{Title: "FOCUS", Width: 26},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorSubtle).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	styles.Selected = styles.Selected.
		Foreground(ColorText).
		Background(ColorMuted).
		Bold(false)
	t.SetStyles(styles)

	return &WatchModel{
		source:   source,
		interval: interval,
		timeout:  interval,
		keys:     defaultWatchKeys,
		table:    t,
		spinner:  s,
		loading:  true,
	}
}

// Init starts the first refresh
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.spinner.Tick)
}

func (m *WatchModel) refresh() tea.Cmd {
	source, timeout := m.source, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		msg := snapshotMsg{at: time.Now()}
		msg.seats, msg.err = source.Seats(ctx, seat.All)
		if msg.err != nil {
			return msg
		}
		msg.surfaces, msg.err = source.Surfaces(ctx)
		return msg
	}
}

// startRefresh starts a refresh unless one is already running
func (m *WatchModel) startRefresh() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	return m.refresh()
}

func (m *WatchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles incoming messages
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.startRefresh()
		}

	case tickMsg:
		return m, m.startRefresh()

	case snapshotMsg:
		m.loading = false
		m.refreshes++
		m.updated = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.seats = msg.seats
			m.surfaces = msg.surfaces
			rows := make([]table.Row, 0, len(msg.surfaces))
			for _, s := range msg.surfaces {
				rows = append(rows, table.Row(SurfaceRow(s)))
			}
			m.table.SetRows(rows)
		}
		return m, m.scheduleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the watch screen
func (m *WatchModel) View() string {
	var b strings.Builder

	status := SubtleStyle.Render("waiting for compositor")
	if !m.updated.IsZero() {
		status = SubtleStyle.Render("updated " + m.updated.Format("15:04:05"))
	}
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(FormatHeader("seatctl watch", status))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(FormatResult(false, fmt.Sprintf("refresh failed: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(m.seatLine())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(FormatControl("↑/↓", "select") + "  " +
		FormatControl("r", "refresh") + "  " +
		FormatControl("q", "quit"))
	b.WriteString("\n")

	return b.String()
}

func (m *WatchModel) seatLine() string {
	if len(m.seats) == 0 {
		return SubtleStyle.Render("no seats")
	}
	parts := make([]string, 0, len(m.seats))
	for _, s := range m.seats {
		parts = append(parts, InfoStyle.Render(s.Name)+SubtleStyle.Render(" ("+s.Capabilities.String()+")"))
	}
	return HeaderStyle.Render("Seats: ") + strings.Join(parts, "  ")
}

// RunWatch runs the watch view until the user quits
func RunWatch(source Source, interval time.Duration) error {
	p := tea.NewProgram(NewWatchModel(source, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
