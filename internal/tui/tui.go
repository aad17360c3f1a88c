package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssephillip/newsleak/internal/distributor"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// DefaultInterval is how often the view polls its source.
const DefaultInterval = 200 * time.Millisecond

// Source is the run state shown by the view.
type Source interface {
	Counts() distributor.Counts
	Complete() bool
}

// Message types
type (
	// TickMsg triggers a poll of the source.
	TickMsg time.Time

	// DoneMsg is sent when the run has returned.
	DoneMsg struct {
		Err error
	}
)

// Model is the Bubble Tea model for the live view.
type Model struct {
	title    string
	src      Source
	cancel   context.CancelFunc
	interval time.Duration

	spinner  spinner.Model
	progress progress.Model

	counts      distributor.Counts
	start       time.Time
	complete    bool
	finished    bool
	interrupted bool
	err         error
}

// NewModel creates a view over src. cancel is called when the user quits.
func NewModel(title string, src Source, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		title:    title,
		src:      src,
		cancel:   cancel,
		interval: DefaultInterval,
		spinner:  sp,
		progress: prog,
		start:    time.Now(),
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(m.interval))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.finished {
				m.interrupted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}
		return m, nil

	case TickMsg:
		m.counts = m.src.Counts()
		m.complete = m.src.Complete()
		if m.finished {
			return m, nil
		}
		return m, tick(m.interval)

	case DoneMsg:
		m.counts = m.src.Counts()
		m.complete = m.src.Complete()
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	c := m.counts
	ratio := 1.0
	if c.Quota > 0 {
		ratio = float64(c.Done()) / float64(c.Quota)
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	case m.interrupted:
		b.WriteString(warningStyle.Render("Interrupted"))
	case m.finished || m.complete:
		b.WriteString(successStyle.Render("✓ Complete"))
	default:
		b.WriteString(m.spinner.View() + " Downloading")
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(ratio))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s  %s  %s\n",
		successStyle.Render(fmt.Sprintf("%d downloaded", c.Succeeded)),
		errorStyle.Render(fmt.Sprintf("%d failed", c.Failed)),
		dimStyle.Render(fmt.Sprintf("%d / %d", c.Done(), c.Quota)),
	)
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("%d of %d documents handed out | %s elapsed",
		c.Handed, c.Total, time.Since(m.start).Round(time.Second))))

	if !m.finished {
		b.WriteString("\n" + dimStyle.Render("q: stop"))
	}
	b.WriteString("\n")
	return b.String()
}

// Watch shows the view while run executes and returns run's error. The
// view closes when run returns or the user quits; in the latter case
// cancel is called and Watch still waits for run to return.
func Watch(title string, src Source, cancel context.CancelFunc, run func() error, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(NewModel(title, src, cancel), opts...)

	done := make(chan error, 1)
	go func() {
		err := run()
		done <- err
		p.Send(DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		if cancel != nil {
			cancel()
		}
		<-done
		return fmt.Errorf("tui: %w", err)
	}
	return <-done
}
