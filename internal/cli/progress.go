package cli

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/docpipe/internal/service"
)

const pollInterval = 200 * time.Millisecond

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// statsSource reports pool progress.
type statsSource interface {
	Stats() service.Stats
}

// tickMsg triggers polling the pool counters
type tickMsg time.Time

// poolDoneMsg signals that the pool has drained
type poolDoneMsg struct{}

// progressModel is the bubbletea model for pool progress.
type progressModel struct {
	pool     statsSource
	total    int
	done     <-chan struct{}
	stats    service.Stats
	progress progress.Model
	theme    Theme
	finished bool
	quitting bool
}

func newProgressModel(pool statsSource, total int, done <-chan struct{}) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return progressModel{
		pool:     pool,
		total:    total,
		done:     done,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init starts polling and waits for the pool to drain.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitDone(m.done),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.stats = m.pool.Stats()
		return m, tickCmd()

	case poolDoneMsg:
		m.stats = m.pool.Stats()
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(1, float64(m.stats.Done())/float64(m.total))
}

func (m progressModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%d running, %d queued]", m.stats.Running, m.stats.Queued))
	bar := m.progress.ViewAs(m.percent())
	counts := fmt.Sprintf("%d/%d documents", m.stats.Done(), m.total)
	hint := m.theme.hintStyle().Render("Press q to stop submitting")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, hint)
}

func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nStopped submitting new documents.\n")
	}

	var b strings.Builder
	if m.stats.Failed > 0 || m.stats.Dropped > 0 {
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("✗ %d of %d documents failed", m.stats.Failed+m.stats.Dropped, m.total)))
	} else {
		b.WriteString(m.theme.completedStyle().Render("✓ Completed"))
	}
	b.WriteString("\n")
	return b.String()
}

// waitDone returns a command that fires once done is closed.
func waitDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return poolDoneMsg{}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunPoolProgress shows a progress bar until done is closed or the user
// quits. interrupted reports whether the user quit early.
func RunPoolProgress(pool *service.Pool, total int, done <-chan struct{}) (interrupted bool, err error) {
	p := tea.NewProgram(newProgressModel(pool, total, done))

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("progress UI error: %w", err)
	}
	if m, ok := finalModel.(progressModel); ok && m.quitting {
		return true, nil
	}
	return false, nil
}
