package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// spinnerFrame picks a frame from the current time so it animates on re-render.
func spinnerFrame(now time.Time) string {
	return spinnerFrames[now.UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]
}

// renderLoadingPlaceholder renders an animated loading indicator.
func renderLoadingPlaceholder(now time.Time, width, height int) string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	text := loadingStyle.Render(spinnerFrame(now) + " Loading...")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// SpinnerTickMsg triggers a re-render for the loading spinner.
type SpinnerTickMsg struct{}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// handleSpinnerTick re-schedules spinner ticks while a fetch is in flight.
func (m *DashboardModel) handleSpinnerTick() tea.Cmd {
	if m.sched.State().InFlight {
		return spinnerTick()
	}
	m.spinnerActive = false
	return nil
}

// startSpinnerIfNeeded schedules a spinner tick unless one is already pending.
func (m *DashboardModel) startSpinnerIfNeeded() tea.Cmd {
	if m.spinnerActive || !m.sched.State().InFlight {
		return nil
	}
	m.spinnerActive = true
	return spinnerTick()
}
