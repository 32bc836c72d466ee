package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerLines = 2
	footerLines = 2
	minWidth    = 50
	minHeight   = 12
)

// showChart reports whether there is room for the stream chart.
func (m *DashboardModel) showChart() bool {
	return m.height >= minHeight+streamChartLines+4
}

// bodyHeight is what remains for the table or error banner.
func (m *DashboardModel) bodyHeight() int {
	h := m.height - headerLines - footerLines
	if m.showChart() {
		h -= streamChartLines
	}
	return h
}

// View renders the dashboard.
func (m *DashboardModel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Initializing dashboard..."
	}
	if width < minWidth || height < minHeight {
		return fmt.Sprintf("Terminal too small. Resize to at least %dx%d.", minWidth, minHeight)
	}
	if width != m.width || height != m.height {
		m.width, m.height = width, height
		m.resizeTable()
	}

	now := m.now()
	sections := []string{m.renderHeader(now)}

	bodyH := max(m.bodyHeight(), 3)
	switch st := m.sched.State(); {
	case st.Err != nil:
		sections = append(sections, m.renderErrorBanner(width, bodyH))
	case !m.hasSnapshot:
		sections = append(sections, renderLoadingPlaceholder(now, width, bodyH))
	default:
		sections = append(sections, lipgloss.NewStyle().Height(bodyH).Render(m.table.View()))
	}

	if m.showChart() {
		sections = append(sections, renderStreamChart(m.streams, width))
	}

	sections = append(sections, m.renderOrdering(width), m.renderStatusLine(width))
	return lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *DashboardModel) renderHeader(now time.Time) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Render("Willkommen bei StatsHaus!")

	info := m.lastFetchedText(now) + " " + helpStyle.Render(m.pollText())
	if m.sched.State().InFlight {
		info += " " + lipgloss.NewStyle().Foreground(ColorAmber).Render(spinnerFrame(now)+" fetching")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, info)
}

func (m *DashboardModel) lastFetchedText(now time.Time) string {
	if !m.hasSnapshot {
		return "Last fetched: never"
	}
	return "Last fetched: " + relativeTime(time.Unix(m.fetchedAt, 0), now)
}

func (m *DashboardModel) pollText() string {
	st := m.sched.State()
	if st.Paused() {
		return "(Paused)"
	}
	secs := int(fetchPeriod(st.Threshold, m.cfg.TickInterval).Seconds())
	return fmt.Sprintf("(Fetching every %d seconds)", secs)
}

func (m *DashboardModel) renderErrorBanner(width, height int) string {
	st := m.sched.State()
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Couldn't load stats :("),
		fmt.Sprintf("%s: %s", st.Err.Kind, st.Err.Message),
		"",
		helpStyle.Render("Press x to dismiss. Fetching stays stopped until then."),
	}
	banner := errorBannerStyle.Width(max(width-4, 20)).Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Height(height).Render(banner)
}

func (m *DashboardModel) renderOrdering(width int) string {
	st := m.sorter.State()
	left := fmt.Sprintf("Ordering by: %s (%s)", st.Field, st.Direction)
	right := helpStyle.Render(m.cfg.Endpoint)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 || m.cfg.Endpoint == "" {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderStatusLine renders the help and connection state at the bottom.
func (m *DashboardModel) renderStatusLine(width int) string {
	st := m.sched.State()

	var dot lipgloss.Style
	var state string
	switch {
	case st.Err != nil:
		dot, state = lipgloss.NewStyle().Foreground(ColorRed), "error"
	case st.InFlight:
		dot, state = lipgloss.NewStyle().Foreground(ColorAmber), "fetching"
	case st.Paused():
		dot, state = lipgloss.NewStyle().Foreground(ColorGray), "paused"
	default:
		dot, state = lipgloss.NewStyle().Foreground(ColorGreen), "live"
	}
	right := dot.Background(ColorNavy).Render("●") + statusBarStyle.Render(" "+state+" ")

	m.help.Width = max(width-lipgloss.Width(right)-2, 10)
	left := statusBarStyle.Render(" " + m.help.ShortHelpView(m.keys.ShortHelp()))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + statusBarStyle.Render(strings.Repeat(" ", gap)) + right
}
