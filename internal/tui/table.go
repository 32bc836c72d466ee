package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/statshaus/internal/model"
)

func newActivityTable() table.Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorWhite).
		Background(ColorNavy).
		Bold(false)
	t.SetStyles(s)
	return t
}

// sortIndicator marks the column the table is ordered by.
func sortIndicator(state model.SortState, field model.SortField) string {
	if state.Field != field {
		return ""
	}
	if state.Direction == model.Ascending {
		return " ▲"
	}
	return " ▼"
}

func (m *DashboardModel) columns() []table.Column {
	w := m.width
	if w <= 0 {
		w = 80
	}
	// Cell padding takes two columns per cell.
	avail := max(w-8, 30)
	nameW := avail * 2 / 5
	seenW := avail * 3 / 10
	streamW := avail - nameW - seenW

	st := m.sorter.State()
	return []table.Column{
		{Title: "User" + sortIndicator(st, model.SortByName), Width: nameW},
		{Title: "Last seen" + sortIndicator(st, model.SortByTimestamp), Width: seenW},
		{Title: "Stream", Width: streamW},
	}
}

func (m *DashboardModel) rows() []table.Row {
	now := m.now()
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, table.Row{r.Name, relativeTime(r.LastSeen(), now), r.Stream})
	}
	return rows
}

// refreshTable rebuilds headers and rows from the committed order.
func (m *DashboardModel) refreshTable() {
	m.table.SetColumns(m.columns())
	m.table.SetRows(m.rows())
}

func (m *DashboardModel) resizeTable() {
	m.table.SetWidth(max(m.width-2, 30))
	m.table.SetHeight(max(m.bodyHeight(), 3))
	m.refreshTable()
}

func relativeTime(then, now time.Time) string {
	return humanize.RelTime(then, now, "ago", "from now")
}
