package tui

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/statshaus/internal/model"
)

// TickMsg is the dashboard heartbeat.
type TickMsg time.Time

type fetchDoneMsg struct {
	snapshot model.Snapshot
	err      error
}

// Init schedules the first tick and the initial fetch.
func (m *DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.sched.ManualRefresh() {
		cmds = append(cmds, m.fetchCmd(), m.startSpinnerIfNeeded())
	}
	return tea.Batch(cmds...)
}

func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchCmd runs one snapshot fetch off the Update loop and reports back
// with fetchDoneMsg. The scheduler must already have begun the attempt.
func (m *DashboardModel) fetchCmd() tea.Cmd {
	fetcher, ctx := m.fetcher, m.ctx
	return func() tea.Msg {
		snap, err := fetcher.FetchSnapshot(ctx)
		if err != nil {
			log.Printf("tui: fetch failed: %v", err)
		}
		return fetchDoneMsg{snapshot: snap, err: err}
	}
}

// Update handles messages.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return nil, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case TickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if m.sched.Tick() {
			cmds = append(cmds, m.fetchCmd(), m.startSpinnerIfNeeded())
		}
		// Relative "last seen" times age between fetches.
		m.refreshTable()
		return tea.Batch(cmds...), nil

	case fetchDoneMsg:
		m.sched.Complete(msg.snapshot, msg.err)
		return nil, nil

	case SpinnerTickMsg:
		return m.handleSpinnerTick(), nil
	}

	return nil, nil
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	st := m.sched.State()

	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		m.Close()
		return tea.Quit, nil

	case key.Matches(msg, m.keys.Help):
		return nil, &PageNav{PageID: pageHelp}

	case key.Matches(msg, m.keys.Dismiss):
		if st.Err != nil {
			m.sched.ClearError()
		}
		return nil, nil

	case key.Matches(msg, m.keys.Pause):
		if !st.Paused() {
			m.sched.Pause()
		}
		return nil, nil

	case key.Matches(msg, m.keys.Resume):
		if st.Paused() && m.sched.Resume(m.cfg.ResumeThreshold) {
			return tea.Batch(m.fetchCmd(), m.startSpinnerIfNeeded()), nil
		}
		return nil, nil

	case key.Matches(msg, m.keys.Refresh):
		if st.Paused() && m.sched.ManualRefresh() {
			return tea.Batch(m.fetchCmd(), m.startSpinnerIfNeeded()), nil
		}
		return nil, nil

	case key.Matches(msg, m.keys.SortName):
		m.sorter.OnSortClick(model.SortByName)
		m.refreshTable()
		return nil, nil

	case key.Matches(msg, m.keys.SortTime):
		m.sorter.OnSortClick(model.SortByTimestamp)
		m.refreshTable()
		return nil, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd, nil
}
