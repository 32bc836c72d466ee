package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/statshaus/internal/model"
)

var testNow = time.Unix(1_700_000_400, 0)

var testSnapshot = model.Snapshot{
	Records: []model.ActivityRecord{
		{Name: "alice", Timestamp: 1_700_000_300, Stream: "main"},
		{Name: "bob", Timestamp: 1_700_000_100, Stream: "side"},
		{Name: "carol", Timestamp: 1_700_000_200, Stream: "main"},
	},
	FetchedAt: 1_700_000_340,
}

// countingFetcher returns a fixed result and counts calls.
type countingFetcher struct {
	mu    sync.Mutex
	calls int
	snap  model.Snapshot
	err   error
}

func (f *countingFetcher) FetchSnapshot(_ context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, f.err
}

func (f *countingFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestDashboard(t *testing.T, f *countingFetcher) *DashboardModel {
	t.Helper()
	m := NewDashboardModel(f, Config{
		TickInterval:    2 * time.Second,
		FetchThreshold:  2,
		ResumeThreshold: 1,
		Endpoint:        "http://stub.local/stats/data.json",
	})
	m.now = func() time.Time { return testNow }
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// completeFetch runs the fetch the dashboard just began and delivers its
// result back through Update.
func completeFetch(t *testing.T, m *DashboardModel) {
	t.Helper()
	if !m.sched.State().InFlight {
		t.Fatal("no fetch in flight")
	}
	msg := m.fetchCmd()()
	m.Update(msg)
}

func recordNames(records []model.ActivityRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}
