package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/statshaus/internal/activity"
)

func TestView_LoadingBeforeFirstSnapshot(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(t, &countingFetcher{snap: testSnapshot})
	out := m.View(100, 40)

	for _, want := range []string{"Loading...", "Last fetched: never", "(Fetching every 6 seconds)", "Ordering by: name (desc)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_TableAndStatus(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(t, &countingFetcher{snap: testSnapshot})
	m.Init()
	completeFetch(t, m)
	m.Update(keyMsg("p"))

	out := m.View(100, 40)
	for _, want := range []string{"alice", "carol", "1 minute ago", "(Paused)", "User ▼", "Users per stream"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_ErrorHidesTable(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{snap: testSnapshot}
	m := newTestDashboard(t, f)
	m.Init()
	completeFetch(t, m)

	m.Update(keyMsg("p"))
	m.Update(keyMsg("f"))
	m.Update(fetchDoneMsg{err: errors.New("statsapi: fetch failed: 401 / Unauthorized")})

	out := m.View(100, 40)
	if !strings.Contains(out, "Couldn't load stats") || !strings.Contains(out, "401 / Unauthorized") {
		t.Fatalf("error banner missing:\n%s", out)
	}
	if strings.Contains(out, "alice") {
		t.Fatal("table rendered while error present")
	}

	m.Update(keyMsg("x"))
	if out := m.View(100, 40); !strings.Contains(out, "alice") {
		t.Fatal("table not restored after dismissal")
	}
}

func TestView_TooSmall(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(t, &countingFetcher{})
	if out := m.View(20, 5); !strings.Contains(out, "Terminal too small") {
		t.Fatalf("view = %q", out)
	}
}

func TestRenderStreamChart(t *testing.T) {
	t.Parallel()

	counts := activity.CountByStream(testSnapshot.Records)
	out := renderStreamChart(counts, 80)
	for _, want := range []string{"main", "side", "Users per stream"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q", want)
		}
	}

	if out := renderStreamChart(nil, 80); !strings.Contains(out, "No activity yet") {
		t.Errorf("empty chart = %q", out)
	}
}

func TestRenderStreamChart_CollapsesLongTail(t *testing.T) {
	t.Parallel()

	var counts []activity.StreamCount
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		counts = append(counts, activity.StreamCount{Stream: s, Count: 1})
	}
	out := renderStreamChart(counts, 80)
	if !strings.Contains(out, "+3 more") {
		t.Fatalf("chart missing overflow note:\n%s", out)
	}
}

func TestApp_RoutesInputAndBroadcastsTicks(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(t, &countingFetcher{snap: testSnapshot})
	app := NewApp(m, NewHelpPage(m.Keys()))
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	app.Update(keyMsg("?"))
	if app.ActivePage() != pageHelp {
		t.Fatalf("active page = %q, want help", app.ActivePage())
	}
	if out := app.View(); !strings.Contains(out, "sort by name") {
		t.Fatalf("help view missing bindings:\n%s", out)
	}

	// "p" on the help page must not reach the dashboard.
	app.Update(keyMsg("p"))
	if m.sched.State().Paused() {
		t.Fatal("key reached inactive dashboard")
	}

	app.Update(TickMsg(time.Now()))
	if got := *m.sched.State().TicksRemaining; got != 1 {
		t.Fatalf("ticks = %d, want 1 while help shown", got)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.ActivePage() != pageDashboard {
		t.Fatalf("active page = %q, want dashboard", app.ActivePage())
	}
}
