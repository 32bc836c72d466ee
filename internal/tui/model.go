package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"

	"github.com/tinytelemetry/statshaus/internal/activity"
	"github.com/tinytelemetry/statshaus/internal/model"
	"github.com/tinytelemetry/statshaus/internal/poller"
)

// Config holds the dashboard's polling parameters.
type Config struct {
	TickInterval    time.Duration
	FetchThreshold  int
	ResumeThreshold int
	Endpoint        string // shown in the footer
}

// DashboardModel is the activity dashboard page. The scheduler and sort
// engine are only touched from Update, so they need no extra locking.
type DashboardModel struct {
	cfg     Config
	fetcher model.SnapshotFetcher
	ctx     context.Context // cancelled by Close; bounds in-flight fetches
	cancel  context.CancelFunc
	sched   *poller.Scheduler
	sorter  *activity.SortEngine

	keys  KeyMap
	help  help.Model
	table table.Model

	records     []model.ActivityRecord // committed sort order
	streams     []activity.StreamCount
	fetchedAt   int64
	hasSnapshot bool

	width  int
	height int

	spinnerActive bool
	now           func() time.Time
}

// NewDashboardModel creates a dashboard that polls fetcher.
func NewDashboardModel(fetcher model.SnapshotFetcher, cfg Config) *DashboardModel {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = model.DefaultTickInterval
	}
	if cfg.FetchThreshold < 0 {
		cfg.FetchThreshold = model.DefaultFetchThreshold
	}
	if cfg.ResumeThreshold < 0 {
		cfg.ResumeThreshold = model.DefaultResumeThreshold
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &DashboardModel{
		cfg:     cfg,
		fetcher: fetcher,
		ctx:     ctx,
		cancel:  cancel,
		sched:   poller.NewScheduler(cfg.FetchThreshold),
		sorter:  activity.NewSortEngine(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		now:     time.Now,
	}
	m.table = newActivityTable()

	m.sched.Subscribe(m.onSchedulerEvent)
	m.sorter.OnCommit(m.onSortCommit)
	m.refreshTable()
	return m
}

// Keys returns the dashboard key bindings.
func (m *DashboardModel) Keys() KeyMap {
	return m.keys
}

func (m *DashboardModel) ID() string { return pageDashboard }

func (m *DashboardModel) onSchedulerEvent(e poller.Event) {
	if e.Kind != poller.EventSnapshot || e.Snapshot == nil {
		return
	}
	m.fetchedAt = e.Snapshot.FetchedAt
	m.hasSnapshot = true
	m.sorter.SetRecords(e.Snapshot.Records)
}

func (m *DashboardModel) onSortCommit(records []model.ActivityRecord) {
	m.records = records
	m.streams = activity.CountByStream(records)
	m.refreshTable()
}

// fetchPeriod is the wall-clock time between tick-driven fetches: the
// countdown runs from 0 to threshold and fetches on the following tick.
func fetchPeriod(threshold int, tick time.Duration) time.Duration {
	return time.Duration(threshold+1) * tick
}

// Close cancels any in-flight fetch. It is safe to call more than once.
func (m *DashboardModel) Close() {
	m.cancel()
}
