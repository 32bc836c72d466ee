package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/statshaus/internal/activity"
	"github.com/tinytelemetry/statshaus/internal/model"
)

// Poller is the narrow control contract required by the HTTP API.
// *poller.Service satisfies it.
type Poller interface {
	State() model.PollState
	Snapshot() (model.Snapshot, bool)
	Pause() bool
	Resume() bool
	Refresh() bool
	ClearError() bool
}

// Server exposes the daemon's activity view and poll controls over HTTP.
type Server struct {
	addr      string
	poller    Poller
	sorter    *activity.SortEngine
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server. The sort engine is expected to
// receive every new snapshot from the poller.
func NewServer(addr string, poller Poller, sorter *activity.SortEngine) *Server {
	if addr == "" {
		addr = model.DefaultAPIAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		poller:    poller,
		sorter:    sorter,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the gin engine with every API route.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/state", s.handleState)
	api.GET("/activity", s.handleActivity)
	api.POST("/pause", s.handlePause)
	api.POST("/resume", s.handleResume)
	api.POST("/refresh", s.handleRefresh)
	api.POST("/sort/:field", s.handleSort)
	api.DELETE("/error", s.handleClearError)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Addr returns the listen address, resolved once Start has bound it.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap, ok := s.poller.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"uptime":       time.Since(s.startTime).String(),
		"record_count": len(snap.Records),
		"has_snapshot": ok,
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.statePayload())
}

func (s *Server) statePayload() gin.H {
	st := s.poller.State()
	snap, _ := s.poller.Snapshot()
	return gin.H{
		"poll":       st,
		"paused":     st.Paused(),
		"sort":       s.sorter.State(),
		"fetched_at": snap.FetchedAt,
	}
}

func (s *Server) handleActivity(c *gin.Context) {
	st := s.poller.State()
	if st.Err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": st.Err})
		return
	}

	sortState := s.sorter.State()
	records := s.sorter.Sorted()

	if raw := c.Query("sort"); raw != "" {
		field, ok := model.ParseSortField(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be name or timestamp"})
			return
		}
		sortState = model.SortState{Field: field, Direction: model.DefaultSortDirection}
	}
	if raw := c.Query("dir"); raw != "" {
		switch model.SortDirection(raw) {
		case model.Ascending, model.Descending:
			sortState.Direction = model.SortDirection(raw)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "dir must be asc or desc"})
			return
		}
	}
	if sortState != s.sorter.State() {
		records = activity.Apply(records, sortState)
	}
	if records == nil {
		records = []model.ActivityRecord{}
	}

	snap, _ := s.poller.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"records":    records,
		"count":      len(records),
		"sort":       sortState,
		"fetched_at": snap.FetchedAt,
	})
}

func (s *Server) handlePause(c *gin.Context) {
	if !s.poller.Pause() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poller not running"})
		return
	}
	c.JSON(http.StatusOK, s.statePayload())
}

func (s *Server) handleResume(c *gin.Context) {
	started := s.poller.Resume()
	resp := s.statePayload()
	resp["fetch_started"] = started
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefresh(c *gin.Context) {
	started := s.poller.Refresh()
	resp := s.statePayload()
	resp["fetch_started"] = started
	if !started {
		c.JSON(http.StatusConflict, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSort(c *gin.Context) {
	field, ok := model.ParseSortField(c.Param("field"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort field must be name or timestamp"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sort": s.sorter.OnSortClick(field)})
}

func (s *Server) handleClearError(c *gin.Context) {
	if !s.poller.ClearError() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poller not running"})
		return
	}
	c.JSON(http.StatusOK, s.statePayload())
}
