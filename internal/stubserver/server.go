// Package stubserver serves a fake stats endpoint with basic auth, for
// local development and tests.
package stubserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/statshaus/internal/model"
)

// DataPath is where the stub serves the activity payload.
const DataPath = "/stats/data.json"

// Config controls the stub server.
type Config struct {
	Addr     string
	Username string
	Password string
	Seed     uint64
	Users    []string
	Streams  []string
}

// Failure is a canned error response served instead of data.
type Failure struct {
	Status int
	Body   string
}

// Server is a stand-in for the remote stats endpoint.
type Server struct {
	addr     string
	accounts gin.Accounts
	gen      *Generator
	server   *http.Server
	listener net.Listener

	mu       sync.Mutex
	failures []Failure
	requests int
}

// NewServer creates a stub server. It does not listen until Start.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = model.DefaultStubAddr
	}
	if cfg.Username == "" {
		cfg.Username = "demo"
	}
	return &Server{
		addr:     cfg.Addr,
		accounts: gin.Accounts{cfg.Username: cfg.Password},
		gen:      NewGenerator(cfg.Seed, cfg.Users, cfg.Streams),
	}
}

// Handler builds the gin engine. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	authorized := r.Group("/", gin.BasicAuth(s.accounts))
	authorized.GET(DataPath, s.handleData)
	return r
}

// Start begins serving on the configured address.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("stubserver: listen: %w", err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.server.Serve(ln)
	log.Printf("stubserver: serving %s on %s", DataPath, ln.Addr())
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// FailNext queues canned failures, served in order before normal data resumes.
func (s *Server) FailNext(failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failures...)
}

// Requests returns how many authorized data requests were served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) handleData(c *gin.Context) {
	s.mu.Lock()
	s.requests++
	var failure *Failure
	if len(s.failures) > 0 {
		f := s.failures[0]
		s.failures = s.failures[1:]
		failure = &f
	}
	s.mu.Unlock()

	if failure != nil {
		c.String(failure.Status, failure.Body)
		return
	}

	s.gen.Advance()
	c.JSON(http.StatusOK, s.gen.Body())
}
