package stubserver

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tinytelemetry/statshaus/internal/model"
)

var defaultUsers = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi",
	"ivan", "judy", "mallory", "niaj", "olivia", "peggy", "rupert", "sybil",
}

var defaultStreams = []string{"docker", "kubernetes", "terraform", "ansible"}

// Generator simulates per-user last activity. Each Advance moves a random
// subset of users to "now" on a random stream.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	users   []string
	streams []string
	last    map[string]model.RawActivity
	now     func() time.Time
}

// NewGenerator seeds every user with activity spread over the last hour.
// Empty users or streams fall back to built-in lists.
func NewGenerator(seed uint64, users, streams []string) *Generator {
	if len(users) == 0 {
		users = defaultUsers
	}
	if len(streams) == 0 {
		streams = defaultStreams
	}
	g := &Generator{
		rng:     rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
		users:   append([]string(nil), users...),
		streams: append([]string(nil), streams...),
		last:    make(map[string]model.RawActivity, len(users)),
		now:     time.Now,
	}

	now := g.now().Unix()
	for _, u := range g.users {
		g.last[u] = model.RawActivity{
			Timestamp: now - g.rng.Int64N(3600),
			Stream:    g.streams[g.rng.IntN(len(g.streams))],
		}
	}
	return g
}

// Advance touches roughly a third of the users.
func (g *Generator) Advance() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().Unix()
	for _, u := range g.users {
		if g.rng.IntN(3) != 0 {
			continue
		}
		g.last[u] = model.RawActivity{
			Timestamp: now,
			Stream:    g.streams[g.rng.IntN(len(g.streams))],
		}
	}
}

// Body returns the current state in the remote wire shape.
func (g *Generator) Body() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()

	activity := make(map[string][2]any, len(g.last))
	for name, a := range g.last {
		activity[name] = [2]any{a.Timestamp, a.Stream}
	}
	return map[string]any{
		"user2lastactivity": activity,
		"now":               g.now().Unix(),
	}
}
