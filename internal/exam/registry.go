package exam

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// ErrSessionNotFound is returned for an unknown or pruned session id.
var ErrSessionNotFound = errors.New("session not found")

// DefaultRetention is how long an ended session stays readable.
const DefaultRetention = time.Hour

// Registry tracks live and recently ended sessions by id.
type Registry struct {
	mu        sync.RWMutex
	runners   map[string]*Runner
	retention time.Duration

	// Interval overrides the tick interval of new runners. Zero means TickInterval.
	Interval time.Duration

	now   func() time.Time
	newID func() string
}

// NewRegistry creates a registry that forgets ended sessions after retention.
// A retention of zero or less uses DefaultRetention.
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		runners:   make(map[string]*Runner),
		retention: retention,
		now:       time.Now,
		newID:     func() string { return "session-" + uuid.NewString() },
	}
}

// Start begins a session for test and starts its countdown.
func (g *Registry) Start(test model.Test) *Runner {
	r := newRunner(g.newID(), NewSession(test), g.Interval)

	g.mu.Lock()
	g.runners[r.id] = r
	g.mu.Unlock()

	r.start()
	slog.Info("session started", "session", r.id, "test", test.ID,
		"questions", len(test.Questions), "duration_minutes", test.DurationMinutes)
	return r
}

// Get returns the runner for id.
func (g *Registry) Get(id string) (*Runner, error) {
	g.mu.RLock()
	r, ok := g.runners[id]
	g.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r, nil
}

// Remove cancels a running session and forgets it.
func (g *Registry) Remove(id string) error {
	g.mu.Lock()
	r, ok := g.runners[id]
	delete(g.runners, id)
	g.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	r.Cancel()
	r.halt()
	return nil
}

// Len returns the number of tracked sessions.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.runners)
}

// Prune forgets sessions that ended more than retention ago and returns how
// many were removed.
func (g *Registry) Prune() int {
	cutoff := g.now().Add(-g.retention)

	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for id, r := range g.runners {
		if at, ok := r.ended(); ok && at.Before(cutoff) {
			delete(g.runners, id)
			n++
		}
	}
	return n
}

// Run prunes on every interval until ctx is done, then stops all tickers.
func (g *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			g.Close()
			return
		case <-t.C:
			if n := g.Prune(); n > 0 {
				slog.Debug("pruned ended sessions", "count", n)
			}
		}
	}
}

// Close stops every ticker. Sessions keep their state but no longer count down.
func (g *Registry) Close() {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.runners {
		r.halt()
	}
}
