package exam

import (
	"log/slog"
	"sync"
	"time"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// TickInterval is the countdown resolution of a running session.
const TickInterval = time.Second

// Runner owns a Session and drives its countdown from a ticker. All methods
// are safe for concurrent use. Subscribers get the latest snapshot after every
// change; their channels are closed once the session ends.
type Runner struct {
	id       string
	interval time.Duration

	mu      sync.Mutex
	session *Session
	subs    map[int]chan Snapshot
	nextSub int
	endedAt time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newRunner(id string, s *Session, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = TickInterval
	}
	return &Runner{
		id:       id,
		interval: interval,
		session:  s,
		subs:     make(map[int]chan Snapshot),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// ID returns the session id.
func (r *Runner) ID() string { return r.id }

// Test returns the test being taken.
func (r *Runner) Test() model.Test {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Test()
}

// Done is closed once the ticker goroutine has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

func (r *Runner) start() {
	go r.loop()
}

func (r *Runner) loop() {
	defer close(r.done)
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
			r.mu.Lock()
			finalized := r.session.Tick()
			r.publishLocked()
			if finalized {
				slog.Info("session timed out", "session", r.id)
				r.endLocked()
			}
			r.mu.Unlock()
			if finalized {
				return
			}
		}
	}
}

// Snapshot returns the current observable state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Snapshot()
}

// SelectAnswer records option for the focused question.
func (r *Runner) SelectAnswer(option int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.session.SelectAnswer(option); err != nil {
		return err
	}
	r.publishLocked()
	return nil
}

// MoveTo focuses question index.
func (r *Runner) MoveTo(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.session.MoveTo(index); err != nil {
		return err
	}
	r.publishLocked()
	return nil
}

// Finish grades the session now. Repeat calls return the stored result.
// It fails with ErrNotRunning only for a cancelled session.
func (r *Runner) Finish() (model.TestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, first := r.session.Finish()
	if r.session.State() == StateCancelled {
		return model.TestResult{}, ErrNotRunning
	}
	if first {
		slog.Info("session finished", "session", r.id, "score", res.Score, "total", res.TotalQuestions)
		r.publishLocked()
		r.endLocked()
	}
	return res, nil
}

// Cancel abandons the session. It is a no-op once the session has ended.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session.State() != StateRunning {
		return
	}
	r.session.Cancel()
	slog.Info("session cancelled", "session", r.id)
	r.publishLocked()
	r.endLocked()
}

// Result returns the graded result once the session is finalized.
func (r *Runner) Result() (model.TestResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Result()
}

// Subscribe returns a channel carrying the latest snapshot, starting with the
// current one. Slow readers only ever see the newest snapshot. The channel is
// closed when the session ends or unsubscribe is called.
func (r *Runner) Subscribe() (<-chan Snapshot, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Snapshot, 1)
	ch <- r.session.Snapshot()
	if !r.endedAt.IsZero() {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

// ended reports when the session left Running.
func (r *Runner) ended() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endedAt, !r.endedAt.IsZero()
}

// halt stops the ticker without touching the session.
func (r *Runner) halt() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Runner) publishLocked() {
	snap := r.session.Snapshot()
	for _, ch := range r.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// endLocked stops the ticker and closes subscriber channels.
func (r *Runner) endLocked() {
	r.endedAt = time.Now()
	r.halt()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
