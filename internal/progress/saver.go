package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/chemquest/internal/store"
)

// DefaultDebounce is how long the Saver waits for quiet before writing.
const DefaultDebounce = 750 * time.Millisecond

const writeTimeout = 10 * time.Second

// Saver writes profiles in the background. Schedule never blocks; bursts
// of updates are coalesced into one write of the latest profile per user.
// A failed write keeps the profile pending so the next Schedule retries it.
type Saver struct {
	repo     store.ProfileRepo
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]Profile
	lastErr error
	closed  bool

	writeMu sync.Mutex
	kick    chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) SaverOption {
	return func(s *Saver) { s.debounce = d }
}

// WithLogger sets the logger used for failed writes.
func WithLogger(l *slog.Logger) SaverOption {
	return func(s *Saver) { s.logger = l }
}

// NewSaver starts a Saver writing to repo.
func NewSaver(repo store.ProfileRepo, opts ...SaverOption) *Saver {
	s := &Saver{
		repo:     repo,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		pending:  make(map[string]Profile),
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	go s.run()
	return s
}

// Schedule queues p for writing, replacing any profile not yet written.
func (s *Saver) Schedule(p Profile) {
	c := p.Clone()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending[c.UserID] = c
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Flush writes every pending profile now. It returns the first write
// error; failed profiles stay pending unless a newer one was scheduled.
func (s *Saver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]Profile)
	s.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	var first error
	for userID, p := range batch {
		err := s.write(ctx, p)
		if err == nil {
			continue
		}
		s.logger.Warn("profile save failed", "user_id", userID, "error", err)
		if first == nil {
			first = err
		}
		s.mu.Lock()
		if _, newer := s.pending[userID]; !newer {
			s.pending[userID] = p
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.lastErr = first
	s.mu.Unlock()
	return first
}

// Err returns the error of the most recent write.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close stops the background loop after a final flush. It returns early
// if ctx is done first.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Flush(ctx)
}

func (s *Saver) run() {
	defer close(s.done)

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	for {
		select {
		case <-s.kick:
			timer.Reset(s.debounce)
		case <-timer.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			s.Flush(ctx)
			cancel()
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

func (s *Saver) write(ctx context.Context, p Profile) error {
	snap, err := ToSnapshot(p)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, snap)
}
