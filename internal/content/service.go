package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// DefaultTimeout bounds a single hydration.
const DefaultTimeout = 5 * time.Second

// ErrEmptyBank is reported when the remote bank has no usable questions.
var ErrEmptyBank = errors.New("remote bank has no usable questions")

// Hydrated is the outcome of Hydrate. Level is always playable. Offline is
// set when the remote bank could not be used and Level is the local copy;
// Err then says why.
type Hydrated struct {
	Level   curriculum.Level
	Offline bool
	Err     error
}

// Service hydrates levels from a Source.
type Service struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger
}

// NewService returns a Service. A nil source serves the local bundle only.
func NewService(source Source, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, timeout: timeout, logger: logger}
}

// Remote reports whether a remote source is configured.
func (s *Service) Remote() bool {
	return s.source != nil
}

// Hydrate replaces the stub's phases with the remote bank. It never fails:
// on any error the stub itself is returned with Offline set.
func (s *Service) Hydrate(ctx context.Context, stub curriculum.Level) Hydrated {
	if s.source == nil {
		return Hydrated{Level: stub}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	level, err := s.fetch(ctx, stub)
	if err != nil {
		s.logger.Warn("using local question bank", "level_id", stub.ID, "error", err)
		return Hydrated{Level: stub, Offline: true, Err: err}
	}
	return Hydrated{Level: level}
}

func (s *Service) fetch(ctx context.Context, stub curriculum.Level) (curriculum.Level, error) {
	phases, err := s.source.FetchPhases(ctx, stub.ID)
	if err != nil {
		return curriculum.Level{}, fmt.Errorf("fetch bank: %w", err)
	}

	var kept []curriculum.Phase
	for _, p := range phases {
		valid := p
		valid.Questions = nil
		for _, q := range p.Questions {
			if err := curriculum.ValidateQuestion(q); err != nil {
				s.logger.Warn("dropping malformed remote question",
					"level_id", stub.ID, "phase_id", p.ID, "question_id", q.ID, "error", err)
				continue
			}
			valid.Questions = append(valid.Questions, q)
		}
		if len(valid.Questions) > 0 {
			kept = append(kept, valid)
		}
	}
	if len(kept) == 0 {
		return curriculum.Level{}, ErrEmptyBank
	}

	level := stub.WithPhases(kept)
	if err := curriculum.ValidateLevel(level); err != nil {
		return curriculum.Level{}, err
	}
	return level, nil
}
