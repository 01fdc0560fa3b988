package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/sticky"
	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/pkg/adapters/memory"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/observability"
)

// Options are the flags shared by every command.
type Options struct {
	TreeFile string
	Debug    bool
	JSONLogs bool
}

// Session is an engine loaded for a CLI command, with the in-memory engine
// exposed for tracing and the last transition event captured.
type Session struct {
	Engine *sticky.Engine
	Trace  *memory.Engine
	Logger *slog.Logger

	mu   sync.Mutex
	last *domain.TransitionEvent
}

// CreateLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout reports).
func CreateLogger(opts Options) *slog.Logger {
	if opts.Debug {
		return logging.New(slog.LevelDebug, opts.JSONLogs)
	}
	return logging.NewNop()
}

// NewSession loads the tree file and wires an engine for CLI use.
func NewSession(opts Options, extra ...sticky.Option) (*Session, error) {
	if opts.TreeFile == "" {
		return nil, fmt.Errorf("a tree file is required (--file)")
	}

	s := &Session{Logger: CreateLogger(opts)}
	s.Trace = memory.NewEngine(memory.WithLogger(s.Logger))

	capture := domain.ObserverHooks{
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.last = e
		},
	}

	engineOpts := []sticky.Option{
		sticky.WithLogger(s.Logger),
		sticky.WithTransitionEngine(s.Trace),
		sticky.WithObserver(capture),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, sticky.WithObserver(observability.LogHooks(s.Logger)))
	}
	engineOpts = append(engineOpts, extra...)

	eng, err := sticky.NewFromFile(opts.TreeFile, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	s.Engine = eng
	return s, nil
}

// LastEvent returns the end event of the most recent transition.
func (s *Session) LastEvent() *domain.TransitionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
