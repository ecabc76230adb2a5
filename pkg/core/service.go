package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// RefreshPolicy decides whether a failed mutation is still followed by a refresh.
type RefreshPolicy int

const (
	// RefreshOnSuccess refreshes only after the backend accepted the mutation.
	RefreshOnSuccess RefreshPolicy = iota
	// RefreshAlways refreshes regardless of the mutation outcome.
	RefreshAlways
)

func (p RefreshPolicy) String() string {
	switch p {
	case RefreshAlways:
		return "always"
	default:
		return "on_success"
	}
}

// ParseRefreshPolicy maps the configuration spelling of a policy.
// The empty string selects RefreshOnSuccess.
func ParseRefreshPolicy(s string) (RefreshPolicy, error) {
	switch s {
	case "", "on_success":
		return RefreshOnSuccess, nil
	case "always":
		return RefreshAlways, nil
	default:
		return RefreshOnSuccess, fmt.Errorf("unknown refresh policy %q (want on_success or always)", s)
	}
}

// DefaultEventBuffer is the per-watcher channel capacity when none is configured.
const DefaultEventBuffer = 100

// ServiceConfig holds the tunables of the Service.
type ServiceConfig struct {
	RefreshPolicy RefreshPolicy
	EventBuffer   int
	Logger        *slog.Logger
}

// Service sequences calls against the notes API: every mutation is followed
// by a refresh of the full list, issued only after the mutation completed.
type Service struct {
	api    API
	config ServiceConfig
	logger *slog.Logger

	mu            sync.RWMutex
	refreshGen    uint64
	cancelRefresh context.CancelCauseFunc
	watchers      map[chan Event]struct{}
	lastRefresh   *time.Time

	dropped atomic.Int64
}

// NewService creates a new Service.
func NewService(api API, config ServiceConfig) *Service {
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		api:      api,
		config:   config,
		logger:   logger,
		watchers: make(map[chan Event]struct{}),
	}
}

// ListNotes fetches the current note list. It never publishes events and is
// never cancelled by other calls.
func (s *Service) ListNotes(ctx context.Context) (NoteList, error) {
	return s.api.List(ctx)
}

// Refresh fetches the note list and publishes it to watchers.
// Starting a refresh cancels any refresh still in flight; the older call then
// returns ErrSuperseded.
func (s *Service) Refresh(ctx context.Context) (NoteList, error) {
	return s.refresh(ctx, EventRefresh)
}

// AddNote sends text to the backend as-is (empty strings included) and,
// once the backend has answered, refreshes the list.
func (s *Service) AddNote(ctx context.Context, text string) (NoteList, error) {
	return s.mutate(ctx, EventAdd, func(ctx context.Context) error {
		return s.api.Add(ctx, text)
	})
}

// DeleteNote removes a note by its backend ID and refreshes the list.
func (s *Service) DeleteNote(ctx context.Context, id int64) (NoteList, error) {
	return s.mutate(ctx, EventDelete, func(ctx context.Context) error {
		return s.api.Delete(ctx, id)
	})
}

// Health reports the backend health if the API exposes it.
func (s *Service) Health(ctx context.Context) (Health, error) {
	hc, ok := s.api.(HealthChecker)
	if !ok {
		return Health{}, errors.New("backend does not support health checks")
	}
	return hc.Health(ctx)
}

// Watch subscribes to the events published after each refresh.
// The subscription, and the goroutine that tears it down, live until ctx is
// done: callers must pass a cancelable ctx and cancel it once they stop
// reading. The channel is closed at that point. A watcher that falls behind by more
// than the configured buffer misses events instead of stalling the Service.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan Event, s.config.EventBuffer)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *Service) mutate(ctx context.Context, kind EventType, op func(context.Context) error) (NoteList, error) {
	opErr := op(ctx)
	if opErr != nil {
		if s.config.RefreshPolicy != RefreshAlways {
			return nil, opErr
		}
		s.logger.Warn("mutation failed, refreshing anyway", "op", kind, "error", opErr)
		kind = EventRefresh
	}

	notes, err := s.refresh(ctx, kind)
	return notes, errors.Join(opErr, err)
}

func (s *Service) refresh(ctx context.Context, kind EventType) (NoteList, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	if s.cancelRefresh != nil {
		s.cancelRefresh(ErrSuperseded)
	}
	s.refreshGen++
	gen := s.refreshGen
	s.cancelRefresh = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.refreshGen == gen {
			s.cancelRefresh = nil
		}
		s.mu.Unlock()
		cancel(nil)
	}()

	notes, err := s.api.List(ctx)
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		s.logger.Debug("refresh superseded", "generation", gen)
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()

	s.mu.Lock()
	if s.refreshGen != gen {
		// A newer refresh started after this one returned; only it may publish.
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.lastRefresh = &now
	s.publishLocked(Event{
		Type:      kind,
		NoteCount: len(notes),
		Notes:     notes,
		Timestamp: now.Unix(),
	})
	s.mu.Unlock()

	return notes, nil
}

func (s *Service) publishLocked(e Event) {
	for ch := range s.watchers {
		select {
		case ch <- e:
		default:
			s.dropped.Add(1)
			s.logger.Debug("watcher buffer full, dropping event", "event", e.String())
		}
	}
}
