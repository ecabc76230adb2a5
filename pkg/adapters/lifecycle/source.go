// Package lifecycle exposes the notes event stream as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notes/pkg/core"
)

// Watcher is the part of core.Service a Source subscribes to.
type Watcher interface {
	Watch(ctx context.Context) (<-chan core.Event, error)
}

type notesSource struct {
	svc Watcher
	out chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits the Service events.
// The subscription is taken in Start and released when its context ends.
func NewSource(svc Watcher) lifecycle.Source {
	return &notesSource{
		svc: svc,
		out: make(chan lifecycle.Event),
	}
}

func (s *notesSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *notesSource) Start(ctx context.Context) error {
	events, err := s.svc.Watch(ctx)
	if err != nil {
		close(s.out)
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				// core.Event satisfies lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
