package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	APIType         string     `json:"api_type"`
	RefreshPolicy   string     `json:"refresh_policy"`
	EventBufferSize int        `json:"event_buffer_size"`
	Watchers        int        `json:"watchers"`
	RefreshInFlight bool       `json:"refresh_in_flight"`
	LastRefresh     *time.Time `json:"last_refresh,omitempty"`
	DroppedEvents   int64      `json:"dropped_events"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apiType := "unknown"
	if s.api != nil {
		apiType = "api"
		if comp, ok := s.api.(introspection.Component); ok {
			apiType = comp.ComponentType()
		}
	}

	return ServiceState{
		APIType:         apiType,
		RefreshPolicy:   s.config.RefreshPolicy.String(),
		EventBufferSize: s.config.EventBuffer,
		Watchers:        len(s.watchers),
		RefreshInFlight: s.cancelRefresh != nil,
		LastRefresh:     s.lastRefresh,
		DroppedEvents:   s.dropped.Load(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
