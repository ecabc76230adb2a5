package rest

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	BaseURL    string `json:"base_url"`
	Timeout    string `json:"timeout"`
	Requests   int64  `json:"requests"`
	Failures   int64  `json:"failures"`
	LastStatus int    `json:"last_status,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	return ClientState{
		BaseURL:    c.base.String(),
		Timeout:    c.config.Timeout.String(),
		Requests:   c.requests.Load(),
		Failures:   c.failures.Load(),
		LastStatus: int(c.last.Load()),
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "rest"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
