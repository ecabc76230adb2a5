package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/notes/pkg/core"
)

// options holds the internal configuration for the notes service.
type options struct {
	api     core.API
	logger  *slog.Logger
	adapter string
	config  map[string]interface{}
}

// Option defines a functional option for configuring the notes client.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		api:     nil,
		logger:  nil,
		adapter: "rest",
		config:  make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the service and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAPI allows injecting a custom backend (e.g. an in-memory fake).
// If provided, the default REST adapter will be skipped.
func WithAPI(api core.API) Option {
	return func(o *options) {
		o.api = api
	}
}

// WithAdapter allows specifying the backend adapter to use by name.
// Defaults to "rest".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithTimeout bounds every request to the backend.
// Zero means default (10s).
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["timeout"] = d
	}
}

// WithHTTPClient replaces the HTTP client used by the REST adapter.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.config["http_client"] = c
	}
}

// WithHeader adds a header sent with every request (e.g. Authorization).
func WithHeader(key, value string) Option {
	return func(o *options) {
		headers, _ := o.config["headers"].(map[string]string)
		if headers == nil {
			headers = make(map[string]string)
		}
		headers[key] = value
		o.config["headers"] = headers
	}
}

// WithRefreshPolicy decides whether a failed add/delete is still followed by a refresh.
// Defaults to core.RefreshOnSuccess.
func WithRefreshPolicy(p core.RefreshPolicy) Option {
	return func(o *options) {
		o.config["refresh_policy"] = p
	}
}

// WithEventBuffer allows specifying the size of each watcher buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}
