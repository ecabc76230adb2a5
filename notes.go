package notes

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/notes/internal/platform"
	"github.com/aretw0/notes/pkg/core"
)

// Version exposes the version of the library.
//
//go:embed VERSION
var Version string

// --- Types ---

// Note is a public alias for the domain note.
type Note = core.Note

// NoteList is a public alias for the domain note list.
type NoteList = core.NoteList

// Service is a public alias for the domain service.
type Service = core.Service

// --- Configuration ---

// Option defines a functional option for configuring the client.
type Option = platform.Option

// WithLogger sets the logger for the service and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAPI allows injecting a custom backend.
func WithAPI(api core.API) Option {
	return platform.WithAPI(api)
}

// WithAdapter allows specifying the backend adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithTimeout bounds every request to the backend.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithHTTPClient replaces the HTTP client used by the REST adapter.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return platform.WithHeader(key, value)
}

// WithRefreshPolicy decides whether a failed mutation is still followed by a refresh.
func WithRefreshPolicy(p core.RefreshPolicy) Option {
	return platform.WithRefreshPolicy(p)
}

// WithEventBuffer allows specifying the size of each watcher buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// --- Factory ---

// New creates a notes Service talking to the backend mounted at baseURL.
func New(baseURL string, opts ...Option) (*core.Service, error) {
	return platform.New(baseURL, opts...)
}
