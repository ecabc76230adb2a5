package platform

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/notes/pkg/adapters/rest"
	"github.com/aretw0/notes/pkg/core"
)

// Init builds the backend adapter described by the options.
// The 'uri' argument is adapter-specific (the base URL for 'rest').
func Init(uri string, opts ...Option) (core.API, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.api != nil {
		return o.api, nil
	}

	switch o.adapter {
	case "rest":
		return initREST(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// initREST handles the configuration of the REST adapter.
func initREST(baseURL string, o *options) (core.API, error) {
	timeout, _ := o.config["timeout"].(time.Duration)
	headers, _ := o.config["headers"].(map[string]string)

	cfg := rest.Config{
		BaseURL: baseURL,
		Timeout: timeout,
		Logger:  o.logger,
		Headers: headers,
	}
	if c, ok := o.config["http_client"].(*http.Client); ok && c != nil {
		cfg.Client = c
	}

	client, err := rest.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure rest adapter: %w", err)
	}

	if o.logger != nil {
		o.logger.Debug("rest adapter ready", "base_url", client.BaseURL(), "timeout", timeout)
	}
	return client, nil
}
