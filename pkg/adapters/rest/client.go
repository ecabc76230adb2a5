// Package rest implements core.API against the notes REST backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/notes/pkg/core"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost" + DefaultBasePath
	// DefaultBasePath is the mount point of the notes API.
	DefaultBasePath = "/api"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request id for backend log correlation.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the configuration for the REST client.
type Config struct {
	BaseURL string // e.g. "https://notes.example.com/api"; a bare host gets DefaultBasePath
	Timeout time.Duration
	Client  Doer
	Logger  *slog.Logger
	Headers map[string]string // extra headers sent on every request
}

// Client implements core.API and core.HealthChecker over HTTP.
type Client struct {
	base   *url.URL
	config Config
	http   Doer
	logger *slog.Logger

	requests atomic.Int64
	failures atomic.Int64
	last     atomic.Int64 // last HTTP status seen, 0 before the first response
}

// NewClient creates a REST client for the given configuration.
func NewClient(config Config) (*Client, error) {
	raw := config.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", raw)
	}
	if base.Path == "" || base.Path == "/" {
		base.Path = DefaultBasePath
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	doer := config.Client
	if doer == nil {
		doer = &http.Client{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:   base,
		config: config,
		http:   doer,
		logger: logger,
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// List issues GET {base}/notes.
func (c *Client) List(ctx context.Context) (core.NoteList, error) {
	var notes core.NoteList
	if err := c.do(ctx, "list", http.MethodGet, "notes", nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		return nil, core.DecodeError("list", errors.New("response is not a JSON array"))
	}
	return notes, nil
}

type addRequest struct {
	Note string `json:"note"`
}

// Add issues POST {base}/add with {"note": text}. The response body is not read.
func (c *Client) Add(ctx context.Context, text string) error {
	return c.do(ctx, "add", http.MethodPost, "add", addRequest{Note: text}, nil)
}

type deleteRequest struct {
	ID int64 `json:"id"`
}

// Delete issues POST {base}/delete with {"id": id}.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodPost, "delete", deleteRequest{ID: id}, nil)
}

// Health issues GET {base}/health.
func (c *Client) Health(ctx context.Context) (core.Health, error) {
	var h core.Health
	err := c.do(ctx, "health", http.MethodGet, "health", nil, &h)
	return h, err
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	target := c.base.JoinPath(endpoint).String()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	// Configured headers go first so they cannot replace the protocol ones.
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.requests.Add(1)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.failures.Add(1)
		c.logger.Debug("request failed", "method", method, "url", target, "request_id", requestID, "error", err)
		return core.TransportError(op, err)
	}
	defer resp.Body.Close()

	c.last.Store(int64(resp.StatusCode))
	c.logger.Debug("request done",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.failures.Add(1)
		return c.serverError(op, resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	err = dec.Decode(out)
	if err == nil {
		// The body must hold exactly one JSON value.
		var extra json.RawMessage
		if extraErr := dec.Decode(&extra); extraErr != io.EOF {
			err = errors.New("unexpected data after JSON value")
			if extraErr != nil {
				err = fmt.Errorf("%w: %w", err, extraErr)
			}
		}
	}
	if err != nil {
		c.failures.Add(1)
		if ctx.Err() != nil {
			return core.TransportError(op, err)
		}
		return core.DecodeError(op, err)
	}
	return nil
}

func (c *Client) serverError(op string, resp *http.Response) error {
	serr := &core.ServerError{Op: op, StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return serr
	}

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		serr.Message = eb.Error
	} else {
		serr.Message = strings.TrimSpace(string(raw))
	}
	return serr
}

var _ core.API = (*Client)(nil)
var _ core.HealthChecker = (*Client)(nil)
