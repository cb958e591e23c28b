package catfact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"Profile_1.0/backend/go/internal/config"
	"Profile_1.0/backend/go/internal/models"
	httpclient "Profile_1.0/backend/go/pkg/http"
	"Profile_1.0/backend/go/pkg/logger"
)

// maxBodyBytes caps how much of the upstream body is read.
const maxBodyBytes = 1 << 20

// Source tells whether a Result holds a real fact or the fallback text.
type Source int

const (
	SourceAPI Source = iota
	SourceFallback
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceAPI:
		return "api"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Reason names why the fallback text was used.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonTimeout      Reason = "timeout"
	ReasonTransport    Reason = "transport"
	ReasonStatus       Reason = "status"
	ReasonDecode       Reason = "decode"
	ReasonMissingField Reason = "missing_field"
)

// Result is the outcome of one fetch. Fact is always usable.
type Result struct {
	Fact   string
	Source Source
	Reason Reason
	Err    error
}

// FromAPI reports whether the fact came from the upstream service.
func (r Result) FromAPI() bool {
	return r.Source == SourceAPI
}

// factResponse is the subset of the upstream payload we read.
type factResponse struct {
	Fact *string `json:"fact"`
}

// Client fetches a single cat fact per call and never fails.
type Client struct {
	url        string
	timeout    time.Duration
	fallback   string
	httpClient *http.Client
	logger     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests and custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client from the fact API configuration.
func NewClient(cfg config.FactAPIConfig, log *logger.Logger, opts ...Option) *Client {
	timeout := cfg.TimeoutDuration()
	c := &Client{
		url:      cfg.URL,
		timeout:  timeout,
		fallback: cfg.Fallback,
		logger:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.NewClient(timeout)
	}
	if c.fallback == "" {
		c.fallback = config.DefaultFallbackFact
	}
	if c.logger == nil {
		c.logger = logger.New("catfact", "")
	}
	return c
}

// FetchFact returns a fact or the fallback text.
func (c *Client) FetchFact(ctx context.Context) string {
	return c.Fetch(ctx).Fact
}

// Fetch performs one GET against the fact service bounded by the configured timeout.
// Every failure is mapped to the fallback text; the returned Result says which path was taken.
func (c *Client) Fetch(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Fetching cat fact from external API")

	fact, err := c.get(ctx)
	if err != nil {
		return c.fallbackResult(err)
	}

	c.logger.Debug("Cat fact fetched successfully")
	return Result{Fact: fact, Source: SourceAPI, Reason: ReasonNone}
}

func (c *Client) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", &fetchError{reason: ReasonTransport, err: fmt.Errorf("failed to create fact request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &fetchError{reason: classifyTransport(ctx, err), err: fmt.Errorf("failed to call fact api: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &fetchError{reason: ReasonStatus, status: resp.StatusCode,
			err: fmt.Errorf("fact api returned non-2xx status: %s", resp.Status)}
	}

	var payload factResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		reason := ReasonDecode
		if ctx.Err() != nil {
			reason = classifyTransport(ctx, err)
		}
		return "", &fetchError{reason: reason, err: fmt.Errorf("failed to decode fact response: %w", err)}
	}
	if payload.Fact == nil || *payload.Fact == "" {
		return "", &fetchError{reason: ReasonMissingField, err: errors.New("fact response has no fact field")}
	}
	return *payload.Fact, nil
}

func (c *Client) fallbackResult(err error) Result {
	reason := ReasonTransport
	status := 0
	var fe *fetchError
	if errors.As(err, &fe) {
		reason = fe.reason
		status = fe.status
	}

	entry := c.logger.
		WithField("fact_reason", string(reason)).
		WithError(models.ErrorInfo{Message: err.Error(), Type: "fact_" + string(reason), StatusCode: status})
	switch reason {
	case ReasonTimeout:
		entry.Error("Cat Facts API timeout, using fallback fact")
	case ReasonStatus:
		entry.Error("Cat Facts API error status, using fallback fact")
	case ReasonTransport:
		entry.Error("Network error calling Cat Facts API, using fallback fact")
	default:
		entry.Warn("Unexpected response structure from Cat Facts API, using fallback fact")
	}

	return Result{Fact: c.fallback, Source: SourceFallback, Reason: reason, Err: err}
}

// classifyTransport separates deadline expiry from other transport failures.
func classifyTransport(ctx context.Context, err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}

type fetchError struct {
	reason Reason
	status int
	err    error
}

func (e *fetchError) Error() string {
	return e.err.Error()
}

func (e *fetchError) Unwrap() error {
	return e.err
}
