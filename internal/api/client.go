// Package api is the typed gateway to the remote site-assessment service.
//
// Every operation returns an [Outcome]; the service's two envelope shapes
// ({success: bool} on auth endpoints, {status: "success"} elsewhere) are
// folded into it by [Normalize], and network or decoding failures become
// [KindTransport] outcomes instead of Go errors. Callers therefore need a
// single branch on Outcome.OK.
//
// Authenticated operations send "Authorization: Bearer <token>" using the
// token installed with [Client.SetAuthToken]. Register and Login never do.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client issues requests against one base URL.
//
// Client instances are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      Retryer
	log        zerolog.Logger
	newID      func() string

	mu        sync.RWMutex
	authToken string
}

// Option configures the client.
type Option func(*Client)

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetryer sets the transport retry policy.
func WithRetryer(r Retryer) Option {
	return func(c *Client) { c.retry = r }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL (scheme, host and API prefix, no trailing slash).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: NoRetry{},
		log:   zerolog.Nop(),
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetAuthToken installs the bearer token for authenticated calls. Empty clears it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, req RegisterRequest) Outcome {
	return c.call(ctx, http.MethodPost, "/auth/register", req, false)
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, req LoginRequest) Outcome {
	return c.call(ctx, http.MethodPost, "/auth/login", req, false)
}

// ListSurveys calls GET /land-surveys.
func (c *Client) ListSurveys(ctx context.Context) Outcome {
	return c.call(ctx, http.MethodGet, "/land-surveys", nil, true)
}

// CreateSurvey calls POST /land-surveys.
func (c *Client) CreateSurvey(ctx context.Context, in SurveyInput) Outcome {
	return c.call(ctx, http.MethodPost, "/land-surveys", in, true)
}

// CreateBuilding calls POST /building-inputs.
func (c *Client) CreateBuilding(ctx context.Context, in BuildingRequest) Outcome {
	return c.call(ctx, http.MethodPost, "/building-inputs", in, true)
}

// AddWind calls POST /wind.
func (c *Client) AddWind(ctx context.Context, in WindRequest) Outcome {
	return c.call(ctx, http.MethodPost, "/wind", in, true)
}

// RunDisaster triggers the disaster analysis for a building.
func (c *Client) RunDisaster(ctx context.Context, buildingID string) Outcome {
	return c.call(ctx, http.MethodPost, analysisPath("disaster", buildingID), nil, true)
}

// DisasterReport fetches a previously computed disaster analysis.
func (c *Client) DisasterReport(ctx context.Context, buildingID string) Outcome {
	return c.call(ctx, http.MethodGet, analysisPath("disaster", buildingID), nil, true)
}

// RunVastu triggers the Vastu analysis for a building.
func (c *Client) RunVastu(ctx context.Context, buildingID string) Outcome {
	return c.call(ctx, http.MethodPost, analysisPath("vastu", buildingID), nil, true)
}

// VastuReport fetches a previously computed Vastu analysis.
func (c *Client) VastuReport(ctx context.Context, buildingID string) Outcome {
	return c.call(ctx, http.MethodGet, analysisPath("vastu", buildingID), nil, true)
}

// GenerateReport triggers the composite report for a building.
func (c *Client) GenerateReport(ctx context.Context, buildingID string) Outcome {
	return c.call(ctx, http.MethodPost, analysisPath("report", buildingID), nil, true)
}

// FinalReport fetches a previously generated composite report.
func (c *Client) FinalReport(ctx context.Context, buildingID string) Outcome {
	return c.call(ctx, http.MethodGet, analysisPath("report", buildingID), nil, true)
}

func analysisPath(kind, buildingID string) string {
	return "/analysis/" + kind + "/" + url.PathEscape(buildingID)
}

func (c *Client) call(ctx context.Context, method, path string, body any, authed bool) Outcome {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return TransportFailure(fmt.Errorf("marshal request body: %w", err))
		}
		payload = b
	}

	reqID := c.newID()
	log := c.log.With().Str("method", method).Str("path", path).Str("request_id", reqID).Logger()

	for attempt := 0; ; attempt++ {
		start := time.Now()
		out, retryable := c.once(ctx, method, path, payload, authed, reqID)
		log.Debug().
			Int("attempt", attempt).
			Int("http_status", out.HTTPStatus).
			Stringer("kind", out.Kind).
			Dur("elapsed", time.Since(start)).
			Msg("api call")
		if !retryable {
			return out
		}
		delay, again := c.retry.NextDelay(attempt, out.Err)
		if !again {
			log.Warn().Err(out.Err).Int("attempts", attempt+1).Msg("api call failed")
			return out
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return TransportFailure(ctx.Err())
		case <-t.C:
		}
	}
}

// once performs a single attempt. The bool reports whether the failure is a
// transport failure worth retrying.
func (c *Client) once(ctx context.Context, method, path string, payload []byte, authed bool, reqID string) (Outcome, bool) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return TransportFailure(fmt.Errorf("create request: %w", err)), false
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportFailure(err), ctx.Err() == nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		out := TransportFailure(fmt.Errorf("read response: %w", err))
		out.HTTPStatus = resp.StatusCode
		return out, ctx.Err() == nil
	}
	out := Normalize(data, resp.StatusCode)
	return out, false
}

// IsTransport reports whether o is a transport failure.
func IsTransport(o Outcome) bool {
	return o.Kind == KindTransport
}

// IsMalformed reports whether a transport outcome was caused by an unreadable body.
func IsMalformed(o Outcome) bool {
	return o.Err != nil && errors.Is(o.Err, ErrMalformed)
}
