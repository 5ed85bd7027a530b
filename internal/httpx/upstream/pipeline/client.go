package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "http://localhost:8081"
	defaultAPIVersion = "v1"
	defaultTimeout    = 120 * time.Second
	maxResponseSize   = 10 << 20
)

// Pipe codes known to the runtime
const (
	PipeGenerateSocialContent = "generate_social_content"
	PipeCampaignAnalytics     = "campaign_analytics"
)

// ErrCircuitOpen is returned while the breaker rejects calls
var ErrCircuitOpen = errors.New("pipeline runtime circuit is open")

// Client is an HTTP client for the external pipeline runtime.
// The runtime exposes a single execution entry point per pipe code.
type Client struct {
	baseURL    string
	apiVersion string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIVersion sets the API version
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithAPIKey sets the bearer token sent with each request
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit limits outgoing executions to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// BreakerSettings tunes the circuit breaker
type BreakerSettings struct {
	MaxFailures uint32        // consecutive failures before opening
	OpenTimeout time.Duration // how long the breaker stays open
}

// WithBreaker replaces the default breaker settings
func WithBreaker(s BreakerSettings) ClientOption {
	return func(c *Client) {
		c.breaker = newBreaker(s)
	}
}

// New creates a new pipeline runtime client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		breaker: newBreaker(BreakerSettings{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker {
	if s.MaxFailures == 0 {
		s.MaxFailures = 3
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 60 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "pipeline-runtime",
		Interval: 60 * time.Second,
		Timeout:  s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		// Client errors are the caller's fault and say nothing about runtime health
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
		},
	})
}

// APIError represents an error from the pipeline runtime
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	PipeCode   string `json:"pipe_code,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pipeline runtime error: %s (status: %d, type: %s)", e.Message, e.StatusCode, e.Type)
}

// ErrorResponse represents an error response from the runtime
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ExecuteInput represents input for executing a pipe
type ExecuteInput struct {
	PipeCode string
	Inputs   map[string]Stuff
}

// Stuff is one named input to a pipe: a concept code and its content
type Stuff struct {
	Concept string `json:"concept,omitempty"`
	Content any    `json:"content"`
}

// ExecuteOutput represents the runtime's answer
type ExecuteOutput struct {
	RunID     string          `json:"run_id"`
	MainStuff json.RawMessage `json:"main_stuff"`
	// Extras holds secondary outputs keyed by stuff name
	Extras map[string]json.RawMessage `json:"extras,omitempty"`
}

type executeRequest struct {
	Inputs map[string]Stuff `json:"inputs"`
}

// Execute runs a pipe and waits for its result
func (c *Client) Execute(ctx context.Context, in ExecuteInput) (*ExecuteOutput, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.execute(ctx, in)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}

	return result.(*ExecuteOutput), nil
}

func (c *Client) execute(ctx context.Context, in ExecuteInput) (*ExecuteOutput, error) {
	endpoint := fmt.Sprintf("%s/%s/pipelines/%s/execute", c.baseURL, c.apiVersion, url.PathEscape(in.PipeCode))

	payload, err := json.Marshal(executeRequest{Inputs: in.Inputs})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	var out ExecuteOutput
	if err := c.do(req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.PipeCode == "" {
			apiErr.PipeCode = in.PipeCode
		}
		return nil, err
	}

	if len(out.MainStuff) == 0 || string(out.MainStuff) == "null" {
		return nil, fmt.Errorf("pipe %s returned no main stuff", in.PipeCode)
	}

	return &out, nil
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Type: "unknown"}
		}
		errResp.Error.StatusCode = resp.StatusCode
		return &errResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
