package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://graph.instagram.com"
	defaultAPIVersion = "v21.0"
	defaultTimeout    = 30 * time.Second
	maxPageSize       = 100
)

// Client is an Instagram Graph API client for reading media and insights
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
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

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Instagram API client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the Instagram API
type APIError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("instagram API error: %s (code: %d, subcode: %d)", e.Message, e.Code, e.ErrorSubcode)
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Media is one published media object with its public counters
type Media struct {
	ID               string `json:"id"`
	Caption          string `json:"caption,omitempty"`
	MediaType        string `json:"media_type"`         // IMAGE, VIDEO, CAROUSEL_ALBUM
	MediaProductType string `json:"media_product_type"` // FEED, REELS, STORY
	Permalink        string `json:"permalink,omitempty"`
	Timestamp        string `json:"timestamp"` // e.g. 2024-01-15T10:00:00+0000
	LikeCount        int64  `json:"like_count"`
	CommentsCount    int64  `json:"comments_count"`
}

var mediaFields = []string{"id", "caption", "media_type", "media_product_type", "permalink", "timestamp", "like_count", "comments_count"}

type mediaPage struct {
	Data   []Media `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// ListMediaInput represents input for listing a user's media
type ListMediaInput struct {
	UserID      string
	AccessToken string
	Limit       int // total media to return, newest first
}

// ListMedia returns up to Limit most recent media of the user, following pagination
func (c *Client) ListMedia(ctx context.Context, in ListMediaInput) ([]Media, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("fields", strings.Join(mediaFields, ","))
	params.Set("limit", fmt.Sprint(min(max(in.Limit, 1), maxPageSize)))

	next := fmt.Sprintf("%s/%s/%s/media?%s", c.baseURL, c.apiVersion, url.PathEscape(in.UserID), params.Encode())

	var media []Media
	for next != "" && len(media) < in.Limit {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		var page mediaPage
		if err := c.do(req, &page); err != nil {
			return nil, err
		}

		media = append(media, page.Data...)
		next = page.Paging.Next
	}

	if len(media) > in.Limit {
		media = media[:in.Limit]
	}
	return media, nil
}

// Insight metric names
const (
	MetricViews       = "views"
	MetricImpressions = "impressions"
	MetricReach       = "reach"
	MetricSaved       = "saved"
	MetricShares      = "shares"
)

type insightValue struct {
	Value int64 `json:"value"`
}

type insightsResponse struct {
	Data []struct {
		Name       string         `json:"name"`
		Values     []insightValue `json:"values"`
		TotalValue *insightValue  `json:"total_value"`
	} `json:"data"`
}

// GetMediaInsightsInput represents input for reading media insights
type GetMediaInsightsInput struct {
	MediaID     string
	AccessToken string
	Metrics     []string
}

// GetMediaInsights returns lifetime insight values keyed by metric name
func (c *Client) GetMediaInsights(ctx context.Context, in GetMediaInsightsInput) (map[string]int64, error) {
	metrics := in.Metrics
	if len(metrics) == 0 {
		metrics = []string{MetricViews, MetricReach, MetricSaved, MetricShares}
	}

	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("metric", strings.Join(metrics, ","))

	endpoint := fmt.Sprintf("%s/%s/%s/insights?%s", c.baseURL, c.apiVersion, url.PathEscape(in.MediaID), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp insightsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(resp.Data))
	for _, d := range resp.Data {
		switch {
		case d.TotalValue != nil:
			out[d.Name] = d.TotalValue.Value
		case len(d.Values) > 0:
			out[d.Name] = d.Values[0].Value
		}
	}
	return out, nil
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return &errResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
