package entity

import (
	"strings"
	"time"
)

// Platform represents the social network a post was published on
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
	PlatformLinkedIn  Platform = "LinkedIn"
)

// Format represents the content format of a post
type Format string

const (
	FormatImage    Format = "image"
	FormatVideo    Format = "video"
	FormatText     Format = "text"
	FormatCarousel Format = "carousel"
)

// timestampLayouts are the ISO-8601 variants accepted for PostMetrics.Timestamp
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// PostMetrics represents one observed social post with its raw counters
type PostMetrics struct {
	PostID      string   `json:"post_id"`
	Platform    Platform `json:"platform"`
	Topic       string   `json:"topic"`
	Format      Format   `json:"format"`
	Timestamp   string   `json:"timestamp"` // ISO-8601
	Likes       int64    `json:"likes"`
	Comments    int64    `json:"comments"`
	Shares      int64    `json:"shares"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Saves       int64    `json:"saves"`
}

// Validate checks the post against its field contract.
// Values are never clamped: the first offending field is reported.
func (p *PostMetrics) Validate() error {
	if strings.TrimSpace(p.PostID) == "" {
		return invalid(p.PostID, "post_id", "is required")
	}
	if strings.TrimSpace(string(p.Platform)) == "" {
		return invalid(p.PostID, "platform", "is required")
	}

	counters := []struct {
		name  string
		value int64
	}{
		{"likes", p.Likes},
		{"comments", p.Comments},
		{"shares", p.Shares},
		{"impressions", p.Impressions},
		{"clicks", p.Clicks},
		{"saves", p.Saves},
	}
	for _, c := range counters {
		if c.value < 0 {
			return invalid(p.PostID, c.name, "must not be negative")
		}
	}

	if p.Timestamp != "" {
		if _, err := ParseTimestamp(p.Timestamp); err != nil {
			return invalid(p.PostID, "timestamp", "is not a valid ISO-8601 timestamp")
		}
	}

	return nil
}

// PostedAt returns the parsed timestamp, if present and valid
func (p *PostMetrics) PostedAt() (time.Time, bool) {
	if p.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(p.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SamePlatform reports whether both posts belong to the same platform group
func (p *PostMetrics) SamePlatform(other *PostMetrics) bool {
	return p.Platform == other.Platform
}

// SameCohort reports whether both posts share platform, topic and format
func (p *PostMetrics) SameCohort(other *PostMetrics) bool {
	return p.Platform == other.Platform && p.Topic == other.Topic && p.Format == other.Format
}

// ParseTimestamp parses an ISO-8601 timestamp with or without a zone offset
func ParseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func invalid(postID, field, reason string) error {
	return &InvalidMetricsError{PostID: postID, Field: field, Reason: reason}
}
