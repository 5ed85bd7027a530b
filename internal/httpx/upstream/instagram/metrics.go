package instagram

import (
	"context"
	"fmt"
	"time"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// graphTimeLayout is the timestamp format returned by the Graph API
const graphTimeLayout = "2006-01-02T15:04:05-0700"

// FetchPostMetricsInput represents input for importing a user's posts
type FetchPostMetricsInput struct {
	UserID      string
	AccessToken string
	Topic       string
	Limit       int
}

// FetchPostMetrics lists recent media and joins each with its insights.
// The Graph API reports no link clicks for organic media, so Clicks stays 0.
func (c *Client) FetchPostMetrics(ctx context.Context, in FetchPostMetricsInput) ([]entity.PostMetrics, error) {
	media, err := c.ListMedia(ctx, ListMediaInput{
		UserID:      in.UserID,
		AccessToken: in.AccessToken,
		Limit:       in.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}

	posts := make([]entity.PostMetrics, 0, len(media))
	for _, m := range media {
		insights, err := c.GetMediaInsights(ctx, GetMediaInsightsInput{
			MediaID:     m.ID,
			AccessToken: in.AccessToken,
		})
		if err != nil {
			return nil, fmt.Errorf("reading insights for %s: %w", m.ID, err)
		}

		posts = append(posts, toPostMetrics(m, insights, in.Topic))
	}

	return posts, nil
}

func toPostMetrics(m Media, insights map[string]int64, topic string) entity.PostMetrics {
	return entity.PostMetrics{
		PostID:      m.ID,
		Platform:    entity.PlatformInstagram,
		Topic:       topic,
		Format:      formatFor(m),
		Timestamp:   normalizeTimestamp(m.Timestamp),
		Likes:       m.LikeCount,
		Comments:    m.CommentsCount,
		Shares:      insights[MetricShares],
		Impressions: impressionsFrom(insights),
		Saves:       insights[MetricSaved],
	}
}

// impressionsFrom prefers views, which replaced impressions in newer API versions
func impressionsFrom(insights map[string]int64) int64 {
	for _, name := range []string{MetricViews, MetricImpressions, MetricReach} {
		if v, ok := insights[name]; ok {
			return v
		}
	}
	return 0
}

func formatFor(m Media) entity.Format {
	switch m.MediaType {
	case "CAROUSEL_ALBUM":
		return entity.FormatCarousel
	case "VIDEO":
		return entity.FormatVideo
	default:
		return entity.FormatImage
	}
}

func normalizeTimestamp(ts string) string {
	t, err := time.Parse(graphTimeLayout, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(time.RFC3339)
}
