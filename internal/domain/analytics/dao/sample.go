package dao

import "github.com/vadim/social-insights/internal/domain/analytics/entity"

// SamplePosts returns the demo data set served when no database is configured
func SamplePosts() []entity.PostMetrics {
	return []entity.PostMetrics{
		{
			PostID: "IG_001", Platform: entity.PlatformInstagram, Topic: "AI Technology", Format: entity.FormatImage,
			Timestamp: "2024-01-15T10:00:00", Likes: 1250, Comments: 85, Shares: 42, Impressions: 15000, Clicks: 450, Saves: 120,
		},
		{
			PostID: "TW_001", Platform: entity.PlatformTwitter, Topic: "AI Technology", Format: entity.FormatText,
			Timestamp: "2024-01-15T14:00:00", Likes: 890, Comments: 45, Shares: 120, Impressions: 12000, Clicks: 380, Saves: 0,
		},
		{
			PostID: "LI_001", Platform: entity.PlatformLinkedIn, Topic: "AI Technology", Format: entity.FormatImage,
			Timestamp: "2024-01-16T09:00:00", Likes: 650, Comments: 32, Shares: 78, Impressions: 8500, Clicks: 290, Saves: 45,
		},
		{
			PostID: "IG_002", Platform: entity.PlatformInstagram, Topic: "Product Launch", Format: entity.FormatCarousel,
			Timestamp: "2024-01-17T11:00:00", Likes: 2100, Comments: 156, Shares: 89, Impressions: 22000, Clicks: 680, Saves: 245,
		},
		{
			PostID: "TW_002", Platform: entity.PlatformTwitter, Topic: "Product Launch", Format: entity.FormatImage,
			Timestamp: "2024-01-17T15:00:00", Likes: 1450, Comments: 92, Shares: 210, Impressions: 18000, Clicks: 540, Saves: 0,
		},
	}
}
