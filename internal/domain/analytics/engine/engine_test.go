package engine

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

const tolerance = 1e-9

func samplePost() entity.PostMetrics {
	return entity.PostMetrics{
		PostID:      "IG_001",
		Platform:    entity.PlatformInstagram,
		Topic:       "AI Technology",
		Format:      entity.FormatImage,
		Timestamp:   "2024-01-15T10:00:00",
		Likes:       1250,
		Comments:    85,
		Shares:      42,
		Impressions: 15000,
		Clicks:      450,
		Saves:       120,
	}
}

func sampleCohort() []entity.PostMetrics {
	return []entity.PostMetrics{
		samplePost(),
		{
			PostID: "TW_001", Platform: entity.PlatformTwitter, Topic: "AI Technology", Format: entity.FormatText,
			Timestamp: "2024-01-15T14:00:00", Likes: 890, Comments: 45, Shares: 120, Impressions: 12000, Clicks: 380,
		},
		{
			PostID: "LI_001", Platform: entity.PlatformLinkedIn, Topic: "AI Technology", Format: entity.FormatImage,
			Timestamp: "2024-01-16T09:00:00", Likes: 650, Comments: 32, Shares: 78, Impressions: 8500, Clicks: 290, Saves: 45,
		},
	}
}

func TestComputeKPIs(t *testing.T) {
	t.Run("sample post", func(t *testing.T) {
		kpis := ComputeKPIs(samplePost())

		assert.InDelta(t, 9.18, kpis.EngagementRate, tolerance)
		assert.InDelta(t, 3.00, kpis.ClickThroughRate, tolerance)
		assert.InDelta(t, 0.80, kpis.SaveRate, tolerance)
		assert.InDelta(t, 85.0/15000*100, kpis.CommentRate, tolerance)
		assert.InDelta(t, 0.28, kpis.ShareRate, tolerance)
	})

	t.Run("zero impressions yields zero rates", func(t *testing.T) {
		post := samplePost()
		post.Impressions = 0

		assert.Equal(t, entity.PostKPIs{}, ComputeKPIs(post))
	})

	t.Run("engagement matches formula", func(t *testing.T) {
		cases := []entity.PostMetrics{
			{Likes: 1, Comments: 0, Shares: 0, Impressions: 3},
			{Likes: 7, Comments: 11, Shares: 13, Impressions: 17},
			{Likes: 500, Comments: 500, Shares: 500, Impressions: 100},
		}
		for _, p := range cases {
			want := 100 * float64(p.Likes+p.Comments+p.Shares) / float64(p.Impressions)
			assert.InDelta(t, want, ComputeKPIs(p).EngagementRate, tolerance)
		}
	})
}

func TestComputeBaselines(t *testing.T) {
	t.Run("empty cohort", func(t *testing.T) {
		assert.Equal(t, entity.Baselines{}, ComputeBaselines(samplePost(), nil))
	})

	t.Run("cohort of only the subject", func(t *testing.T) {
		post := samplePost()
		b := ComputeBaselines(post, []entity.PostMetrics{post})
		kpis := ComputeKPIs(post)

		assert.InDelta(t, kpis.EngagementRate, b.CohortAvgEngagement, tolerance)
		assert.InDelta(t, kpis.EngagementRate, b.PlatformAvgEngagement, tolerance)
		assert.InDelta(t, kpis.ClickThroughRate, b.CohortAvgCTR, tolerance)
	})

	t.Run("averages per-post rates", func(t *testing.T) {
		post := samplePost()
		other := entity.PostMetrics{
			PostID: "IG_002", Platform: entity.PlatformInstagram, Topic: "Product Launch", Format: entity.FormatCarousel,
			Likes: 2100, Comments: 156, Shares: 89, Impressions: 22000, Clicks: 680, Saves: 245,
		}
		b := ComputeBaselines(post, append(sampleCohort(), other))

		otherEng := 2345.0 / 22000 * 100
		assert.InDelta(t, (9.18+otherEng)/2, b.PlatformAvgEngagement, tolerance)
		assert.InDelta(t, (3.0+680.0/22000*100)/2, b.PlatformAvgCTR, tolerance)
		assert.InDelta(t, 9.18, b.CohortAvgEngagement, tolerance)
		assert.InDelta(t, 3.0, b.CohortAvgCTR, tolerance)
	})

	t.Run("exclude subject", func(t *testing.T) {
		e := New(Config{Margin: DefaultMargin, ExcludeSubject: true})
		b := e.ComputeBaselines(samplePost(), sampleCohort())

		assert.Equal(t, entity.Baselines{}, b)
	})
}

func TestDiagnose(t *testing.T) {
	baselines := entity.Baselines{PlatformAvgEngagement: 5.0}

	t.Run("well above baseline is a strength", func(t *testing.T) {
		d := Diagnose(entity.PostKPIs{EngagementRate: 10.0}, baselines)

		require.Len(t, d.Strengths, 1)
		assert.Empty(t, d.Weaknesses)
		assert.Contains(t, d.Strengths[0], "Engagement rate (10.00%) is above platform average (5.00%)")
		assert.True(t, d.HasStrength(entity.DimensionEngagement))
	})

	t.Run("well below baseline is a weakness", func(t *testing.T) {
		d := Diagnose(entity.PostKPIs{EngagementRate: 2.0}, baselines)

		require.Len(t, d.Weaknesses, 1)
		assert.Empty(t, d.Strengths)
		assert.Contains(t, d.Weaknesses[0], "below platform average")
		assert.True(t, d.HasWeakness(entity.DimensionEngagement))
	})

	t.Run("within margin is neutral", func(t *testing.T) {
		d := Diagnose(entity.PostKPIs{EngagementRate: 5.4}, baselines)

		assert.Empty(t, d.Strengths)
		assert.Empty(t, d.Weaknesses)
	})

	t.Run("margin is configurable", func(t *testing.T) {
		e := New(Config{Margin: 0.5})
		d := e.Diagnose(entity.PostKPIs{EngagementRate: 7.0}, baselines)

		assert.Empty(t, d.Strengths)
	})

	t.Run("each dimension is judged once against the platform", func(t *testing.T) {
		kpis := entity.PostKPIs{EngagementRate: 1.0, ClickThroughRate: 9.0}
		b := entity.Baselines{PlatformAvgEngagement: 4, CohortAvgEngagement: 5, PlatformAvgCTR: 3, CohortAvgCTR: 2}

		first := Diagnose(kpis, b)
		second := Diagnose(kpis, b)

		assert.Equal(t, first, second)
		assert.Equal(t, []entity.Dimension{entity.DimensionEngagement}, first.WeakDimensions)
		assert.Equal(t, []entity.Dimension{entity.DimensionCTR}, first.StrongDimensions)
		assert.Contains(t, first.Weaknesses[0], "below platform average (4.00%)")
		assert.Contains(t, first.Strengths[0], "above platform average (3.00%)")
	})

	t.Run("cohort is used when the platform average is zero", func(t *testing.T) {
		d := Diagnose(entity.PostKPIs{ClickThroughRate: 1.0}, entity.Baselines{CohortAvgCTR: 4})

		require.Len(t, d.Weaknesses, 1)
		assert.Contains(t, d.Weaknesses[0], "below cohort average (4.00%)")
	})

	t.Run("platform strength is not contradicted by the cohort", func(t *testing.T) {
		kpis := entity.PostKPIs{ClickThroughRate: 4}
		b := entity.Baselines{PlatformAvgCTR: 3, CohortAvgCTR: 6}

		d := Diagnose(kpis, b)
		assert.Equal(t, []entity.Dimension{entity.DimensionCTR}, d.StrongDimensions)
		assert.Empty(t, d.Weaknesses)

		recs := Recommend(kpis, b, d, samplePost())
		for _, r := range recs {
			assert.NotContains(t, r.Suggestion, "against a platform average")
		}
	})
}

func TestRecommend(t *testing.T) {
	t.Run("every weakness is addressed", func(t *testing.T) {
		post := entity.PostMetrics{
			PostID: "TW_003", Platform: entity.PlatformTwitter, Topic: "AI Technology", Format: entity.FormatText,
			Timestamp: "2024-01-18T22:30:00", Likes: 100, Comments: 5, Shares: 5, Impressions: 10000, Clicks: 20,
		}
		cohort := []entity.PostMetrics{
			post,
			sampleCohort()[1],
			{
				PostID: "TW_002", Platform: entity.PlatformTwitter, Topic: "Product Launch", Format: entity.FormatImage,
				Likes: 1450, Comments: 92, Shares: 210, Impressions: 18000, Clicks: 540,
			},
		}

		out, err := Analyze(post, cohort)
		require.NoError(t, err)
		require.NotEmpty(t, out.Diagnostics.Weaknesses)

		categories := categorySet(out.Recommendations)
		assert.True(t, categories[entity.CategoryVisual], "text post with weak engagement should get a visual recommendation")
		assert.True(t, categories[entity.CategoryCTA], "weak CTR should get a CTA recommendation")
		for _, r := range out.Recommendations {
			if r.Category == entity.CategoryCTA {
				assert.Contains(t, r.Suggestion, "against a platform average of")
			}
		}
		assert.True(t, categories[entity.CategoryTiming])
		assert.Contains(t, out.SummaryMD, "underperforming")
	})

	t.Run("never empty", func(t *testing.T) {
		recs := Recommend(entity.PostKPIs{}, entity.Baselines{}, Diagnose(entity.PostKPIs{}, entity.Baselines{}), entity.PostMetrics{})

		require.Len(t, recs, 1)
		assert.Equal(t, entity.CategoryTiming, recs[0].Category)
	})

	t.Run("strengths are reinforced", func(t *testing.T) {
		kpis := entity.PostKPIs{EngagementRate: 10, ClickThroughRate: 6, SaveRate: 2}
		b := entity.Baselines{PlatformAvgEngagement: 5, PlatformAvgCTR: 3}
		recs := Recommend(kpis, b, Diagnose(kpis, b), samplePost())

		categories := categorySet(recs)
		assert.True(t, categories[entity.CategoryCaption])
		assert.True(t, categories[entity.CategoryCTA])
	})
}

func TestSummarize(t *testing.T) {
	recs := []entity.Recommendation{
		{Category: entity.CategoryCaption, Suggestion: "caption tip"},
		{Category: entity.CategoryHashtags, Suggestion: "hashtag tip"},
		{Category: entity.CategoryVisual, Suggestion: "visual tip"},
		{Category: entity.CategoryCTA, Suggestion: "cta tip"},
		{Category: entity.CategoryTiming, Suggestion: "timing tip"},
	}
	kpis := ComputeKPIs(samplePost())
	md := Summarize(kpis, entity.Baselines{}, entity.Diagnostics{}, recs)

	assert.True(t, strings.HasPrefix(md, "## Executive Summary"))
	assert.Contains(t, md, "**9.18%**")
	for _, want := range []string{"**Caption**", "**Hashtags**", "**Visual**", "**CTA**", "**Timing**"} {
		assert.Contains(t, md, want)
	}
}

func TestSummarize_OrdersByCategory(t *testing.T) {
	recs := []entity.Recommendation{
		{Category: "custom", Suggestion: "custom tip"},
		{Category: entity.CategoryTiming, Suggestion: "timing tip"},
		{Category: entity.CategoryCTA, Suggestion: "cta tip"},
		{Category: entity.CategoryCaption, Suggestion: "caption tip"},
	}
	md := Summarize(entity.PostKPIs{}, entity.Baselines{}, entity.Diagnostics{}, recs)

	caption := strings.Index(md, "caption tip")
	cta := strings.Index(md, "cta tip")
	timing := strings.Index(md, "timing tip")
	custom := strings.Index(md, "**Custom**: custom tip")

	require.True(t, caption >= 0 && cta >= 0 && timing >= 0 && custom >= 0, md)
	assert.Less(t, caption, cta)
	assert.Less(t, cta, timing)
	assert.Less(t, timing, custom)
}

func TestAnalyze(t *testing.T) {
	t.Run("sample scenario", func(t *testing.T) {
		out, err := Analyze(samplePost(), sampleCohort())
		require.NoError(t, err)

		assert.InDelta(t, 9.18, out.PostKPIs.EngagementRate, 1e-6)
		assert.InDelta(t, 3.00, out.PostKPIs.ClickThroughRate, 1e-6)
		assert.InDelta(t, 0.567, out.PostKPIs.CommentRate, 1e-3)
		assert.InDelta(t, 0.28, out.PostKPIs.ShareRate, 1e-6)

		assert.InDelta(t, 9.18, out.PlatformBaselines.PlatformAvgEngagement, 1e-6)
		assert.InDelta(t, 9.18, out.PlatformBaselines.CohortAvgEngagement, 1e-6)
		assert.NotEmpty(t, out.Recommendations)
		assert.NotEmpty(t, out.SummaryMD)
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := Analyze(samplePost(), sampleCohort())
		require.NoError(t, err)
		second, err := Analyze(samplePost(), sampleCohort())
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("negative counter names the field", func(t *testing.T) {
		post := samplePost()
		post.Shares = -1

		out, err := Analyze(post, sampleCohort())
		assert.Nil(t, out)
		require.ErrorIs(t, err, entity.ErrInvalidMetrics)

		var invalid *entity.InvalidMetricsError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "shares", invalid.Field)
		assert.Equal(t, "IG_001", invalid.PostID)
	})

	t.Run("invalid cohort member", func(t *testing.T) {
		cohort := sampleCohort()
		cohort[2].Impressions = -10

		_, err := Analyze(samplePost(), cohort)
		require.ErrorIs(t, err, entity.ErrInvalidMetrics)
		assert.Contains(t, err.Error(), "LI_001")
	})

	t.Run("overflow is a computation error", func(t *testing.T) {
		post := samplePost()
		post.Likes = math.MaxInt64
		post.Comments = 1

		out, err := Analyze(post, nil)
		assert.Nil(t, out)
		require.ErrorIs(t, err, entity.ErrComputation)
	})

	t.Run("zero impressions degrades gracefully", func(t *testing.T) {
		post := samplePost()
		post.Impressions = 0

		out, err := Analyze(post, []entity.PostMetrics{post})
		require.NoError(t, err)
		assert.Equal(t, entity.PostKPIs{}, out.PostKPIs)
		assert.Equal(t, entity.Baselines{}, out.PlatformBaselines)
		assert.NotEmpty(t, out.Recommendations)
	})
}

func TestNew_InvalidMargin(t *testing.T) {
	assert.Equal(t, DefaultMargin, New(Config{Margin: -1}).Config().Margin)
	assert.Equal(t, DefaultMargin, New(Config{Margin: math.NaN()}).Config().Margin)
	assert.Equal(t, DefaultMargin, New(Config{}).Config().Margin)
	assert.Equal(t, 0.25, New(Config{Margin: 0.25}).Config().Margin)
}

func categorySet(recs []entity.Recommendation) map[entity.RecommendationCategory]bool {
	set := make(map[entity.RecommendationCategory]bool, len(recs))
	for _, r := range recs {
		set[r.Category] = true
	}
	return set
}
