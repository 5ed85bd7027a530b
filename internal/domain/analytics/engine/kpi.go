package engine

import (
	"sort"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// ComputeKPIs derives percentage rates from a post's counters.
// A post with zero impressions yields all-zero rates.
func ComputeKPIs(post entity.PostMetrics) entity.PostKPIs {
	if post.Impressions <= 0 {
		return entity.PostKPIs{}
	}

	interactions := float64(post.Likes) + float64(post.Comments) + float64(post.Shares)

	return entity.PostKPIs{
		EngagementRate:   percent(interactions, post.Impressions),
		ClickThroughRate: percent(float64(post.Clicks), post.Impressions),
		SaveRate:         percent(float64(post.Saves), post.Impressions),
		CommentRate:      percent(float64(post.Comments), post.Impressions),
		ShareRate:        percent(float64(post.Shares), post.Impressions),
	}
}

// ComputeBaselines averages per-post rates with the default configuration
func ComputeBaselines(post entity.PostMetrics, cohort []entity.PostMetrics) entity.Baselines {
	return defaultEngine.ComputeBaselines(post, cohort)
}

// ComputeBaselines averages each member's own engagement rate and CTR over
// the platform group and the narrow cohort (platform, topic and format).
// Empty groups produce zero baselines.
func (e *Engine) ComputeBaselines(post entity.PostMetrics, cohort []entity.PostMetrics) entity.Baselines {
	var platformEng, platformCTR, cohortEng, cohortCTR []float64

	for i := range cohort {
		member := &cohort[i]
		if e.cfg.ExcludeSubject && member.PostID == post.PostID {
			continue
		}
		if !post.SamePlatform(member) {
			continue
		}

		kpis := ComputeKPIs(*member)
		platformEng = append(platformEng, kpis.EngagementRate)
		platformCTR = append(platformCTR, kpis.ClickThroughRate)

		if post.SameCohort(member) {
			cohortEng = append(cohortEng, kpis.EngagementRate)
			cohortCTR = append(cohortCTR, kpis.ClickThroughRate)
		}
	}

	return entity.Baselines{
		PlatformAvgEngagement: mean(platformEng),
		CohortAvgEngagement:   mean(cohortEng),
		PlatformAvgCTR:        mean(platformCTR),
		CohortAvgCTR:          mean(cohortCTR),
	}
}

func percent(part float64, impressions int64) float64 {
	return part / float64(impressions) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
