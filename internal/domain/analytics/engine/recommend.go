package engine

import (
	"fmt"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// lowSaveRate is the save rate (in percent) under which visual formats get a
// save-oriented suggestion
const lowSaveRate = 0.5

// Recommend derives categorized suggestions from the diagnostics.
// Every weak dimension gets at least one recommendation addressing it, and
// the result is never empty.
func Recommend(kpis entity.PostKPIs, baselines entity.Baselines, diagnostics entity.Diagnostics, post entity.PostMetrics) []entity.Recommendation {
	var recs []entity.Recommendation
	add := func(category entity.RecommendationCategory, format string, args ...any) {
		recs = append(recs, entity.Recommendation{Category: category, Suggestion: fmt.Sprintf(format, args...)})
	}

	topic := post.Topic
	if topic == "" {
		topic = "your topic"
	}

	if diagnostics.HasWeakness(entity.DimensionEngagement) {
		if post.Format == entity.FormatText {
			add(entity.CategoryVisual,
				"Pair the copy with a strong image or short video: text-only posts on %s are trailing the engagement baseline.",
				platformName(post.Platform))
		} else {
			add(entity.CategoryCaption,
				"Open the caption with a hook or question in the first line and close with a prompt that invites comments.")
		}
		add(entity.CategoryHashtags,
			"Refresh the hashtag set with a mix of broad and niche %s tags and drop tags that no longer drive reach.", topic)
		add(entity.CategoryTiming, "%s", timingSuggestion(post))
	}

	if diagnostics.HasWeakness(entity.DimensionCTR) {
		ref, _ := ctrReference(baselines)
		add(entity.CategoryCTA,
			"Add one explicit call-to-action with a visible link or link-in-bio cue; CTR is %.2f%% against a %s average of %.2f%%.",
			kpis.ClickThroughRate, ref.name, ref.value)
	}

	if len(diagnostics.Weaknesses) == 0 {
		if diagnostics.HasStrength(entity.DimensionEngagement) {
			add(entity.CategoryCaption,
				"Keep the current caption angle for %s content and reuse it as a template for upcoming posts.", topic)
		}
		if diagnostics.HasStrength(entity.DimensionCTR) {
			add(entity.CategoryCTA,
				"Keep the current call-to-action wording; it converts above the baseline.")
		}
	}

	if (post.Format == entity.FormatImage || post.Format == entity.FormatCarousel) &&
		post.Impressions > 0 && kpis.SaveRate < lowSaveRate {
		add(entity.CategoryVisual,
			"Make the visual worth saving (checklists, data points or step-by-step slides); save rate is %.2f%%.", kpis.SaveRate)
	}

	if len(recs) == 0 {
		add(entity.CategoryTiming,
			"Performance is in line with the baselines; keep a consistent posting schedule and A/B test one variable at a time.")
	}

	return recs
}

func timingSuggestion(post entity.PostMetrics) string {
	if t, ok := post.PostedAt(); ok {
		return fmt.Sprintf(
			"This post went out on %s at %s; test a different day and time slot to reach a more active audience.",
			t.Weekday(), t.Format("15:04"))
	}
	return "Test alternative posting days and time slots to reach a more active audience."
}

func platformName(p entity.Platform) string {
	if p == "" {
		return "this platform"
	}
	return string(p)
}
