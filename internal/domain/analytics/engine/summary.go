package engine

import (
	"fmt"
	"strings"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// Summarize renders a short markdown executive summary. It performs no
// computation beyond formatting and lists every recommendation it is given,
// grouped in entity.Categories order.
func Summarize(kpis entity.PostKPIs, baselines entity.Baselines, diagnostics entity.Diagnostics, recommendations []entity.Recommendation) string {
	var b strings.Builder

	b.WriteString("## Executive Summary\n\n")

	fmt.Fprintf(&b, "The post is %s, with an engagement rate of **%.2f%%** (platform %.2f%%, cohort %.2f%%) "+
		"and a click-through rate of **%.2f%%** (platform %.2f%%, cohort %.2f%%).\n\n",
		verdict(diagnostics),
		kpis.EngagementRate, baselines.PlatformAvgEngagement, baselines.CohortAvgEngagement,
		kpis.ClickThroughRate, baselines.PlatformAvgCTR, baselines.CohortAvgCTR,
	)

	fmt.Fprintf(&b, "Comment rate %.2f%%, share rate %.2f%%, save rate %.2f%%.\n\n",
		kpis.CommentRate, kpis.ShareRate, kpis.SaveRate)

	writeList(&b, "Strengths", diagnostics.Strengths)
	writeList(&b, "Areas for improvement", diagnostics.Weaknesses)

	b.WriteString("### Recommendations\n\n")
	if len(recommendations) == 0 {
		b.WriteString("- None\n")
	}
	for _, rec := range byCategory(recommendations) {
		fmt.Fprintf(&b, "- **%s**: %s\n", categoryTitle(rec.Category), rec.Suggestion)
	}

	return b.String()
}

func verdict(d entity.Diagnostics) string {
	switch s, w := len(d.Strengths), len(d.Weaknesses); {
	case s > w:
		return "outperforming its baselines"
	case w > s:
		return "underperforming its baselines"
	default:
		return "performing in line with its baselines"
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("- None identified\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// categoryTitle renders a category for display; CTA stays upper case
func categoryTitle(c entity.RecommendationCategory) string {
	s := string(c)
	if s == "" || s == strings.ToUpper(s) {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// byCategory orders recommendations by entity.Categories, keeping input order
// within a category. Unknown categories follow in input order.
func byCategory(recs []entity.Recommendation) []entity.Recommendation {
	out := make([]entity.Recommendation, 0, len(recs))
	known := make(map[entity.RecommendationCategory]bool, len(entity.Categories))
	for _, c := range entity.Categories {
		known[c] = true
		for _, r := range recs {
			if r.Category == c {
				out = append(out, r)
			}
		}
	}
	for _, r := range recs {
		if !known[r.Category] {
			out = append(out, r)
		}
	}
	return out
}
