package engine

import (
	"fmt"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// Diagnose compares KPIs to baselines with the default configuration
func Diagnose(kpis entity.PostKPIs, baselines entity.Baselines) entity.Diagnostics {
	return defaultEngine.Diagnose(kpis, baselines)
}

// Baseline references
const (
	referencePlatform = "platform"
	referenceCohort   = "cohort"
)

// baselineRef is the single baseline a dimension is judged against
type baselineRef struct {
	name  string
	value float64
}

// reference picks the platform average, or the cohort average when the
// platform average is zero. ok is false when neither carries a signal.
func reference(platform, cohort float64) (ref baselineRef, ok bool) {
	switch {
	case platform > 0:
		return baselineRef{referencePlatform, platform}, true
	case cohort > 0:
		return baselineRef{referenceCohort, cohort}, true
	default:
		return baselineRef{}, false
	}
}

func engagementReference(b entity.Baselines) (baselineRef, bool) {
	return reference(b.PlatformAvgEngagement, b.CohortAvgEngagement)
}

func ctrReference(b entity.Baselines) (baselineRef, bool) {
	return reference(b.PlatformAvgCTR, b.CohortAvgCTR)
}

// Diagnose classifies engagement rate and CTR, each once, against one
// reference baseline (see reference). A rate above baseline*(1+margin) is a
// strength, below baseline*(1-margin) a weakness. A dimension with no
// non-zero baseline is skipped.
func (e *Engine) Diagnose(kpis entity.PostKPIs, baselines entity.Baselines) entity.Diagnostics {
	d := entity.Diagnostics{
		Strengths:        []string{},
		Weaknesses:       []string{},
		StrongDimensions: []entity.Dimension{},
		WeakDimensions:   []entity.Dimension{},
	}

	if ref, ok := engagementReference(baselines); ok {
		e.classify(&d, entity.DimensionEngagement, "Engagement rate", kpis.EngagementRate, ref)
	}
	if ref, ok := ctrReference(baselines); ok {
		e.classify(&d, entity.DimensionCTR, "Click-through rate", kpis.ClickThroughRate, ref)
	}

	return d
}

func (e *Engine) classify(d *entity.Diagnostics, dim entity.Dimension, label string, rate float64, ref baselineRef) {
	delta := (rate - ref.value) / ref.value
	switch {
	case rate > ref.value*(1+e.cfg.Margin):
		d.Strengths = append(d.Strengths, fmt.Sprintf(
			"%s (%.2f%%) is above %s average (%.2f%%) by %.1f%%",
			label, rate, ref.name, ref.value, delta*100,
		))
		d.StrongDimensions = append(d.StrongDimensions, dim)
	case rate < ref.value*(1-e.cfg.Margin):
		d.Weaknesses = append(d.Weaknesses, fmt.Sprintf(
			"%s (%.2f%%) is below %s average (%.2f%%) by %.1f%%",
			label, rate, ref.name, ref.value, -delta*100,
		))
		d.WeakDimensions = append(d.WeakDimensions, dim)
	}
}
