// Package engine turns raw post metrics and a reference cohort into KPIs,
// baselines, diagnostics, recommendations and an executive summary.
//
// Every operation is a pure function of its inputs: the engine holds no
// mutable state and is safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// DefaultMargin is the relative difference a rate must exceed its baseline
// by (or fall short of it by) to count as a strength (or weakness).
const DefaultMargin = 0.10

// Config holds engine tuning parameters
type Config struct {
	// Margin is the relative threshold used by Diagnose, e.g. 0.10 for 10%.
	// Zero means unset and selects DefaultMargin.
	Margin float64
	// ExcludeSubject drops cohort members with the subject's PostID
	// before computing baselines
	ExcludeSubject bool
}

// DefaultConfig returns the configuration used by the package-level functions
func DefaultConfig() Config {
	return Config{Margin: DefaultMargin}
}

// Engine is the KPI & benchmark engine
type Engine struct {
	cfg Config
}

// New creates an engine. A zero, negative or non-finite margin falls back to DefaultMargin.
func New(cfg Config) *Engine {
	if cfg.Margin <= 0 || math.IsNaN(cfg.Margin) || math.IsInf(cfg.Margin, 0) {
		cfg.Margin = DefaultMargin
	}
	return &Engine{cfg: cfg}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

var defaultEngine = New(DefaultConfig())

// Analyze runs the full pipeline with the default configuration
func Analyze(post entity.PostMetrics, cohort []entity.PostMetrics) (*entity.AnalysisOutput, error) {
	return defaultEngine.Analyze(post, cohort)
}

// Analyze validates the inputs and produces a complete AnalysisOutput.
// It either returns a fully populated output or a single typed error:
// *entity.InvalidMetricsError for bad input, *entity.ComputationError otherwise.
func (e *Engine) Analyze(post entity.PostMetrics, cohort []entity.PostMetrics) (out *entity.AnalysisOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &entity.ComputationError{Op: "analyze", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := validate(&post); err != nil {
		return nil, err
	}
	for i := range cohort {
		if err := validate(&cohort[i]); err != nil {
			return nil, err
		}
	}

	kpis := ComputeKPIs(post)
	if err := checkKPIs(kpis); err != nil {
		return nil, err
	}

	baselines := e.ComputeBaselines(post, cohort)
	if err := checkBaselines(baselines); err != nil {
		return nil, err
	}

	diagnostics := e.Diagnose(kpis, baselines)
	recommendations := Recommend(kpis, baselines, diagnostics, post)
	summary := Summarize(kpis, baselines, diagnostics, recommendations)

	return &entity.AnalysisOutput{
		PostKPIs:          kpis,
		PlatformBaselines: baselines,
		Diagnostics:       diagnostics,
		Recommendations:   recommendations,
		SummaryMD:         summary,
	}, nil
}

// validate checks the field contract and that the interaction sum fits in int64
func validate(p *entity.PostMetrics) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := interactions(p); err != nil {
		return &entity.ComputationError{Op: "interactions " + p.PostID, Err: err}
	}
	return nil
}

var errOverflow = errors.New("integer overflow")

// interactions returns likes + comments + shares, failing on overflow.
// Counters are already known to be non-negative.
func interactions(p *entity.PostMetrics) (int64, error) {
	sum := p.Likes
	for _, v := range []int64{p.Comments, p.Shares} {
		if sum > math.MaxInt64-v {
			return 0, errOverflow
		}
		sum += v
	}
	return sum, nil
}

func checkKPIs(k entity.PostKPIs) error {
	return checkFinite("kpis", map[string]float64{
		"engagement_rate":    k.EngagementRate,
		"click_through_rate": k.ClickThroughRate,
		"save_rate":          k.SaveRate,
		"comment_rate":       k.CommentRate,
		"share_rate":         k.ShareRate,
	})
}

func checkBaselines(b entity.Baselines) error {
	return checkFinite("baselines", map[string]float64{
		"platform_avg_engagement": b.PlatformAvgEngagement,
		"cohort_avg_engagement":   b.CohortAvgEngagement,
		"platform_avg_ctr":        b.PlatformAvgCTR,
		"cohort_avg_ctr":          b.CohortAvgCTR,
	})
}

func checkFinite(op string, values map[string]float64) error {
	for _, name := range sortedKeys(values) {
		v := values[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &entity.ComputationError{Op: op, Err: fmt.Errorf("%s is not finite", name)}
		}
	}
	return nil
}
