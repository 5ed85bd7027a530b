package entity

// RecommendationCategory is the area a recommendation addresses
type RecommendationCategory string

const (
	CategoryCaption  RecommendationCategory = "caption"
	CategoryHashtags RecommendationCategory = "hashtags"
	CategoryVisual   RecommendationCategory = "visual"
	CategoryCTA      RecommendationCategory = "CTA"
	CategoryTiming   RecommendationCategory = "timing"
)

// Categories lists all recommendation categories in display order
var Categories = []RecommendationCategory{
	CategoryCaption,
	CategoryHashtags,
	CategoryVisual,
	CategoryCTA,
	CategoryTiming,
}

// PostKPIs holds rates derived from one post, each expressed as a percentage
type PostKPIs struct {
	EngagementRate   float64 `json:"engagement_rate"`
	ClickThroughRate float64 `json:"click_through_rate"`
	SaveRate         float64 `json:"save_rate"`
	CommentRate      float64 `json:"comment_rate"`
	ShareRate        float64 `json:"share_rate"`
}

// Baselines holds averaged rates for the platform group and the narrow cohort
type Baselines struct {
	PlatformAvgEngagement float64 `json:"platform_avg_engagement"`
	CohortAvgEngagement   float64 `json:"cohort_avg_engagement"`
	PlatformAvgCTR        float64 `json:"platform_avg_ctr"`
	CohortAvgCTR          float64 `json:"cohort_avg_ctr"`
}

// Diagnostics lists findings from comparing KPIs to baselines
type Diagnostics struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`

	// WeakDimensions mirrors Weaknesses with the dimension each one concerns
	WeakDimensions []Dimension `json:"-"`
	// StrongDimensions mirrors Strengths with the dimension each one concerns
	StrongDimensions []Dimension `json:"-"`
}

// Dimension is a KPI evaluated by diagnostics
type Dimension string

const (
	DimensionEngagement Dimension = "engagement"
	DimensionCTR        Dimension = "ctr"
)

// HasWeakness reports whether any weakness concerns the given dimension
func (d Diagnostics) HasWeakness(dim Dimension) bool {
	for _, w := range d.WeakDimensions {
		if w == dim {
			return true
		}
	}
	return false
}

// HasStrength reports whether any strength concerns the given dimension
func (d Diagnostics) HasStrength(dim Dimension) bool {
	for _, s := range d.StrongDimensions {
		if s == dim {
			return true
		}
	}
	return false
}

// Recommendation is a single categorized, actionable suggestion
type Recommendation struct {
	Category   RecommendationCategory `json:"category"`
	Suggestion string                 `json:"suggestion"`
}

// AnalysisOutput is the complete result of analyzing one post
type AnalysisOutput struct {
	PostKPIs          PostKPIs         `json:"post_kpis"`
	PlatformBaselines Baselines        `json:"platform_baselines"`
	Diagnostics       Diagnostics      `json:"diagnostics"`
	Recommendations   []Recommendation `json:"recommendations"`
	SummaryMD         string           `json:"summary_md"`
}
