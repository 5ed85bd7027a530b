package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
	"github.com/vadim/social-insights/internal/domain/analytics/policy"
	"github.com/vadim/social-insights/internal/domain/analytics/service"
	"github.com/vadim/social-insights/internal/httpx/response"
)

// maxBatchSize caps the number of posts in one batch request
const maxBatchSize = 100

// AnalyticsPolicy defines the interface for analytics operations
// Interface is defined by consumer (handler), not provider (policy)
type AnalyticsPolicy interface {
	Analyze(ctx context.Context, in policy.AnalyzeInput) (*entity.AnalysisOutput, error)
	AnalyzeBatch(ctx context.Context, ids []string) ([]service.BatchResult, error)
}

// AnalyticsHandler handles HTTP requests for post analysis
type AnalyticsHandler struct {
	policy AnalyticsPolicy
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(p AnalyticsPolicy) *AnalyticsHandler {
	return &AnalyticsHandler{policy: p}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Post("/analyze", h.Analyze())
		r.Post("/batch", h.Batch())
	})
}

// AnalyzeRequest represents the request body for an inline analysis
type AnalyzeRequest struct {
	Post   *entity.PostMetrics  `json:"post"`
	Cohort []entity.PostMetrics `json:"cohort"`
}

// AnalysisResponse is the analysis result plus display-ready strings
type AnalysisResponse struct {
	PostID   string                 `json:"post_id"`
	Analysis *entity.AnalysisOutput `json:"analysis"`
	Display  AnalysisDisplay        `json:"display"`
}

// AnalysisDisplay holds KPIs as two-decimal percentages and deltas against baselines
type AnalysisDisplay struct {
	EngagementRate   string `json:"engagement_rate"`
	ClickThroughRate string `json:"click_through_rate"`
	SaveRate         string `json:"save_rate"`
	CommentRate      string `json:"comment_rate"`
	ShareRate        string `json:"share_rate"`

	EngagementVsPlatform string `json:"engagement_vs_platform"`
	EngagementVsCohort   string `json:"engagement_vs_cohort"`
	CTRVsPlatform        string `json:"ctr_vs_platform"`
	CTRVsCohort          string `json:"ctr_vs_cohort"`
}

// Analyze handles POST /analytics/analyze
func (h *AnalyticsHandler) Analyze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := decodePostJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
		if req.Post == nil {
			response.BadRequest(w, "post is required")
			return
		}

		out, err := h.policy.Analyze(r.Context(), policy.AnalyzeInput{
			Post:   *req.Post,
			Cohort: req.Cohort,
		})
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.OK(w, newAnalysisResponse(req.Post.PostID, out))
	}
}

// BatchRequest represents the request body for a batch analysis
type BatchRequest struct {
	PostIDs []string `json:"post_ids"`
}

// BatchItem is one post's outcome in a batch response
type BatchItem struct {
	PostID string            `json:"post_id"`
	Result *AnalysisResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// BatchResponse represents the response for a batch analysis
type BatchResponse struct {
	Results []BatchItem `json:"results"`
	Failed  int         `json:"failed"`
}

// Batch handles POST /analytics/batch
func (h *AnalyticsHandler) Batch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
		if len(req.PostIDs) == 0 {
			response.BadRequest(w, "post_ids is required")
			return
		}
		if len(req.PostIDs) > maxBatchSize {
			response.BadRequest(w, fmt.Sprintf("at most %d post_ids per batch", maxBatchSize))
			return
		}
		for _, id := range req.PostIDs {
			if strings.TrimSpace(id) == "" {
				response.BadRequest(w, "post_ids must not contain empty values")
				return
			}
		}

		results, err := h.policy.AnalyzeBatch(r.Context(), req.PostIDs)
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		resp := BatchResponse{Results: make([]BatchItem, len(results))}
		for i, res := range results {
			item := BatchItem{PostID: res.PostID}
			if res.Err != nil {
				item.Error = res.Err.Error()
				resp.Failed++
			} else {
				item.Result = newAnalysisResponse(res.PostID, res.Output)
			}
			resp.Results[i] = item
		}

		response.OK(w, resp)
	}
}

func newAnalysisResponse(postID string, out *entity.AnalysisOutput) *AnalysisResponse {
	k := out.PostKPIs
	b := out.PlatformBaselines

	return &AnalysisResponse{
		PostID:   postID,
		Analysis: out,
		Display: AnalysisDisplay{
			EngagementRate:   formatPercent(k.EngagementRate),
			ClickThroughRate: formatPercent(k.ClickThroughRate),
			SaveRate:         formatPercent(k.SaveRate),
			CommentRate:      formatPercent(k.CommentRate),
			ShareRate:        formatPercent(k.ShareRate),

			EngagementVsPlatform: formatDelta(k.EngagementRate - b.PlatformAvgEngagement),
			EngagementVsCohort:   formatDelta(k.EngagementRate - b.CohortAvgEngagement),
			CTRVsPlatform:        formatDelta(k.ClickThroughRate - b.PlatformAvgCTR),
			CTRVsCohort:          formatDelta(k.ClickThroughRate - b.CohortAvgCTR),
		},
	}
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func formatDelta(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func handleAnalyticsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidMetrics):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrPostNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrDuplicatePost):
		response.Conflict(w, err.Error())
	case errors.Is(err, entity.ErrComputation):
		response.Unprocessable(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
