package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
	"github.com/vadim/social-insights/internal/domain/analytics/policy"
	"github.com/vadim/social-insights/internal/httpx/response"
)

// PostPolicy defines the interface for stored post operations
type PostPolicy interface {
	CreatePost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error)
	UpsertPost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error)
	GetPost(ctx context.Context, id string) (*entity.PostMetrics, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, in policy.ListPostsInput) (*policy.ListPostsOutput, error)
	AnalyzePost(ctx context.Context, id string) (*entity.AnalysisOutput, error)
}

// PostHandler handles HTTP requests for stored post metrics
type PostHandler struct {
	policy PostPolicy
}

// NewPostHandler creates a new post handler
func NewPostHandler(p PostPolicy) *PostHandler {
	return &PostHandler{policy: p}
}

// RegisterRoutes registers post routes
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Post("/", h.Create())
		r.Get("/", h.List())
		r.Get("/{id}", h.Get())
		r.Put("/{id}", h.Upsert())
		r.Delete("/{id}", h.Delete())
		r.Post("/{id}/analyze", h.Analyze())
	})
}

// Create handles POST /posts
func (h *PostHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entity.PostMetrics
		if err := decodePostJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		post, err := h.policy.CreatePost(r.Context(), req)
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.Created(w, post)
	}
}

// Upsert handles PUT /posts/{id}; the path ID wins over the body
func (h *PostHandler) Upsert() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req entity.PostMetrics
		if err := decodePostJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
		req.PostID = id

		post, err := h.policy.UpsertPost(r.Context(), req)
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Get handles GET /posts/{id}
func (h *PostHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.policy.GetPost(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Delete handles DELETE /posts/{id}
func (h *PostHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.policy.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.NoContent(w)
	}
}

// PostListResponse represents the response for listing posts
type PostListResponse struct {
	Posts  []entity.PostMetrics `json:"posts"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// List handles GET /posts
func (h *PostHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var in policy.ListPostsInput
		if v := q.Get("platform"); v != "" {
			p := entity.Platform(v)
			in.Platform = &p
		}
		if v := q.Get("topic"); v != "" {
			in.Topic = &v
		}
		if v := q.Get("format"); v != "" {
			f := entity.Format(v)
			in.Format = &f
		}

		// Parse pagination
		in.Limit = 50
		if l := q.Get("limit"); l != "" {
			li, err := strconv.Atoi(l)
			if err != nil || li < 1 {
				response.BadRequest(w, "invalid limit")
				return
			}
			in.Limit = min(li, 500)
		}
		if o := q.Get("offset"); o != "" {
			oi, err := strconv.Atoi(o)
			if err != nil || oi < 0 {
				response.BadRequest(w, "invalid offset")
				return
			}
			in.Offset = oi
		}

		out, err := h.policy.ListPosts(r.Context(), in)
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		posts := out.Posts
		if posts == nil {
			posts = []entity.PostMetrics{}
		}

		response.OK(w, PostListResponse{
			Posts:  posts,
			Total:  out.Total,
			Limit:  in.Limit,
			Offset: in.Offset,
		})
	}
}

// Analyze handles POST /posts/{id}/analyze
func (h *PostHandler) Analyze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		out, err := h.policy.AnalyzePost(r.Context(), id)
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.OK(w, newAnalysisResponse(id, out))
	}
}
