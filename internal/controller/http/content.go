package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/social-insights/internal/domain/content/entity"
	"github.com/vadim/social-insights/internal/domain/content/policy"
	"github.com/vadim/social-insights/internal/httpx/response"
)

// ContentPolicy defines the interface for content generation
type ContentPolicy interface {
	Generate(ctx context.Context, in policy.GenerateContentInput) (*entity.Generation, error)
}

// ContentHandler handles HTTP requests for content generation
type ContentHandler struct {
	policy ContentPolicy
}

// NewContentHandler creates a new content handler
func NewContentHandler(p ContentPolicy) *ContentHandler {
	return &ContentHandler{policy: p}
}

// RegisterRoutes registers content routes
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/content", func(r chi.Router) {
		r.Post("/generate", h.Generate())
	})
}

// GenerateRequest represents the request body for generating content
type GenerateRequest struct {
	CompanyName    string `json:"company_name"`
	Topic          string `json:"topic"`
	BrandVoice     string `json:"brand_voice"`
	GenerateImages bool   `json:"generate_images"`
	GenerateAudio  bool   `json:"generate_audio"`
}

// Generate handles POST /content/generate
func (h *ContentHandler) Generate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		gen, err := h.policy.Generate(r.Context(), policy.GenerateContentInput{
			Company: entity.CompanyInput{
				CompanyName: req.CompanyName,
				Topic:       req.Topic,
				BrandVoice:  entity.BrandVoice(req.BrandVoice),
			},
			Options: entity.GenerationOptions{
				GenerateImages: req.GenerateImages,
				GenerateAudio:  req.GenerateAudio,
			},
		})
		if err != nil {
			handleContentError(w, err)
			return
		}

		response.OK(w, gen)
	}
}

func handleContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyCompanyName),
		errors.Is(err, entity.ErrEmptyTopic),
		errors.Is(err, entity.ErrInvalidBrandVoice):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrGeneratorUnavailable):
		response.ServiceUnavailable(w, entity.ErrGeneratorUnavailable.Error())
	case errors.Is(err, entity.ErrPipelineFailed):
		response.BadGateway(w, entity.ErrPipelineFailed.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
