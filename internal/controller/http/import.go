package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/social-insights/internal/domain/analytics/policy"
	"github.com/vadim/social-insights/internal/httpx/response"
)

// ImportPolicy defines the interface for importing platform posts
type ImportPolicy interface {
	Import(ctx context.Context, in policy.ImportInput) (*policy.ImportOutput, error)
}

// ImportHandler handles HTTP requests for post imports
type ImportHandler struct {
	policy ImportPolicy
}

// NewImportHandler creates a new import handler
func NewImportHandler(p ImportPolicy) *ImportHandler {
	return &ImportHandler{policy: p}
}

// RegisterRoutes registers import routes
func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/imports/instagram", h.Instagram())
}

// ImportRequest represents the request body for an Instagram import
type ImportRequest struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	Topic       string `json:"topic"`
	Limit       int    `json:"limit"`
}

// Instagram handles POST /imports/instagram
func (h *ImportHandler) Instagram() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		out, err := h.policy.Import(r.Context(), policy.ImportInput{
			UserID:      req.UserID,
			AccessToken: req.AccessToken,
			Topic:       req.Topic,
			Limit:       req.Limit,
		})
		if err != nil {
			if errors.Is(err, policy.ErrMissingCredentials) {
				response.BadRequest(w, err.Error())
				return
			}
			response.BadGateway(w, "importing posts failed")
			return
		}

		response.OK(w, out)
	}
}
