package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/social-insights/internal/domain/content/entity"
)

const socialResponse = `{
	"run_id": "run-1",
	"main_stuff": {
		"instagram": [{"image_prompt": "a robot", "caption": "Hello", "hashtags": "#ai", "variation_angle": "bold"}],
		"twitter": {"image_prompt": "", "tweet_text": "Short tweet"},
		"linkedin": [{"post_text": "Long post", "image_prompt": "", "variation_angle": "thought leadership"}]
	},
	"extras": {
		"market_research": {"insights": [{"competitor_name": "Acme", "content_style": "clean", "engagement_tactics": "polls"}], "key_trends": "video", "recommendations": "post more"},
		"assets": [{"kind": "image", "platform": "instagram", "index": 1, "source_url": "https://cdn.example.com/1.png"}]
	}
}`

func TestClient_GenerateSocialContent(t *testing.T) {
	var gotBody executeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/pipelines/generate_social_content/execute", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(socialResponse))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithAPIKey("secret"))
	out, err := c.GenerateSocialContent(context.Background(), entity.CompanyInput{
		CompanyName: "TechFlow AI",
		Topic:       "AI in customer service",
		BrandVoice:  entity.BrandVoiceProfessional,
	}, entity.GenerationOptions{GenerateImages: true})
	require.NoError(t, err)

	assert.Equal(t, "run-1", out.RunID)
	require.Len(t, out.Content.Instagram, 1)
	assert.Equal(t, "Hello", out.Content.Instagram[0].Caption)
	assert.Equal(t, "Short tweet", out.Content.Twitter.TweetText)
	require.NotNil(t, out.Research)
	assert.Equal(t, "Acme", out.Research.Insights[0].CompetitorName)
	require.Len(t, out.Assets, 1)
	assert.Equal(t, entity.AssetKindImage, out.Assets[0].Kind)

	require.Contains(t, gotBody.Inputs, "company_input")
	assert.Equal(t, conceptCompanyInput, gotBody.Inputs["company_input"].Concept)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": {"message": "missing input company_input", "type": "validation"}}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Execute(context.Background(), ExecuteInput{PipeCode: PipeCampaignAnalytics})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "validation", apiErr.Type)
	assert.Equal(t, PipeCampaignAnalytics, apiErr.PipeCode)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream model failed"))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithBreaker(BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Execute(ctx, ExecuteInput{PipeCode: PipeGenerateSocialContent})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "upstream model failed", apiErr.Message)
	}

	_, err := c.Execute(ctx, ExecuteInput{PipeCode: PipeGenerateSocialContent})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad", "type": "validation"}}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithBreaker(BreakerSettings{MaxFailures: 1}))
	for i := 0; i < 3; i++ {
		_, err := c.Execute(context.Background(), ExecuteInput{PipeCode: PipeGenerateSocialContent})
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
}

func TestClient_EmptyMainStuff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"run_id": "x", "main_stuff": null}`))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Execute(context.Background(), ExecuteInput{PipeCode: PipeGenerateSocialContent})
	assert.ErrorContains(t, err, "returned no main stuff")
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main_stuff": {}}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithRateLimit(0.001, 1))

	_, err := c.Execute(context.Background(), ExecuteInput{PipeCode: PipeGenerateSocialContent})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Execute(ctx, ExecuteInput{PipeCode: PipeGenerateSocialContent})
	assert.ErrorContains(t, err, "rate limiter")
}
