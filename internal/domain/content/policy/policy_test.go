package policy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/social-insights/internal/domain/content/entity"
	"github.com/vadim/social-insights/internal/metrics"
)

type fakeGenerator struct {
	out   *GenerateOutput
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	f.calls++
	return f.out, f.err
}

type fakeMirror struct {
	fail map[string]bool
}

func (f *fakeMirror) Mirror(ctx context.Context, sourceURL string) (string, error) {
	if f.fail[sourceURL] {
		return "", errors.New("download failed")
	}
	return "https://storage.example.com/" + sourceURL[len(sourceURL)-5:], nil
}

type fakeRecorder struct {
	generations []string
	mirrors     []string
}

func (f *fakeRecorder) ObserveGeneration(outcome string, _ time.Duration) {
	f.generations = append(f.generations, outcome)
}

func (f *fakeRecorder) ObserveAssetMirror(kind, outcome string) {
	f.mirrors = append(f.mirrors, kind+":"+outcome)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() GenerateContentInput {
	return GenerateContentInput{
		Company: entity.CompanyInput{
			CompanyName: "TechFlow AI",
			Topic:       "AI in customer service",
			BrandVoice:  entity.BrandVoiceProfessional,
		},
		Options: entity.GenerationOptions{GenerateImages: true},
	}
}

func sampleOutput() *GenerateOutput {
	return &GenerateOutput{
		RunID: "run-1",
		Content: entity.SocialMediaContent{
			Instagram: []entity.InstagramPost{{Caption: "Hello", Hashtags: "#ai"}},
			Twitter:   entity.TwitterPost{TweetText: "Short tweet"},
		},
		Assets: []entity.Asset{
			{Kind: entity.AssetKindImage, Platform: "instagram", Index: 1, SourceURL: "https://p.example.com/a.png"},
			{Kind: entity.AssetKindImage, Platform: "twitter", Index: 1, SourceURL: "https://p.example.com/b.png"},
		},
	}
}

func TestPolicy_Generate(t *testing.T) {
	gen := &fakeGenerator{out: sampleOutput()}
	rec := &fakeRecorder{}
	p := New(gen, &fakeMirror{fail: map[string]bool{"https://p.example.com/b.png": true}}, rec, discardLogger())

	out, err := p.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "TechFlow AI", out.Input.CompanyName)
	assert.Equal(t, "Hello", out.Content.Instagram[0].Caption)
	require.Len(t, out.Assets, 2)
	assert.Equal(t, "https://storage.example.com/a.png", out.Assets[0].URL)
	assert.Empty(t, out.Assets[1].URL, "failed mirror keeps only the source url")
	assert.Equal(t, "https://p.example.com/b.png", out.Assets[1].SourceURL)

	assert.Equal(t, []string{metrics.OutcomeSuccess}, rec.generations)
	assert.Equal(t, []string{"image:" + metrics.OutcomeSuccess, "image:" + metrics.OutcomeError}, rec.mirrors)
}

func TestPolicy_GenerateWithoutStorage(t *testing.T) {
	p := New(&fakeGenerator{out: sampleOutput()}, nil, &fakeRecorder{}, discardLogger())

	out, err := p.Generate(context.Background(), validInput())
	require.NoError(t, err)
	for _, a := range out.Assets {
		assert.Empty(t, a.URL)
	}
}

func TestPolicy_GenerateInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerateContentInput)
		wantErr error
	}{
		{"empty company", func(in *GenerateContentInput) { in.Company.CompanyName = "  " }, entity.ErrEmptyCompanyName},
		{"empty topic", func(in *GenerateContentInput) { in.Company.Topic = "" }, entity.ErrEmptyTopic},
		{"unknown voice", func(in *GenerateContentInput) { in.Company.BrandVoice = "sarcastic" }, entity.ErrInvalidBrandVoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{out: sampleOutput()}
			rec := &fakeRecorder{}
			p := New(gen, nil, rec, discardLogger())

			in := validInput()
			tt.mutate(&in)
			_, err := p.Generate(context.Background(), in)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, gen.calls)
			assert.Equal(t, []string{metrics.OutcomeInvalid}, rec.generations)
		})
	}
}

func TestPolicy_GenerateErrors(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		rec := &fakeRecorder{}
		p := New(&fakeGenerator{err: fmt.Errorf("%w: breaker open", ErrUnavailable)}, nil, rec, discardLogger())

		_, err := p.Generate(context.Background(), validInput())
		assert.ErrorIs(t, err, entity.ErrGeneratorUnavailable)
		assert.Equal(t, []string{metrics.OutcomeUnavailable}, rec.generations)
	})

	t.Run("pipeline failure", func(t *testing.T) {
		rec := &fakeRecorder{}
		p := New(&fakeGenerator{err: errors.New("status 502")}, nil, rec, discardLogger())

		_, err := p.Generate(context.Background(), validInput())
		assert.ErrorIs(t, err, entity.ErrPipelineFailed)
		assert.Equal(t, []string{metrics.OutcomeError}, rec.generations)
	})

	t.Run("empty content", func(t *testing.T) {
		p := New(&fakeGenerator{out: &GenerateOutput{RunID: "x"}}, nil, &fakeRecorder{}, discardLogger())

		_, err := p.Generate(context.Background(), validInput())
		assert.ErrorIs(t, err, entity.ErrPipelineFailed)
	})
}

func TestPolicy_GenerateWarnsOnLongTweet(t *testing.T) {
	out := sampleOutput()
	long := make([]rune, entity.MaxTweetLength+1)
	for i := range long {
		long[i] = 'a'
	}
	out.Content.Twitter.TweetText = string(long)

	p := New(&fakeGenerator{out: out}, nil, &fakeRecorder{}, discardLogger())
	gen, err := p.Generate(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"tweet text exceeds 280 characters"}, gen.Warnings)
}
