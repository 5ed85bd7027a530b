package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vadim/social-insights/internal/domain/content/entity"
)

const (
	conceptCompanyInput = "social_content.CompanyInput"
	conceptOptions      = "social_content.GenerationOptions"

	extraMarketResearch = "market_research"
	extraAssets         = "assets"
)

// SocialContentOutput is the decoded result of generate_social_content
type SocialContentOutput struct {
	RunID    string
	Content  entity.SocialMediaContent
	Research *entity.MarketResearch
	Assets   []entity.Asset
}

// GenerateSocialContent executes generate_social_content for one company input
func (c *Client) GenerateSocialContent(ctx context.Context, in entity.CompanyInput, opts entity.GenerationOptions) (*SocialContentOutput, error) {
	out, err := c.Execute(ctx, ExecuteInput{
		PipeCode: PipeGenerateSocialContent,
		Inputs: map[string]Stuff{
			"company_input": {Concept: conceptCompanyInput, Content: in},
			"options":       {Concept: conceptOptions, Content: opts},
		},
	})
	if err != nil {
		return nil, err
	}

	result := &SocialContentOutput{RunID: out.RunID}
	if err := json.Unmarshal(out.MainStuff, &result.Content); err != nil {
		return nil, fmt.Errorf("decoding social media content: %w", err)
	}

	if raw, ok := out.Extras[extraMarketResearch]; ok {
		var research entity.MarketResearch
		if err := json.Unmarshal(raw, &research); err != nil {
			return nil, fmt.Errorf("decoding market research: %w", err)
		}
		result.Research = &research
	}

	if raw, ok := out.Extras[extraAssets]; ok {
		if err := json.Unmarshal(raw, &result.Assets); err != nil {
			return nil, fmt.Errorf("decoding assets: %w", err)
		}
	}

	return result, nil
}
