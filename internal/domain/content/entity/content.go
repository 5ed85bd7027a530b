package entity

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// BrandVoice is the tone generated content should follow
type BrandVoice string

const (
	BrandVoiceProfessional  BrandVoice = "professional"
	BrandVoiceCasual        BrandVoice = "casual"
	BrandVoicePlayful       BrandVoice = "playful"
	BrandVoiceAuthoritative BrandVoice = "authoritative"
	BrandVoiceFriendly      BrandVoice = "friendly"
	BrandVoiceInspirational BrandVoice = "inspirational"
)

// MaxTweetLength is the maximum length of a tweet in characters
const MaxTweetLength = 280

// Domain errors for content generation
var (
	ErrEmptyCompanyName     = errors.New("company name is required")
	ErrEmptyTopic           = errors.New("content topic is required")
	ErrInvalidBrandVoice    = errors.New("invalid brand voice")
	ErrGeneratorUnavailable = errors.New("content generator is temporarily unavailable")
	ErrPipelineFailed       = errors.New("content pipeline failed")
	ErrEmptyContent         = errors.New("content pipeline returned no content")
)

// CompanyInput holds the form inputs for content generation
type CompanyInput struct {
	CompanyName string     `json:"company_name"`
	Topic       string     `json:"topic"`
	BrandVoice  BrandVoice `json:"brand_voice"`
}

// Validate validates the company input
func (c *CompanyInput) Validate() error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return ErrEmptyCompanyName
	}
	if strings.TrimSpace(c.Topic) == "" {
		return ErrEmptyTopic
	}
	if !IsValidBrandVoice(c.BrandVoice) {
		return ErrInvalidBrandVoice
	}
	return nil
}

// IsValidBrandVoice checks if a brand voice is supported
func IsValidBrandVoice(v BrandVoice) bool {
	switch v {
	case BrandVoiceProfessional, BrandVoiceCasual, BrandVoicePlayful,
		BrandVoiceAuthoritative, BrandVoiceFriendly, BrandVoiceInspirational:
		return true
	}
	return false
}

// CompetitorInsight is what competitor research found for one competitor
type CompetitorInsight struct {
	CompetitorName    string `json:"competitor_name"`
	ContentStyle      string `json:"content_style"`
	EngagementTactics string `json:"engagement_tactics"`
}

// MarketResearch aggregates competitor insights
type MarketResearch struct {
	Insights        []CompetitorInsight `json:"insights"`
	KeyTrends       string              `json:"key_trends"`
	Recommendations string              `json:"recommendations"`
}

// InstagramPost is one Instagram variation
type InstagramPost struct {
	ImagePrompt    string `json:"image_prompt"`
	Caption        string `json:"caption"`
	Hashtags       string `json:"hashtags"`
	VariationAngle string `json:"variation_angle"`
}

// TwitterPost is the Twitter/X post
type TwitterPost struct {
	ImagePrompt string `json:"image_prompt"`
	TweetText   string `json:"tweet_text"`
}

// TweetLength returns the tweet length in characters
func (t TwitterPost) TweetLength() int {
	return utf8.RuneCountInString(t.TweetText)
}

// LinkedInPost is one LinkedIn variation; an empty ImagePrompt means text-only
type LinkedInPost struct {
	PostText       string `json:"post_text"`
	ImagePrompt    string `json:"image_prompt"`
	VariationAngle string `json:"variation_angle"`
}

// HasImage reports whether the variation carries an image prompt
func (l LinkedInPost) HasImage() bool {
	p := strings.TrimSpace(l.ImagePrompt)
	return p != "" && !strings.EqualFold(p, "none")
}

// SocialMediaContent is the complete generated content package
type SocialMediaContent struct {
	Instagram []InstagramPost `json:"instagram"`
	Twitter   TwitterPost     `json:"twitter"`
	LinkedIn  []LinkedInPost  `json:"linkedin"`
}

// Validate checks that the pipeline produced usable content
func (c *SocialMediaContent) Validate() error {
	if len(c.Instagram) == 0 && len(c.LinkedIn) == 0 && strings.TrimSpace(c.Twitter.TweetText) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Warnings lists non-fatal problems with the generated content
func (c *SocialMediaContent) Warnings() []string {
	var warnings []string
	if c.Twitter.TweetLength() > MaxTweetLength {
		warnings = append(warnings, "tweet text exceeds 280 characters")
	}
	return warnings
}
