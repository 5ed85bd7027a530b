package entity

import "time"

// AssetKind is the type of a generated media asset
type AssetKind string

const (
	AssetKindImage AssetKind = "image"
	AssetKindAudio AssetKind = "audio"
)

// Asset is a media file produced by the generation pipeline
type Asset struct {
	Kind     AssetKind `json:"kind"`
	Platform string    `json:"platform"`
	Index    int       `json:"index"`
	// SourceURL is where the provider put the file; it may expire
	SourceURL string `json:"source_url"`
	// URL is the stable copy in our storage, empty if mirroring is off or failed
	URL string `json:"url,omitempty"`
}

// GenerationOptions toggles optional media generation
type GenerationOptions struct {
	GenerateImages bool `json:"generate_images"`
	GenerateAudio  bool `json:"generate_audio"`
}

// Generation is the result of one content generation request
type Generation struct {
	ID          string             `json:"id"`
	Input       CompanyInput       `json:"input"`
	Research    *MarketResearch    `json:"research,omitempty"`
	Content     SocialMediaContent `json:"content"`
	Assets      []Asset            `json:"assets"`
	Warnings    []string           `json:"warnings,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}
