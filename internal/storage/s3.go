package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxAssetSize is the largest generated asset we copy (50MB)
const MaxAssetSize = 50 << 20

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // e.g., "http://localhost:9000/assets"
	Prefix          string // key prefix, e.g. "generated"
}

// ObjectAPI is the subset of the S3 client used by AssetStore
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// AssetStore copies generated media into S3-compatible storage
type AssetStore struct {
	client     ObjectAPI
	httpClient *http.Client
	bucket     string
	publicURL  string
	prefix     string
}

// NewAssetStore creates an asset store backed by a static-credential S3 client
func NewAssetStore(cfg S3Config) *AssetStore {
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return NewAssetStoreWithClient(client, &http.Client{Timeout: 60 * time.Second}, cfg)
}

// NewAssetStoreWithClient creates an asset store over an existing object client
func NewAssetStoreWithClient(client ObjectAPI, httpClient *http.Client, cfg S3Config) *AssetStore {
	return &AssetStore{
		client:     client,
		httpClient: httpClient,
		bucket:     cfg.Bucket,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		prefix:     strings.Trim(cfg.Prefix, "/"),
	}
}

// UploadInput represents input for uploading a file
type UploadInput struct {
	Reader      io.Reader
	ContentType string
	Size        int64
	Filename    string // Optional: used for extension extraction
}

// UploadOutput represents output from uploading a file
type UploadOutput struct {
	Key        string
	URL        string
	Size       int64
	UploadedAt time.Time
}

// Upload stores a file under a date-partitioned random key
func (s *AssetStore) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	ext := path.Ext(in.Filename)
	if ext == "" {
		ext = extensionFor(in.ContentType)
	}
	key := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01/02"), uuid.New().String(), ext)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	put := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        in.Reader,
		ContentType: aws.String(in.ContentType),
	}
	if in.Size > 0 {
		put.ContentLength = aws.Int64(in.Size)
	}

	if _, err := s.client.PutObject(ctx, put); err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &UploadOutput{
		Key:        key,
		URL:        fmt.Sprintf("%s/%s", s.publicURL, key),
		Size:       in.Size,
		UploadedAt: time.Now(),
	}, nil
}

// Mirror downloads a provider-hosted file and stores a stable copy.
// Provider URLs for generated media are short-lived.
func (s *AssetStore) Mirror(ctx context.Context, sourceURL string) (*UploadOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading asset: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxAssetSize {
		return nil, fmt.Errorf("asset too large: %d bytes", resp.ContentLength)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !IsAllowedContentType(contentType) {
		return nil, fmt.Errorf("unsupported asset content type: %q", contentType)
	}

	// Read fully so the upload has a known length and a cap is enforced
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}
	if len(body) > MaxAssetSize {
		return nil, fmt.Errorf("asset too large")
	}

	return s.Upload(ctx, UploadInput{
		Reader:      bytes.NewReader(body),
		ContentType: contentType,
		Size:        int64(len(body)),
		Filename:    path.Base(req.URL.Path),
	})
}

// Delete removes a file from S3
func (s *AssetStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting from s3: %w", err)
	}
	return nil
}

// IsAllowedContentType reports whether a content type may be stored
func IsAllowedContentType(contentType string) bool {
	return extensionFor(contentType) != ""
}

// extensionFor returns a file extension based on content type
func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}
