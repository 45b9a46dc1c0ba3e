package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GuideSource provides the raw first-aid guide corpus for ingestion
type GuideSource interface {
	// List returns the names of available guide documents
	List(ctx context.Context) ([]string, error)

	// Read returns the content of one guide document
	Read(ctx context.Context, name string) (string, error)
}

// SourceType represents the guide corpus backend type
type SourceType string

const (
	SourceTypeLocal SourceType = "local"
	SourceTypeS3    SourceType = "s3"
)

// SourceConfig holds configuration for a guide source
type SourceConfig struct {
	Type         SourceType
	LocalPath    string // For local sources
	S3Bucket     string // For S3 sources
	S3Prefix     string // For S3 sources
	S3Region     string // For S3 sources
	AWSAccessKey string
	AWSSecretKey string
}

// NewGuideSource creates a guide source based on configuration
func NewGuideSource(cfg SourceConfig) (GuideSource, error) {
	switch cfg.Type {
	case SourceTypeLocal:
		return NewLocalGuideSource(cfg.LocalPath)
	case SourceTypeS3:
		return NewS3GuideSource(cfg)
	default:
		return nil, fmt.Errorf("unknown guide source type: %s", cfg.Type)
	}
}

// NewGuideSourceFromEnv creates a guide source from environment variables
func NewGuideSourceFromEnv() (GuideSource, error) {
	sourceType := os.Getenv("GUIDES_SOURCE")
	if sourceType == "" {
		sourceType = "local" // Default to local for development
	}

	switch SourceType(sourceType) {
	case SourceTypeLocal:
		localPath := os.Getenv("GUIDES_LOCAL_PATH")
		if localPath == "" {
			localPath = "./guides" // Default corpus directory
		}
		return NewLocalGuideSource(localPath)

	case SourceTypeS3:
		cfg := SourceConfig{
			Type:     SourceTypeS3,
			S3Bucket: os.Getenv("AWS_S3_BUCKET"),
			S3Prefix: os.Getenv("AWS_S3_PREFIX"),
			S3Region: os.Getenv("AWS_REGION"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1" // Default region
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 guide sources")
		}

		return NewS3GuideSource(cfg)

	default:
		return nil, fmt.Errorf("unknown guide source type: %s", sourceType)
	}
}

// isGuideFile reports whether a filename looks like a guide document
func isGuideFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}
