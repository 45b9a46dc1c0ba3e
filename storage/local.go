package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalGuideSource implements GuideSource for a local directory
type LocalGuideSource struct {
	basePath string
}

// NewLocalGuideSource creates a guide source over a local directory
func NewLocalGuideSource(basePath string) (*LocalGuideSource, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open guide directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("guide path is not a directory: %s", basePath)
	}

	return &LocalGuideSource{
		basePath: basePath,
	}, nil
}

// List returns the guide document names in the directory
func (s *LocalGuideSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read guide directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isGuideFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Read returns the content of one guide document
func (s *LocalGuideSource) Read(ctx context.Context, name string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.Base(name))

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("guide not found: %s", name)
		}
		return "", fmt.Errorf("failed to read guide: %w", err)
	}

	return string(data), nil
}
