package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGuide(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewLocalGuideSourceRejectsMissingDirectory(t *testing.T) {
	_, err := NewLocalGuideSource(filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open guide directory")
}

func TestNewLocalGuideSourceRejectsPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeGuide(t, dir, "bleeding.md", "# Bleeding")

	_, err := NewLocalGuideSource(filepath.Join(dir, "bleeding.md"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestListReturnsOnlyGuideFiles(t *testing.T) {
	dir := t.TempDir()
	writeGuide(t, dir, "bleeding.md", "# Bleeding")
	writeGuide(t, dir, "burns.txt", "Burns")
	writeGuide(t, dir, "notes.json", "{}")
	writeGuide(t, dir, "README", "readme")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	source, err := NewLocalGuideSource(dir)
	require.NoError(t, err)

	names, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bleeding.md", "burns.txt"}, names)
}

func TestReadReturnsGuideContent(t *testing.T) {
	dir := t.TempDir()
	writeGuide(t, dir, "choking.md", "# Choking\n\nEncourage coughing.")

	source, err := NewLocalGuideSource(dir)
	require.NoError(t, err)

	content, err := source.Read(context.Background(), "choking.md")
	require.NoError(t, err)
	assert.Equal(t, "# Choking\n\nEncourage coughing.", content)
}

func TestReadStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	writeGuide(t, dir, "burns.md", "# Burns")

	source, err := NewLocalGuideSource(dir)
	require.NoError(t, err)

	content, err := source.Read(context.Background(), "nested/path/burns.md")
	require.NoError(t, err)
	assert.Equal(t, "# Burns", content)
}

func TestReadFailsOnMissingGuide(t *testing.T) {
	source, err := NewLocalGuideSource(t.TempDir())
	require.NoError(t, err)

	_, err = source.Read(context.Background(), "ghost.md")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "guide not found")
}
