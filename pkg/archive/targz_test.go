package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourceTree(t *testing.T) string {
	t.Helper()
	source := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "sub", "b.txt"), []byte("world"), 0o644))
	return source
}

func TestTarGzCreateAndExtract(t *testing.T) {
	source := writeSourceTree(t)
	destination := filepath.Join(t.TempDir(), "docs_20240317_094503.tar.gz")

	size, err := NewTarGzCreator().Create(context.Background(), source, destination)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	info, err := os.Stat(destination)
	require.NoError(t, err)
	assert.Equal(t, size, info.Size())

	// no temp file left behind
	_, err = os.Stat(destination + ".tmp")
	assert.True(t, os.IsNotExist(err))

	restoreDir := t.TempDir()
	require.NoError(t, Extract(context.Background(), destination, restoreDir))

	content, err := os.ReadFile(filepath.Join(restoreDir, "docs", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	content, err = os.ReadFile(filepath.Join(restoreDir, "docs", "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(content))
}

func TestTarGzCreateLeavesNothingOnFailure(t *testing.T) {
	root := t.TempDir()
	destination := filepath.Join(root, "docs_20240317_094503.tar.gz")

	_, err := NewTarGzCreator().Create(context.Background(), filepath.Join(root, "does-not-exist"), destination)
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed creation must leave no files")
}

func TestTarGzCreateCancelled(t *testing.T) {
	source := writeSourceTree(t)
	root := t.TempDir()
	destination := filepath.Join(root, "docs_20240317_094503.tar.gz")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTarGzCreator().Create(ctx, source, destination)
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "a cancelled creation must leave no files")
}

func TestExtractRefusesEscapingEntries(t *testing.T) {
	_, err := securePath("/tmp/restore", "../evil.txt")
	assert.Error(t, err)
}
