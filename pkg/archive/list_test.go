package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedArchive(t *testing.T, root string, source string, createdAt time.Time) string {
	t.Helper()
	name := Record{SourceName: source, CreatedAt: createdAt}.Name()
	path := filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0o644))
	return path
}

func TestListSkipsUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)

	seedArchive(t, root, "docs", base)
	seedArchive(t, root, "docs", base.Add(time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "subdir"), 0o755))

	records, err := List(root)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// newest first
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	for _, record := range records {
		assert.Equal(t, "docs", record.SourceName)
		assert.Equal(t, int64(7), record.SizeBytes)
	}
}

func TestListSourceFilters(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)

	seedArchive(t, root, "docs", base)
	seedArchive(t, root, "db", base)
	seedArchive(t, root, "db", base.Add(time.Minute))

	records, err := ListSource(root, "db")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = ListSource(root, "missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}
