package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

func newTestIndex(t *testing.T) *SQLLiteIndex {
	t.Helper()
	idx, err := NewSQLLite(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	require.NoError(t, idx.Init())
	t.Cleanup(func() { idx.Close() })
	return idx
}

func record(source string, hour int) archive.Record {
	createdAt := time.Date(2024, 3, 17, hour, 0, 0, 0, time.UTC)
	return archive.Record{
		SourceName: source,
		CreatedAt:  createdAt,
		Path:       "/backups/" + archive.Record{SourceName: source, CreatedAt: createdAt}.Name(),
		SizeBytes:  1024,
	}
}

func TestAddAndBySource(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Add(record("docs", 9)))
	require.NoError(t, idx.Add(record("docs", 10)))
	require.NoError(t, idx.Add(record("db", 9)))

	records, err := idx.BySource("docs")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// newest first
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.Equal(t, int64(1024), records[0].SizeBytes)
}

func TestAddIsIdempotentPerPath(t *testing.T) {
	idx := newTestIndex(t)
	rec := record("docs", 9)

	require.NoError(t, idx.Add(rec))
	require.NoError(t, idx.Add(rec))

	records, err := idx.BySource("docs")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRemove(t *testing.T) {
	idx := newTestIndex(t)
	rec := record("docs", 9)
	require.NoError(t, idx.Add(rec))

	require.NoError(t, idx.Remove(rec.Path))

	records, err := idx.BySource("docs")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRebuildReplacesContents(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add(record("stale", 8)))

	fresh := []archive.Record{record("docs", 9), record("docs", 10)}
	require.NoError(t, idx.Rebuild(fresh))

	records, err := idx.BySource("stale")
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = idx.BySource("docs")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
