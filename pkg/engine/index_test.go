package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

type recordingIndex struct {
	added   []archive.Record
	removed []string
	err     error
}

func (i *recordingIndex) Add(record archive.Record) error {
	if i.err != nil {
		return i.err
	}
	i.added = append(i.added, record)
	return nil
}

func (i *recordingIndex) Remove(path string) error {
	if i.err != nil {
		return i.err
	}
	i.removed = append(i.removed, path)
	return nil
}

func TestRunUpdatesIndex(t *testing.T) {
	root := t.TempDir()
	seeded := seedArchives(t, root, "docs", 3)
	source := sourceDir(t, "docs")
	idx := &recordingIndex{}

	eng := newTestEngine(root, 2, stubCreator{payload: []byte("fresh")}, WithIndex(idx))
	summary, err := eng.Run(context.Background(), []Request{{SourceDir: source}})
	require.NoError(t, err)
	require.Equal(t, StatusCreated, summary.Outcomes[0].Status)

	require.Len(t, idx.added, 1)
	assert.Equal(t, summary.Outcomes[0].Created.Path, idx.added[0].Path)

	// 3 seeded + 1 new, keep 2: the two oldest seeded go
	require.Len(t, idx.removed, 2)
	assert.Equal(t, []string{seeded[0], seeded[1]}, idx.removed)
}

func TestIndexErrorsAreAdvisory(t *testing.T) {
	root := t.TempDir()
	seedArchives(t, root, "docs", 3)
	source := sourceDir(t, "docs")
	idx := &recordingIndex{err: errors.New("index corrupt")}

	eng := newTestEngine(root, 2, stubCreator{payload: []byte("fresh")}, WithIndex(idx))
	summary, err := eng.Run(context.Background(), []Request{{SourceDir: source}})
	require.NoError(t, err)

	outcome := summary.Outcomes[0]
	assert.Equal(t, StatusCreated, outcome.Status, "index failures must never fail a backup")
	assert.Len(t, outcome.Deleted, 2)
	assert.Len(t, listNames(t, root), 2)
}
