// Package retention decides which archives to delete once a source
// exceeds its configured window. It is pure: no I/O, no errors.
package retention

import (
	"sort"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

// Policy bounds the number of archives kept per source.
type Policy struct {
	MaxArchives int
}

// SelectForDeletion returns the records beyond the newest MaxArchives,
// oldest first so callers can log deletions chronologically. All
// records are expected to share one source name. Timestamp ties break
// on path lexical order so the selection is deterministic.
func (p Policy) SelectForDeletion(records []archive.Record) []archive.Record {
	if p.MaxArchives < 1 || len(records) <= p.MaxArchives {
		return nil
	}

	sorted := make([]archive.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].Path < sorted[j].Path
	})

	toDelete := sorted[p.MaxArchives:]
	for i, j := 0, len(toDelete)-1; i < j; i, j = i+1, j-1 {
		toDelete[i], toDelete[j] = toDelete[j], toDelete[i]
	}
	return toDelete
}
