// Package index keeps an advisory SQLite cache of archive records.
// The destination directory listing stays authoritative; the cache is
// rebuildable from it at any time and callers must treat every index
// error as non-fatal.
package index

import (
	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

type Index interface {
	Init() error
	Add(record archive.Record) error
	Remove(path string) error
	BySource(sourceName string) ([]archive.Record, error)
	Rebuild(records []archive.Record) error
	Close() error
}
