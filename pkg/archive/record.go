// Package archive handles the on-disk representation of backups: the
// naming scheme that embeds a source name and creation timestamp into
// each filename, creation of tar.gz archives, and listing/extraction.
// The filename is the only persisted metadata.
package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// Suffix is the file extension for all archives managed here.
	Suffix = ".tar.gz"

	timestampLayout = "20060102_150405"
)

var ErrInvalidSourceName = errors.New("invalid source name")

// namePattern matches {source}_{YYYYMMDD}_{HHMMSS}[_{seq}].tar.gz.
// The source capture is greedy so a source containing underscores or
// digits still parses back to itself; the timestamp anchors at the end.
var namePattern = regexp.MustCompile(`^(.+)_(\d{8}_\d{6})(?:_(\d+))?\.tar\.gz$`)

// Record describes one stored archive. SourceName and CreatedAt are
// recovered from the filename; Seq disambiguates archives of the same
// source created within the same second.
type Record struct {
	SourceName string
	CreatedAt  time.Time
	Path       string
	SizeBytes  int64
	Seq        int
}

// Name returns the filename this record maps to.
func (r Record) Name() string {
	base := fmt.Sprintf("%s_%s", r.SourceName, r.CreatedAt.Format(timestampLayout))
	if r.Seq > 0 {
		base = fmt.Sprintf("%s_%d", base, r.Seq)
	}
	return base + Suffix
}

// SanitizeSourceName replaces path separators with underscores so a
// directory path can serve as a logical source name.
func SanitizeSourceName(name string) (string, error) {
	sanitized := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, name)
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSourceName, name)
	}
	return sanitized, nil
}

// BuildName produces the canonical archive filename for a source and
// creation time, without a collision suffix.
func BuildName(sourceName string, createdAt time.Time) (string, error) {
	sanitized, err := SanitizeSourceName(sourceName)
	if err != nil {
		return "", err
	}
	return Record{SourceName: sanitized, CreatedAt: createdAt}.Name(), nil
}

// ParseName reverses BuildName. The second return value is false for
// filenames that don't follow the scheme; such files belong to someone
// else and must never be touched.
func ParseName(filename string) (Record, bool) {
	matches := namePattern.FindStringSubmatch(filename)
	if matches == nil {
		return Record{}, false
	}

	createdAt, err := time.Parse(timestampLayout, matches[2])
	if err != nil {
		return Record{}, false
	}

	record := Record{
		SourceName: matches[1],
		CreatedAt:  createdAt,
	}
	if matches[3] != "" {
		seq, err := strconv.Atoi(matches[3])
		if err != nil {
			return Record{}, false
		}
		record.Seq = seq
	}
	return record, true
}
