package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// List reads the destination root and returns records for every file
// matching the naming scheme, newest first. Files that don't parse are
// skipped; a destination root may hold unrelated files.
func List(root string) ([]Record, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading destination root: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		record, ok := ParseName(entry.Name())
		if !ok {
			continue
		}
		record.Path = filepath.Join(root, entry.Name())
		if info, err := entry.Info(); err == nil {
			record.SizeBytes = info.Size()
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Path < records[j].Path
	})
	return records, nil
}

// ListSource is List filtered to one source name.
func ListSource(root string, sourceName string) ([]Record, error) {
	all, err := List(root)
	if err != nil {
		return nil, err
	}
	records := all[:0:0]
	for _, record := range all {
		if record.SourceName == sourceName {
			records = append(records, record)
		}
	}
	return records, nil
}
