package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

// PromptArchives displays all archives of a source for a user to select one
func PromptArchives(records []archive.Record) (archive.Record, error) {
	if len(records) == 0 {
		return archive.Record{}, fmt.Errorf("no archives to select from")
	}
	if len(records) == 1 {
		return records[0], nil
	}

	// Sort list, newest first
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	archiveSearchFunc := func(input string, idx int) bool {
		record := records[idx]

		return strings.Contains(strings.ToLower(record.Name()), strings.ToLower(input))
	}

	size := len(records)
	if size >= 10 {
		size = 10
	}

	selector := promptui.Select{
		Label:             "Select the archive to restore",
		Items:             records,
		Searcher:          archiveSearchFunc,
		StartInSearchMode: true,
		HideSelected:      true,
		Size:              size,
		Templates: &promptui.SelectTemplates{
			Active:   fmt.Sprintf("%s {{ .Path | cyan }}", promptui.IconSelect),
			Inactive: " {{ .Path }}",
			Details: `
{{ "Details:" | bold }}
	{{ "Source:" | bold }}	{{ .SourceName | cyan }}
	{{ "Created:" | bold }}	{{ .CreatedAt | cyan }}
	{{ "Size:" | bold }}	{{ .SizeBytes | cyan }}
`,
			Selected: "{{ .Path }}",
		},
	}

	selector.Stdout = os.Stderr

	index, _, err := selector.Run()
	if err != nil {
		os.Stdout.Sync()
		return archive.Record{}, err
	}

	return records[index], nil
}
