package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

type ListCmd struct {
	Destination string `short:"o" help:"Destination root for archives" type:"path" required:""`
	Source      string `arg:"" optional:"" help:"Only list archives of this source"`
}

func runList(params *ListCmd) int {
	var records []archive.Record
	var err error
	if params.Source != "" {
		records, err = archive.ListSource(params.Destination, params.Source)
	} else {
		records, err = archive.List(params.Destination)
	}
	if err != nil {
		log.Error().Err(err).Msg("listing failed")
		return 1
	}

	for _, record := range records {
		fmt.Printf("%s\t%s\t%d\n", record.SourceName, record.Path, record.SizeBytes)
	}
	return 0
}
