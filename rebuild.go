package main

import (
	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
	"github.com/gentoomaniac/backup-rotator/pkg/index"
)

type RebuildCmd struct {
	Destination string `short:"o" help:"Destination root for archives" type:"path" required:""`
	IndexPath   string `short:"i" help:"Sqlite index cache to rebuild" type:"path" required:""`
}

func runRebuild(params *RebuildCmd) int {
	records, err := archive.List(params.Destination)
	if err != nil {
		log.Error().Err(err).Msg("listing failed")
		return 1
	}

	idx, err := index.NewSQLLite(params.IndexPath)
	if err != nil {
		log.Error().Err(err).Msg("opening index failed")
		return 1
	}
	defer idx.Close()

	if err := idx.Init(); err != nil {
		log.Error().Err(err).Msg("initialising index failed")
		return 1
	}
	if err := idx.Rebuild(records); err != nil {
		log.Error().Err(err).Msg("rebuilding index failed")
		return 1
	}

	log.Info().Int("archives", len(records)).Msg("index rebuilt")
	return 0
}
