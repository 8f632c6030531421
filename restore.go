package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
	clitools "github.com/gentoomaniac/backup-rotator/pkg/cli"
)

type RestoreCmd struct {
	Source      string `arg:"" help:"Source name to restore"`
	To          string `arg:"" help:"Directory to extract into" type:"path"`
	Destination string `short:"o" help:"Destination root holding the archives" type:"path" required:""`
}

func runRestore(ctx context.Context, params *RestoreCmd) int {
	records, err := archive.ListSource(params.Destination, params.Source)
	if err != nil {
		log.Error().Err(err).Msg("listing archives failed")
		return 1
	}
	if len(records) == 0 {
		log.Error().Str("source", params.Source).Msg("no archives found")
		return 1
	}

	record, err := clitools.PromptArchives(records)
	if err != nil {
		log.Error().Err(err).Msg("failed selecting archive")
		return 1
	}
	log.Debug().Str("archive", record.Path).Time("created", record.CreatedAt).Msg("archive selected")

	if err := archive.Extract(ctx, record.Path, params.To); err != nil {
		log.Error().Err(err).Msg("extraction failed")
		return 1
	}
	log.Info().Str("archive", record.Path).Str("to", params.To).Msg("archive restored")
	return 0
}
