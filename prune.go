package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
	"github.com/gentoomaniac/backup-rotator/pkg/engine"
	"github.com/gentoomaniac/backup-rotator/pkg/retention"
)

type PruneCmd struct {
	Source      string `arg:"" help:"Source name whose archives to rotate"`
	Destination string `short:"o" help:"Destination root for archives" type:"path" required:""`
	Keep        int    `short:"k" default:"7" help:"Number of archives to keep"`
	DryRun      bool   `help:"Only report what would be deleted"`
}

func runPrune(ctx context.Context, params *PruneCmd) int {
	eng := engine.New(params.Destination, retention.Policy{MaxArchives: params.Keep}, archive.NewTarGzCreator(),
		engine.WithLogger(log.Logger))

	outcome, err := eng.Rotate(ctx, params.Source, params.DryRun)
	if err != nil {
		log.Error().Err(err).Msg("prune aborted")
		return 1
	}

	fmt.Println(outcome.Summary())
	for _, record := range outcome.Deleted {
		fmt.Println(record.Path)
	}
	if outcome.Status == engine.StatusFailed {
		return 1
	}
	return 0
}
