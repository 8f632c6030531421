package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
	"github.com/gentoomaniac/backup-rotator/pkg/config"
	"github.com/gentoomaniac/backup-rotator/pkg/engine"
	"github.com/gentoomaniac/backup-rotator/pkg/index"
	"github.com/gentoomaniac/backup-rotator/pkg/retention"
)

type BackupCmd struct {
	Sources     []string      `arg:"" optional:"" help:"Directories to back up" type:"path"`
	Destination string        `short:"o" help:"Destination root for archives" type:"path"`
	Keep        int           `short:"k" default:"7" help:"Number of archives to keep per source"`
	DryRun      bool          `help:"Log what would happen without touching the filesystem"`
	Parallel    int           `default:"1" help:"Number of sources processed concurrently"`
	Timeout     time.Duration `help:"Per-archive creation timeout"`
	IndexPath   string        `short:"i" help:"Optional sqlite index cache" type:"path"`
	Config      string        `short:"c" help:"YAML config file, used instead of flags" type:"path"`
}

func runBackup(ctx context.Context, params *BackupCmd) int {
	eng, requests, cleanup, err := buildEngine(params)
	if err != nil {
		log.Error().Err(err).Msg("setup failed")
		return 1
	}
	defer cleanup()

	if len(requests) == 0 {
		log.Error().Msg("no sources given, pass directories or --config")
		return 1
	}

	summary, err := eng.Run(ctx, requests)
	if err != nil {
		log.Error().Err(err).Msg("run aborted")
		return 1
	}

	for _, outcome := range summary.Outcomes {
		fmt.Println(outcome.Summary())
	}
	if summary.Failed() {
		return 1
	}
	return 0
}

// buildEngine assembles the engine from either the config file or the
// command line flags. The returned cleanup closes the index, if any.
func buildEngine(params *BackupCmd) (*engine.Engine, []engine.Request, func(), error) {
	root := params.Destination
	keep := params.Keep
	parallel := params.Parallel
	timeout := params.Timeout
	indexPath := params.IndexPath
	var requests []engine.Request

	if params.Config != "" {
		cfg, err := config.Load(params.Config)
		if err != nil {
			return nil, nil, nil, err
		}
		root = cfg.Destination.Root
		keep = cfg.Destination.MaxArchives
		timeout = cfg.Destination.CreateTimeout.Std()
		if cfg.Parallel > 0 {
			parallel = cfg.Parallel
		}
		if cfg.IndexPath != "" {
			indexPath = cfg.IndexPath
		}
		for _, source := range cfg.Sources {
			requests = append(requests, engine.Request{SourceDir: source.Path, DryRun: params.DryRun})
		}
	} else {
		for _, source := range params.Sources {
			requests = append(requests, engine.Request{SourceDir: source, DryRun: params.DryRun})
		}
	}

	if root == "" {
		return nil, nil, nil, fmt.Errorf("no destination root given")
	}

	opts := []engine.Option{
		engine.WithLogger(log.Logger),
		engine.WithParallelism(parallel),
	}
	if timeout > 0 {
		opts = append(opts, engine.WithCreateTimeout(timeout))
	}

	cleanup := func() {}
	if indexPath != "" {
		idx, err := index.NewSQLLite(indexPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening index: %w", err)
		}
		if err := idx.Init(); err != nil {
			idx.Close()
			return nil, nil, nil, fmt.Errorf("initialising index: %w", err)
		}
		opts = append(opts, engine.WithIndex(idx))
		cleanup = func() { idx.Close() }
	}

	eng := engine.New(root, retention.Policy{MaxArchives: keep}, archive.NewTarGzCreator(), opts...)
	return eng, requests, cleanup, nil
}
