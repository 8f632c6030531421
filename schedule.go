package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/config"
	"github.com/gentoomaniac/backup-rotator/pkg/scheduler"
)

type ScheduleCmd struct {
	Config string `arg:"" help:"YAML config file with a schedule entry" type:"path"`
	DryRun bool   `help:"Log what each run would do without touching the filesystem"`
}

func runSchedule(ctx context.Context, params *ScheduleCmd) int {
	backupParams := &BackupCmd{Config: params.Config, DryRun: params.DryRun, Keep: 1, Parallel: 1}
	eng, requests, cleanup, err := buildEngine(backupParams)
	if err != nil {
		log.Error().Err(err).Msg("setup failed")
		return 1
	}
	defer cleanup()

	cfg, err := config.Load(params.Config)
	if err != nil {
		log.Error().Err(err).Msg("setup failed")
		return 1
	}
	if cfg.Schedule == "" {
		log.Error().Msg("config has no schedule entry")
		return 1
	}

	sched, err := scheduler.New(eng, requests, cfg.Schedule)
	if err != nil {
		log.Error().Err(err).Msg("invalid schedule")
		return 1
	}

	if err := sched.Run(ctx); err != nil {
		log.Error().Err(err).Msg("scheduler failed")
		return 1
	}
	return 0
}
