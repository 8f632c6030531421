package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/gentoomaniac/logging"
	"github.com/rs/zerolog/log"
)

var (
	version = "unset"
	commit  = "unset"
	binName = "backup-rotator"
	builtBy = "manual"
	date    = "unset"
)

var cli struct {
	logging.LoggingConfig

	Backup   BackupCmd   `cmd:"" help:"Create archives and rotate out old ones"`
	Prune    PruneCmd    `cmd:"" help:"Enforce retention for a source without creating a new archive"`
	List     ListCmd     `cmd:"" help:"List archives in the destination root"`
	Restore  RestoreCmd  `cmd:"" help:"Extract an archive into a directory"`
	Rebuild  RebuildCmd  `cmd:"" help:"Rebuild the archive index cache from the destination listing"`
	Schedule ScheduleCmd `cmd:"" help:"Run backups on a cron schedule until interrupted"`

	Version kong.VersionFlag `short:"v" help:"Display version."`
}

func main() {
	ctx := kong.Parse(&cli, kong.UsageOnError(), kong.Vars{
		"version": version,
		"commit":  commit,
		"binName": binName,
		"builtBy": builtBy,
		"date":    date,
	})
	logging.Setup(&cli.LoggingConfig)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
	}()

	var exitCode int
	switch strings.Fields(ctx.Command())[0] {
	case "backup":
		exitCode = runBackup(runCtx, &cli.Backup)
	case "prune":
		exitCode = runPrune(runCtx, &cli.Prune)
	case "list":
		exitCode = runList(&cli.List)
	case "restore":
		exitCode = runRestore(runCtx, &cli.Restore)
	case "rebuild":
		exitCode = runRebuild(&cli.Rebuild)
	case "schedule":
		exitCode = runSchedule(runCtx, &cli.Schedule)
	default:
		log.Error().Str("command", ctx.Command()).Msg("unknown command")
		exitCode = 1
	}
	ctx.Exit(exitCode)
}
