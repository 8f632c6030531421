// Package engine drives the backup workflow: per source, validate the
// directories, create a timestamped archive, verify it, then rotate
// out archives beyond the retention window. It is the only package
// with side effects; naming and retention decisions are delegated.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
	"github.com/gentoomaniac/backup-rotator/pkg/retention"
)

// Clock provides the creation timestamps embedded in archive names.
// Injectable so tests control time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Creator produces one archive file. The contract is atomic: on
// success a complete archive exists at destinationPath, on any failure
// nothing does.
type Creator interface {
	Create(ctx context.Context, sourceDir string, destinationPath string) (int64, error)
}

// Index is an optional advisory cache of archive records. Index errors
// never fail a backup; the directory listing stays authoritative.
type Index interface {
	Add(record archive.Record) error
	Remove(path string) error
}

// Request is one unit of work.
type Request struct {
	SourceDir string
	DryRun    bool
}

// Engine coordinates one run over N sources.
type Engine struct {
	root    string
	policy  retention.Policy
	creator Creator

	clock         Clock
	index         Index
	log           zerolog.Logger
	parallel      int
	createTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Engine)

func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

func WithIndex(index Index) Option {
	return func(e *Engine) { e.index = index }
}

// WithParallelism allows up to n sources to be processed concurrently.
// Rotation stays serialized per source name regardless.
func WithParallelism(n int) Option {
	return func(e *Engine) { e.parallel = n }
}

// WithCreateTimeout bounds each archive creation; a timed-out creation
// is a CreationError and leaves no partial file.
func WithCreateTimeout(d time.Duration) Option {
	return func(e *Engine) { e.createTimeout = d }
}

func New(root string, policy retention.Policy, creator Creator, opts ...Option) *Engine {
	e := &Engine{
		root:     root,
		policy:   policy,
		creator:  creator,
		clock:    SystemClock{},
		log:      log.Logger,
		parallel: 1,
		locks:    map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.parallel < 1 {
		e.parallel = 1
	}
	return e
}

// Run processes all requests and returns one outcome per request, in
// input order. A failed source never aborts the others; Run itself
// only errors on cancellation.
func (e *Engine) Run(ctx context.Context, requests []Request) (RunSummary, error) {
	outcomes := make([]Outcome, len(requests))

	if e.parallel > 1 {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.parallel)
		for i, request := range requests {
			i, request := i, request
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				outcomes[i] = e.processSource(groupCtx, request)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return RunSummary{Outcomes: outcomes}, err
		}
		return RunSummary{Outcomes: outcomes}, nil
	}

	for i, request := range requests {
		if err := ctx.Err(); err != nil {
			return RunSummary{Outcomes: outcomes[:i]}, err
		}
		outcomes[i] = e.processSource(ctx, request)
	}
	return RunSummary{Outcomes: outcomes}, nil
}

func (e *Engine) processSource(ctx context.Context, request Request) Outcome {
	outcome := Outcome{SourceDir: request.SourceDir}

	sourceName, err := archive.SanitizeSourceName(filepath.Base(filepath.Clean(request.SourceDir)))
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.SourceName = sourceName
	logger := e.log.With().Str("source", sourceName).Logger()

	if err := e.validate(request); err != nil {
		logger.Error().Err(err).Msg("validation failed")
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	if request.DryRun {
		name := archive.Record{SourceName: sourceName, CreatedAt: e.clock.Now()}.Name()
		logger.Info().Str("archive", name).Msg("dry-run, would create archive")
		outcome.Status = StatusDryRunSkipped
		return outcome
	}

	// Name selection, creation and rotation for one source must not
	// interleave with another run's rotation for the same source.
	lock := e.sourceLock(sourceName)
	lock.Lock()
	defer lock.Unlock()

	record, err := e.create(ctx, request.SourceDir, sourceName, logger)
	if err != nil {
		logger.Error().Err(err).Msg("backup failed")
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Created = &record
	logger.Info().Str("archive", record.Path).Int64("size", record.SizeBytes).Msg("archive created")

	outcome.Deleted, outcome.Warnings = e.rotateLocked(sourceName, logger)
	outcome.Status = StatusCreated
	return outcome
}

func (e *Engine) validate(request Request) error {
	sourceInfo, err := os.Stat(request.SourceDir)
	if err != nil {
		return fmt.Errorf("%w: source %s: %v", ErrValidation, request.SourceDir, err)
	}
	if !sourceInfo.IsDir() {
		return fmt.Errorf("%w: source %s is not a directory", ErrValidation, request.SourceDir)
	}
	dir, err := os.Open(request.SourceDir)
	if err != nil {
		return fmt.Errorf("%w: source %s not readable: %v", ErrValidation, request.SourceDir, err)
	}
	dir.Close()

	rootInfo, err := os.Stat(e.root)
	if err != nil {
		return fmt.Errorf("%w: destination %s: %v", ErrValidation, e.root, err)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf("%w: destination %s is not a directory", ErrValidation, e.root)
	}

	// Probe writability up front so an unwritable destination fails in
	// validation instead of midway through archiving. Dry-run performs
	// no mutation at all, so the probe is skipped there.
	if !request.DryRun {
		probe, err := os.CreateTemp(e.root, ".write-probe-*")
		if err != nil {
			return fmt.Errorf("%w: destination %s not writable: %v", ErrValidation, e.root, err)
		}
		probe.Close()
		os.Remove(probe.Name())
	}
	return nil
}

// create picks a collision-free name, invokes the creator and verifies
// the result. Two backups of the same source within one second get
// distinct names via a monotonic suffix.
func (e *Engine) create(ctx context.Context, sourceDir string, sourceName string, logger zerolog.Logger) (archive.Record, error) {
	record := archive.Record{
		SourceName: sourceName,
		CreatedAt:  e.clock.Now(),
	}
	for {
		candidate := filepath.Join(e.root, record.Name())
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			record.Path = candidate
			break
		}
		record.Seq++
	}

	createCtx := ctx
	if e.createTimeout > 0 {
		var cancel context.CancelFunc
		createCtx, cancel = context.WithTimeout(ctx, e.createTimeout)
		defer cancel()
	}

	size, err := e.creator.Create(createCtx, sourceDir, record.Path)
	if err != nil {
		return archive.Record{}, fmt.Errorf("%w: %v", ErrCreation, err)
	}
	record.SizeBytes = size

	info, err := os.Stat(record.Path)
	if err != nil {
		return archive.Record{}, fmt.Errorf("%w: archive missing after creation: %v", ErrVerification, err)
	}
	if info.Size() == 0 {
		os.Remove(record.Path)
		return archive.Record{}, fmt.Errorf("%w: archive %s is empty", ErrVerification, record.Path)
	}
	record.SizeBytes = info.Size()

	if e.index != nil {
		if err := e.index.Add(record); err != nil {
			logger.Warn().Err(err).Msg("index update failed")
		}
	}
	return record, nil
}

// rotateLocked lists the destination fresh, applies the retention
// policy and deletes the excess, oldest first. Each deletion is
// independent: a failure becomes a warning, never a source failure.
// Callers hold the source lock.
func (e *Engine) rotateLocked(sourceName string, logger zerolog.Logger) ([]archive.Record, []Warning) {
	records, err := archive.ListSource(e.root, sourceName)
	if err != nil {
		logger.Warn().Err(err).Msg("rotation listing failed")
		return nil, []Warning{{Err: err}}
	}

	var deleted []archive.Record
	var warnings []Warning
	for _, record := range e.policy.SelectForDeletion(records) {
		if err := os.Remove(record.Path); err != nil {
			logger.Warn().Err(err).Str("archive", record.Path).Msg("could not delete archive")
			warnings = append(warnings, Warning{Record: record, Err: err})
			continue
		}
		logger.Info().Str("archive", record.Path).Time("created", record.CreatedAt).Msg("rotated out archive")
		deleted = append(deleted, record)
		if e.index != nil {
			if err := e.index.Remove(record.Path); err != nil {
				logger.Warn().Err(err).Msg("index update failed")
			}
		}
	}
	return deleted, warnings
}

// Rotate enforces retention for one source without creating a new
// archive. With dryRun it only reports what would be deleted.
func (e *Engine) Rotate(ctx context.Context, sourceName string, dryRun bool) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{SourceName: sourceName}
	if dryRun {
		records, err := archive.ListSource(e.root, sourceName)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			return outcome, nil
		}
		outcome.Status = StatusDryRunSkipped
		outcome.Deleted = e.policy.SelectForDeletion(records)
		return outcome, nil
	}

	lock := e.sourceLock(sourceName)
	lock.Lock()
	defer lock.Unlock()

	outcome.Deleted, outcome.Warnings = e.rotateLocked(sourceName, e.log.With().Str("source", sourceName).Logger())
	outcome.Status = StatusRotated
	return outcome, nil
}

func (e *Engine) sourceLock(sourceName string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sourceName]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sourceName] = lock
	}
	return lock
}
