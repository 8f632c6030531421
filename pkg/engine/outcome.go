package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

// Error kinds. Each is fatal for its source only; a failed source never
// aborts the rest of the batch.
var (
	ErrValidation   = errors.New("validation failed")
	ErrCreation     = errors.New("archive creation failed")
	ErrVerification = errors.New("archive verification failed")
)

// Status describes how processing of one source ended.
type Status string

const (
	StatusCreated       Status = "created"
	StatusRotated       Status = "rotated"
	StatusDryRunSkipped Status = "dry-run"
	StatusFailed        Status = "failed"
)

// Warning records a rotation deletion that failed. Rotation failures
// are never conflated with backup failures; the fresh archive already
// exists when rotation runs.
type Warning struct {
	Record archive.Record
	Err    error
}

// Outcome is the immutable result of processing one request.
type Outcome struct {
	SourceName string
	SourceDir  string
	Status     Status
	Created    *archive.Record
	Deleted    []archive.Record
	Warnings   []Warning
	Err        error
}

// Summary renders a one-line human-readable description of the outcome,
// independent of log verbosity.
func (o Outcome) Summary() string {
	switch o.Status {
	case StatusDryRunSkipped:
		if o.SourceDir == "" {
			return fmt.Sprintf("%s: dry-run, would delete %d archive(s)", o.SourceName, len(o.Deleted))
		}
		return fmt.Sprintf("%s: dry-run, would create archive for %s", o.SourceName, o.SourceDir)
	case StatusFailed:
		return fmt.Sprintf("%s: failed: %v", o.SourceName, o.Err)
	case StatusRotated:
		return fmt.Sprintf("%s: rotated out %d archive(s), %d warning(s)", o.SourceName, len(o.Deleted), len(o.Warnings))
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s: created %s (%d bytes)", o.SourceName, o.Created.Path, o.Created.SizeBytes)
		if len(o.Deleted) > 0 {
			fmt.Fprintf(&sb, ", rotated out %d archive(s)", len(o.Deleted))
		}
		if len(o.Warnings) > 0 {
			fmt.Fprintf(&sb, ", %d deletion warning(s)", len(o.Warnings))
		}
		return sb.String()
	}
}

// RunSummary aggregates the outcomes of one engine run in input order.
type RunSummary struct {
	Outcomes []Outcome
}

// Failed reports whether at least one source failed.
func (s RunSummary) Failed() bool {
	for _, outcome := range s.Outcomes {
		if outcome.Status == StatusFailed {
			return true
		}
	}
	return false
}
