package usecase

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/fork-auditor/internal/domain"
)

// Format selects how a Report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied output format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text or json)", s)
	}
}

// Staleness summarizes how long ago the deletion candidates were last pushed to.
type Staleness struct {
	MeanDays   float64 `json:"mean_days"`
	MedianDays float64 `json:"median_days"`
	MaxDays    float64 `json:"max_days"`
}

// Report is the outcome of one audit run.
type Report struct {
	Username    string            `json:"username"`
	DryRun      bool              `json:"dry_run"`
	KeepWithPRs bool              `json:"keep_with_prs"`
	Partition   *domain.Partition `json:"partition"`
	Staleness   *Staleness        `json:"staleness,omitempty"`
	Cancelled   bool              `json:"cancelled"`
	Deletion    *DeletionSummary  `json:"deletion,omitempty"`
}

// NewReport builds a report for the partition, measuring staleness against the current time.
func NewReport(opts domain.Options, partition *domain.Partition) *Report {
	return newReportAt(opts, partition, time.Now())
}

func newReportAt(opts domain.Options, partition *domain.Partition, now time.Time) *Report {
	return &Report{
		Username:    opts.Username,
		DryRun:      opts.DryRun,
		KeepWithPRs: opts.KeepWithPRs,
		Partition:   partition,
		Staleness:   staleness(partition.ToDelete, now),
	}
}

// staleness returns nil when no candidate has a known push time.
func staleness(entries []domain.Entry, now time.Time) *Staleness {
	var days stats.Float64Data
	for _, entry := range entries {
		if entry.PushedAt.IsZero() {
			continue
		}
		days = append(days, now.Sub(entry.PushedAt).Hours()/24)
	}
	if len(days) == 0 {
		return nil
	}
	mean, err := stats.Mean(days)
	if err != nil {
		return nil
	}
	median, err := stats.Median(days)
	if err != nil {
		return nil
	}
	maxDays, err := stats.Max(days)
	if err != nil {
		return nil
	}
	return &Staleness{
		MeanDays:   roundDays(mean),
		MedianDays: roundDays(median),
		MaxDays:    roundDays(maxDays),
	}
}

func roundDays(d float64) float64 {
	rounded, err := stats.Round(d, 1)
	if err != nil {
		return d
	}
	return rounded
}

// Write renders the report in the requested format.
func (r *Report) Write(w io.Writer, format Format) error {
	if format == FormatJSON {
		jsonData, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}
	return r.writeText(w)
}

func (r *Report) writeText(w io.Writer) error {
	p := r.Partition
	if p.Len() == 0 && p.Skipped == 0 && !p.FetchIncomplete {
		_, err := fmt.Fprintf(w, "No public forks owned by %s found.\n", r.Username)
		return err
	}

	ew := &errWriter{w: w}
	ew.printf("Fork audit for %s\n\n", r.Username)
	writeSection(ew, domain.ClassificationKeep, p.Kept)
	writeSection(ew, domain.ClassificationDelete, p.ToDelete)
	writeSection(ew, domain.ClassificationError, p.Errored)

	if p.FetchIncomplete {
		ew.printf("Stopped listing repositories early on rate limit: more forks may exist.\n")
	}
	if p.Aborted {
		ew.printf("Stopped early on rate limit: %d forks were not classified.\n", p.Skipped)
	}
	if r.Staleness != nil {
		ew.printf("Deletion candidates last pushed: mean %.1f days, median %.1f days, max %.1f days ago.\n",
			r.Staleness.MeanDays, r.Staleness.MedianDays, r.Staleness.MaxDays)
	}

	switch {
	case len(p.ToDelete) == 0:
		ew.printf("Nothing to delete.\n")
	case r.DryRun:
		ew.printf("Dry run: %d repositories would be deleted.\n", len(p.ToDelete))
	case r.Cancelled:
		ew.printf("Deletion cancelled. No repositories were deleted.\n")
	case r.Deletion != nil:
		d := r.Deletion
		ew.printf("Deleted %d repositories, %d failed.\n", d.Succeeded, d.Failed)
		for _, name := range d.Failures {
			ew.printf("  failed: %s\n", name)
		}
		if d.Skipped > 0 {
			ew.printf("Stopped early on rate limit: %d repositories were not deleted.\n", d.Skipped)
		}
	}
	return ew.err
}

func writeSection(ew *errWriter, c domain.Classification, entries []domain.Entry) {
	ew.printf("%s (%d):\n", c, len(entries))
	for _, entry := range entries {
		ew.printf("  - %s  %s\n", entry.Name, entry.URL)
	}
	ew.printf("\n")
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
