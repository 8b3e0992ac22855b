// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/naka-gawa/fork-auditor/internal/domain"
	"github.com/naka-gawa/fork-auditor/internal/gateway"
)

// pageSize is the fixed page size used when listing repositories.
const pageSize = 100

// Auditor is the use case for auditing and cleaning up a user's forks.
// Every call it makes is sequential; results accumulate in a single Partition.
type Auditor struct {
	gateway    gateway.Gateway
	thresholds domain.Thresholds
	logger     *zap.Logger
}

// NewAuditor creates a new Auditor instance.
func NewAuditor(gw gateway.Gateway, thresholds domain.Thresholds, logger *zap.Logger) *Auditor {
	return &Auditor{
		gateway:    gw,
		thresholds: thresholds,
		logger:     logger,
	}
}

// DeletionSummary reports the outcome of the best-effort deletion stage.
type DeletionSummary struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Failures  []string `json:"failures,omitempty"`
}

// Fetch pages through the user's repositories and keeps the auditable forks.
// Paging stops on a short page or once opts.MaxRepos forks are collected.
// The rate-limit guard runs before every page; when it stops paging, the
// forks collected so far are returned with complete set to false.
func (a *Auditor) Fetch(ctx context.Context, opts domain.Options) (forks []domain.Repository, complete bool, err error) {
	for page := 1; ; page++ {
		if a.guard(ctx) {
			a.logger.Warn("stopped listing repositories", zap.Int("page", page), zap.Int("forks", len(forks)))
			return forks, false, nil
		}
		repos, err := a.gateway.ListRepositories(ctx, opts.Username, page, pageSize)
		if err != nil {
			return nil, false, err
		}
		for _, repo := range repos {
			if !repo.IsAuditable(opts.Username) {
				continue
			}
			forks = append(forks, repo)
			if opts.MaxRepos > 0 && len(forks) >= opts.MaxRepos {
				a.logger.Debug("reached max repos", zap.Int("max_repos", opts.MaxRepos))
				return forks, true, nil
			}
		}
		if len(repos) < pageSize {
			break
		}
	}
	a.logger.Debug("fetched forks", zap.Int("count", len(forks)))
	return forks, true, nil
}

// guard reads the quota and reports whether the caller must stop.
// A failed snapshot is logged and does not stop the run.
func (a *Auditor) guard(ctx context.Context) bool {
	quota, err := a.gateway.RateLimit(ctx)
	if err != nil {
		a.logger.Warn("could not read rate limit", zap.Error(err))
		return false
	}
	switch domain.EvaluateQuota(quota, a.thresholds) {
	case domain.QuotaAbort:
		a.logger.Warn("rate limit critically low, stopping early",
			zap.Int("remaining", quota.Remaining), zap.Time("reset", quota.Reset))
		return true
	case domain.QuotaWarn:
		a.logger.Warn("rate limit running low",
			zap.Int("remaining", quota.Remaining), zap.Time("reset", quota.Reset))
	}
	return false
}

// Classify assigns every repository to exactly one bucket of the returned partition.
// On a critical rate limit the remaining repositories are counted as skipped.
func (a *Auditor) Classify(ctx context.Context, opts domain.Options, repos []domain.Repository) *domain.Partition {
	partition := domain.NewPartition()
	for i, repo := range repos {
		if a.guard(ctx) {
			partition.Aborted = true
			partition.Skipped = len(repos) - i
			break
		}
		classification := a.classifyOne(ctx, opts, repo)
		a.logger.Info("classified fork",
			zap.String("repo", repo.FullName()), zap.String("classification", string(classification)))
		partition.Place(repo, classification)
	}
	return partition
}

func (a *Auditor) classifyOne(ctx context.Context, opts domain.Options, repo domain.Repository) domain.Classification {
	hasCommits, commitErr := a.gateway.HasCommitsBy(ctx, repo.Owner, repo.Name, opts.Username)
	if commitErr == nil && hasCommits {
		return domain.ClassificationKeep
	}
	if commitErr != nil {
		a.logger.Error("commit lookup failed", zap.String("repo", repo.FullName()), zap.Error(commitErr))
	}

	var prErr error
	if opts.KeepWithPRs {
		parent, err := a.gateway.ResolveParent(ctx, repo.Owner, repo.Name)
		if err != nil {
			a.logger.Warn("could not resolve parent, skipping pull request check",
				zap.String("repo", repo.FullName()), zap.Error(err))
		} else {
			head := repo.Owner + ":" + repo.Name
			var hasPRs bool
			hasPRs, prErr = a.gateway.HasOpenPullRequests(ctx, parent, head)
			if prErr == nil && hasPRs {
				return domain.ClassificationKeep
			}
			if prErr != nil {
				a.logger.Error("pull request lookup failed", zap.String("repo", repo.FullName()), zap.Error(prErr))
			}
		}
	}

	if commitErr != nil || prErr != nil {
		return domain.ClassificationError
	}
	return domain.ClassificationDelete
}

// Delete removes every entry in order. A failed deletion is counted and the
// loop moves on to the next entry.
func (a *Auditor) Delete(ctx context.Context, entries []domain.Entry) DeletionSummary {
	var summary DeletionSummary
	for i, entry := range entries {
		if a.guard(ctx) {
			summary.Skipped = len(entries) - i
			break
		}
		if err := a.gateway.DeleteRepository(ctx, entry.Owner, entry.Name); err != nil {
			a.logger.Error("deletion failed", zap.String("repo", entry.Name), zap.Error(err))
			summary.Failed++
			summary.Failures = append(summary.Failures, entry.Name)
			continue
		}
		a.logger.Info("deleted fork", zap.String("repo", entry.Name))
		summary.Succeeded++
	}
	return summary
}

// Run executes the full audit: fetch, classify and, unless running dry,
// delete the DELETE set after confirmation. The final report is written to out.
func (a *Auditor) Run(ctx context.Context, opts domain.Options, prompter Prompter, out io.Writer, format Format) (*Report, error) {
	if opts.Username == "" {
		return nil, errors.New("username is required")
	}
	a.logger.Info("auditing forks", zap.String("user", opts.Username),
		zap.Bool("dry_run", opts.DryRun), zap.Bool("keep_with_prs", opts.KeepWithPRs), zap.Int("max_repos", opts.MaxRepos))

	repos, complete, err := a.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}
	partition := domain.NewPartition()
	if len(repos) > 0 {
		partition = a.Classify(ctx, opts, repos)
	}
	partition.FetchIncomplete = !complete
	report := NewReport(opts, partition)

	if !opts.DryRun && len(partition.ToDelete) > 0 {
		confirmed, err := prompter.Confirm(confirmationPrompt(partition.ToDelete))
		if err != nil {
			return nil, fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirmed {
			summary := a.Delete(ctx, partition.ToDelete)
			report.Deletion = &summary
		} else {
			a.logger.Info("deletion cancelled by user")
			report.Cancelled = true
		}
	}

	if err := report.Write(out, format); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return report, nil
}

func confirmationPrompt(entries []domain.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following %d repositories will be permanently deleted:\n", len(entries))
	for _, entry := range entries {
		fmt.Fprintf(&b, "  - %s (%s)\n", entry.Name, entry.URL)
	}
	b.WriteString("Delete these repositories?")
	return b.String()
}
