// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// Repository is a snapshot of a single repository as returned by the listing API.
// It is fetched once per run and never mutated afterwards.
type Repository struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	IsFork    bool      `json:"is_fork"`
	IsPrivate bool      `json:"is_private"`
	Owner     string    `json:"owner"`
	PushedAt  time.Time `json:"pushed_at"`
}

// FullName returns the "owner/name" form of the repository.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsAuditable reports whether the repository is a public fork owned by username.
func (r Repository) IsAuditable(username string) bool {
	return r.IsFork && !r.IsPrivate && strings.EqualFold(r.Owner, username)
}

// Classification is the decision assigned to one fork.
type Classification string

const (
	ClassificationKeep   Classification = "KEEP"
	ClassificationDelete Classification = "DELETE"
	ClassificationError  Classification = "ERROR"
)

// Entry is what a Partition records for one repository: its name and URL,
// the owner needed to delete it and the last push time used for the staleness summary.
type Entry struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Owner    string    `json:"owner"`
	PushedAt time.Time `json:"pushed_at"`
}

// Partition accumulates the three-way split of the audited forks.
// Every placed repository lives in exactly one of the sequences.
type Partition struct {
	Kept     []Entry `json:"kept"`
	ToDelete []Entry `json:"to_delete"`
	Errored  []Entry `json:"errored"`
	// Aborted is set when classification stopped early on a critical rate limit.
	Aborted bool `json:"aborted"`
	// Skipped counts fetched forks that were never classified.
	Skipped int `json:"skipped"`
	// FetchIncomplete is set when repository listing stopped early on a critical rate limit.
	FetchIncomplete bool `json:"fetch_incomplete"`
}

// NewPartition returns an empty partition with non-nil sequences.
func NewPartition() *Partition {
	return &Partition{
		Kept:     []Entry{},
		ToDelete: []Entry{},
		Errored:  []Entry{},
	}
}

// Place appends the repository to the sequence matching the classification.
func (p *Partition) Place(repo Repository, c Classification) {
	entry := Entry{Name: repo.Name, URL: repo.URL, Owner: repo.Owner, PushedAt: repo.PushedAt}
	switch c {
	case ClassificationKeep:
		p.Kept = append(p.Kept, entry)
	case ClassificationDelete:
		p.ToDelete = append(p.ToDelete, entry)
	default:
		p.Errored = append(p.Errored, entry)
	}
}

// Len returns the number of classified repositories.
func (p *Partition) Len() int {
	return len(p.Kept) + len(p.ToDelete) + len(p.Errored)
}

// Options controls a single audit run.
type Options struct {
	Username    string
	DryRun      bool
	KeepWithPRs bool
	// MaxRepos caps the number of forks fetched and classified. Zero means unlimited.
	MaxRepos int
}
