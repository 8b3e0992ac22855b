package usecase

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/fork-auditor/internal/domain"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestReport_Staleness(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	partition := domain.NewPartition()
	partition.Place(domain.Repository{Name: "a", PushedAt: now.AddDate(0, 0, -10)}, domain.ClassificationDelete)
	partition.Place(domain.Repository{Name: "b", PushedAt: now.AddDate(0, 0, -20)}, domain.ClassificationDelete)
	partition.Place(domain.Repository{Name: "c", PushedAt: now.AddDate(0, 0, -60)}, domain.ClassificationDelete)
	partition.Place(domain.Repository{Name: "never-pushed"}, domain.ClassificationDelete)
	partition.Place(domain.Repository{Name: "kept", PushedAt: now.AddDate(-5, 0, 0)}, domain.ClassificationKeep)

	report := newReportAt(domain.Options{Username: "octocat"}, partition, now)

	require.NotNil(t, report.Staleness)
	assert.Equal(t, Staleness{MeanDays: 30, MedianDays: 20, MaxDays: 60}, *report.Staleness)
}

func TestReport_StalenessWithoutCandidates(t *testing.T) {
	partition := domain.NewPartition()
	partition.Place(domain.Repository{Name: "kept", PushedAt: time.Now()}, domain.ClassificationKeep)

	report := NewReport(domain.Options{Username: "octocat"}, partition)
	assert.Nil(t, report.Staleness)
}

func TestReport_WriteText(t *testing.T) {
	partition := domain.NewPartition()
	partition.Place(domain.Repository{Name: "A", URL: "https://github.com/octocat/A"}, domain.ClassificationKeep)
	partition.Place(domain.Repository{Name: "C", URL: "https://github.com/octocat/C"}, domain.ClassificationDelete)
	partition.Place(domain.Repository{Name: "E", URL: "https://github.com/octocat/E"}, domain.ClassificationError)
	partition.Aborted = true
	partition.Skipped = 4

	report := NewReport(domain.Options{Username: "octocat"}, partition)
	report.Deletion = &DeletionSummary{Succeeded: 0, Failed: 1, Failures: []string{"C"}}
	var out bytes.Buffer
	require.NoError(t, report.Write(&out, FormatText))

	text := out.String()
	assert.Contains(t, text, "KEEP (1):\n  - A  https://github.com/octocat/A\n")
	assert.Contains(t, text, "DELETE (1):\n  - C  https://github.com/octocat/C\n")
	assert.Contains(t, text, "ERROR (1):\n  - E  https://github.com/octocat/E\n")
	assert.Contains(t, text, "Stopped early on rate limit: 4 forks were not classified.")
	assert.Contains(t, text, "Deleted 0 repositories, 1 failed.\n  failed: C\n")
}

func TestReport_WriteJSON(t *testing.T) {
	partition := domain.NewPartition()
	partition.Place(domain.Repository{Name: "C", URL: "https://github.com/octocat/C"}, domain.ClassificationDelete)

	report := NewReport(domain.Options{Username: "octocat", DryRun: true}, partition)
	var out bytes.Buffer
	require.NoError(t, report.Write(&out, FormatJSON))

	var decoded struct {
		Username  string `json:"username"`
		DryRun    bool   `json:"dry_run"`
		Partition struct {
			Kept     []domain.Entry `json:"kept"`
			ToDelete []domain.Entry `json:"to_delete"`
		} `json:"partition"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "octocat", decoded.Username)
	assert.True(t, decoded.DryRun)
	assert.Empty(t, decoded.Partition.Kept)
	require.Len(t, decoded.Partition.ToDelete, 1)
	assert.Equal(t, "C", decoded.Partition.ToDelete[0].Name)
}
