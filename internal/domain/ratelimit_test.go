package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateQuota(t *testing.T) {
	thresholds := Thresholds{Low: 100, Critical: 10}
	reset := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		remaining int
		expected  QuotaDecision
	}{
		{name: "plenty of budget", remaining: 5000, expected: QuotaProceed},
		{name: "exactly at low threshold", remaining: 100, expected: QuotaProceed},
		{name: "just below low threshold", remaining: 99, expected: QuotaWarn},
		{name: "exactly at critical threshold", remaining: 10, expected: QuotaWarn},
		{name: "below critical threshold", remaining: 9, expected: QuotaAbort},
		{name: "exhausted", remaining: 0, expected: QuotaAbort},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := EvaluateQuota(Quota{Limit: 5000, Remaining: tc.remaining, Reset: reset}, thresholds)
			assert.Equal(t, tc.expected, decision)
		})
	}
}

func TestQuotaDecision_String(t *testing.T) {
	assert.Equal(t, "proceed", QuotaProceed.String())
	assert.Equal(t, "warn", QuotaWarn.String())
	assert.Equal(t, "abort", QuotaAbort.String())
}
