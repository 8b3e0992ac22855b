package domain

import "time"

// Quota is a snapshot of the remaining API budget.
type Quota struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// Thresholds configures when the rate-limit guard warns and when it aborts.
type Thresholds struct {
	Low      int
	Critical int
}

// DefaultThresholds are used when no override is configured.
var DefaultThresholds = Thresholds{Low: 100, Critical: 10}

// QuotaDecision is the outcome of evaluating a quota snapshot.
type QuotaDecision int

const (
	QuotaProceed QuotaDecision = iota
	QuotaWarn
	QuotaAbort
)

func (d QuotaDecision) String() string {
	switch d {
	case QuotaWarn:
		return "warn"
	case QuotaAbort:
		return "abort"
	default:
		return "proceed"
	}
}

// EvaluateQuota decides whether work may continue given the remaining budget.
func EvaluateQuota(q Quota, t Thresholds) QuotaDecision {
	switch {
	case q.Remaining < t.Critical:
		return QuotaAbort
	case q.Remaining < t.Low:
		return QuotaWarn
	default:
		return QuotaProceed
	}
}
