package domain

import (
	"context"
	"time"
)

// SweepError reports one due the sweep could not update.
type SweepError struct {
	ResidentID string `json:"resident_id"`
	Period     string `json:"period"`
	Reason     string `json:"reason"`
}

type SweepResult struct {
	Scanned int          `json:"scanned"`
	Updated int          `json:"updated"`
	Errors  []SweepError `json:"errors,omitempty"`
}

// PeriodSummary aggregates delinquent dues of one calendar period.
type PeriodSummary struct {
	Period         string  `json:"period"`
	Count          int     `json:"count"`
	TotalSurcharge float64 `json:"total_surcharge"`
	TotalOwed      float64 `json:"total_owed"`
}

type Summary struct {
	Count              int             `json:"count"`
	TotalSurcharge     float64         `json:"total_surcharge"`
	TotalOwed          float64         `json:"total_owed"`
	AvgDelinquencyDays float64         `json:"avg_delinquency_days"`
	ByPeriod           []PeriodSummary `json:"by_period"`
}

type Service interface {
	// Sweep applies the delinquency surcharge to every unpaid due whose
	// grace date has passed at now. The surcharge is recomputed from the
	// base amount, never added on top of a previous sweep's result.
	Sweep(ctx context.Context, now time.Time) (SweepResult, error)
	// Summary aggregates the currently delinquent dues without mutating them.
	Summary(ctx context.Context) (Summary, error)
}
