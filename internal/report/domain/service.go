package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// MonthRow aggregates one calendar month: dues income against payroll
// expense.
type MonthRow struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

func (r MonthRow) Period() string {
	return fmt.Sprintf("%02d/%d", r.Month, r.Year)
}

type FinancialSummary struct {
	From         time.Time  `json:"from"`
	To           time.Time  `json:"to"`
	Rows         []MonthRow `json:"rows"`
	TotalIncome  float64    `json:"total_income"`
	TotalExpense float64    `json:"total_expense"`
	TotalNet     float64    `json:"total_net"`
	PaidDues     int        `json:"paid_dues"`
	Payments     int        `json:"payments"`
}

type Service interface {
	// Summary aggregates PAID dues income and payroll expense per month
	// over the range.
	Summary(ctx context.Context, from, to time.Time) (FinancialSummary, error)
	RenderPDF(ctx context.Context, from, to time.Time) (io.Reader, error)
	RenderXLSX(ctx context.Context, from, to time.Time) (io.Reader, error)
}

var ErrInvalidRange = errors.New("invalid_range")
