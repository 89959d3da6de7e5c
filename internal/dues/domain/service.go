package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

type GenerateRequest struct {
	Residents []Resident
	Year      int
	Month     int
}

// GenerateError reports one resident the batch could not create a due for.
type GenerateError struct {
	ResidentID string `json:"resident_id"`
	Reason     string `json:"reason"`
}

type GenerateResult struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Created        int             `json:"created"`
	AlreadyExisted int             `json:"already_existed"`
	Total          int             `json:"total"`
	Errors         []GenerateError `json:"errors,omitempty"`
}

type ListRequest struct {
	ResidentID string
	Year       int
	Month      int
	State      State
	PaidFrom   *time.Time
	PaidTo     *time.Time
}

type VerifyResult struct {
	Exists bool        `json:"exists"`
	Due    *MonthlyDue `json:"due,omitempty"`
	Year   int         `json:"year"`
	Month  int         `json:"month"`
}

type Service interface {
	// EnsureDue returns the resident's due for the period, creating a
	// PENDING one from the current configuration when missing. The second
	// return reports whether a new due was created.
	EnsureDue(ctx context.Context, resident Resident, year, month int) (MonthlyDue, bool, error)
	// GenerateForPeriod creates one due per resident, skipping residents
	// that already have one. Per-resident failures do not abort the batch.
	GenerateForPeriod(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	List(ctx context.Context, req ListRequest) ([]MonthlyDue, error)
	Verify(ctx context.Context, residentID string, year, month int) (VerifyResult, error)
	GetByID(ctx context.Context, id snowflake.ID) (MonthlyDue, error)
	FindBySession(ctx context.Context, sessionID string) (MonthlyDue, error)
	AttachSession(ctx context.Context, id snowflake.ID, sessionID string) error
	// MarkPaid transitions the due to PAID. Paid dues are immutable, so a
	// second call fails with ErrAlreadyPaid.
	MarkPaid(ctx context.Context, id snowflake.ID, paidAt time.Time, method string) (MonthlyDue, error)
}

var (
	ErrInvalidResident = errors.New("invalid_resident")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyPaid     = errors.New("already_paid")
)

// LastMomentOfMonth is the due date for a period: the last day of the month
// at 23:59:59 UTC.
func LastMomentOfMonth(year, month int) time.Time {
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.Add(-time.Second)
}

func formatPeriod(year, month int) string {
	return fmt.Sprintf("%02d/%d", month, year)
}
