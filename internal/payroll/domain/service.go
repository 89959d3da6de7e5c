package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type PayRequest struct {
	WorkerID   int64   `json:"worker_id"`
	WorkerName string  `json:"worker_name"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Amount     float64 `json:"amount"`
	PaidBy     string  `json:"paid_by"`
}

type VerifyResult struct {
	Paid    bool            `json:"paid"`
	Payment *PayrollPayment `json:"payment,omitempty"`
	Year    int             `json:"year"`
	Month   int             `json:"month"`
}

type HistoryRequest struct {
	WorkerID int64
	Year     int
	Month    int
	PaidFrom *time.Time
	PaidTo   *time.Time
}

type Service interface {
	// Pay records a salary disbursement for the worker's period. A second
	// payment for the same period fails with ErrAlreadyPaid.
	Pay(ctx context.Context, req PayRequest) (PayrollPayment, error)
	Verify(ctx context.Context, workerID int64, year, month int) (VerifyResult, error)
	History(ctx context.Context, req HistoryRequest) ([]PayrollPayment, error)
	GetByID(ctx context.Context, id snowflake.ID) (PayrollPayment, error)
}

var (
	ErrInvalidWorker = errors.New("invalid_worker")
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrAlreadyPaid   = errors.New("already_paid")
	ErrNotFound      = errors.New("not_found")
)
