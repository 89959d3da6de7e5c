package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Artifact is a generated PDF on disk. Created is false when a previous
// generation was found and reused.
type Artifact struct {
	Number  string `json:"number"`
	File    string `json:"file"`
	Path    string `json:"path"`
	Created bool   `json:"created"`
}

type Service interface {
	// PayrollInvoice renders the salary invoice for a completed payroll
	// payment. A second call for the same payment returns the existing
	// file without rendering again.
	PayrollInvoice(ctx context.Context, paymentID snowflake.ID) (Artifact, error)
	// DueReceipt renders the payment receipt for a settled monthly due.
	// Same idempotency as PayrollInvoice.
	DueReceipt(ctx context.Context, dueID snowflake.ID) (Artifact, error)
	// List returns the generated artifacts currently on disk.
	List(ctx context.Context) ([]Artifact, error)
}

var (
	ErrNotFound = errors.New("not_found")
	ErrNotPaid  = errors.New("not_paid")
)
