package domain

import (
	"context"
	"errors"
)

// CheckoutRequest describes the due a checkout session is opened for.
type CheckoutRequest struct {
	DueID       string
	ResidentID  string
	Description string
	Period      string
	Amount      float64
	Currency    string
}

// CheckoutSession is the provider-side session a resident completes in
// their browser.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   float64
	Currency      string
	PaymentMethod string
}

func (s CheckoutSession) Paid() bool { return s.PaymentStatus == "paid" }

// CheckoutProvider abstracts the external payment processor.
type CheckoutProvider interface {
	// Enabled reports whether the provider is configured with credentials.
	Enabled() bool
	CreateSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (CheckoutSession, error)
}

type OpenSessionRequest struct {
	ResidentID    string `json:"resident_id"`
	ResidentName  string `json:"resident_name"`
	ResidentEmail string `json:"resident_email"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
}

type OpenSessionResult struct {
	SessionID  string  `json:"session_id,omitempty"`
	SessionURL string  `json:"session_url,omitempty"`
	DueID      string  `json:"due_id"`
	Amount     float64 `json:"amount"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	// Degraded is set when no payment provider is configured. The due is
	// created but no checkout session exists.
	Degraded bool `json:"degraded,omitempty"`
}

type ConfirmResult struct {
	DueID         string  `json:"due_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	// AlreadyPaid reports a repeat confirmation of a settled session.
	AlreadyPaid bool `json:"already_paid"`
}

type Service interface {
	// OpenSession ensures the resident's due exists and opens a checkout
	// session for it. Opening a session for a paid due fails with
	// ErrDuePaid.
	OpenSession(ctx context.Context, req OpenSessionRequest) (OpenSessionResult, error)
	// ConfirmSession settles the due tied to the session. Confirming the
	// same session twice is idempotent.
	ConfirmSession(ctx context.Context, sessionID string) (ConfirmResult, error)
}

var (
	ErrInvalidSession   = errors.New("invalid_session")
	ErrSessionNotFound  = errors.New("session_not_found")
	ErrSessionUnpaid    = errors.New("session_unpaid")
	ErrDuePaid          = errors.New("due_already_paid")
	ErrProviderDisabled = errors.New("provider_disabled")
	ErrProvider         = errors.New("provider_error")
)
