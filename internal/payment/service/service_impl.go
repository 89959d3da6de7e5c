package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/citylights/billing/internal/clock"
	"github.com/citylights/billing/internal/config"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	invoicedomain "github.com/citylights/billing/internal/invoice/domain"
	"github.com/citylights/billing/internal/payment/domain"
	"github.com/citylights/billing/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Policy   *config.PolicyHolder
	Dues     duesdomain.Service
	Provider domain.CheckoutProvider
	Invoices invoicedomain.Service
	Email    email.Provider
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	policy   *config.PolicyHolder
	dues     duesdomain.Service
	provider domain.CheckoutProvider
	invoices invoicedomain.Service
	email    email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("payment.service"),
		clock:    p.Clock,
		policy:   p.Policy,
		dues:     p.Dues,
		provider: p.Provider,
		invoices: p.Invoices,
		email:    p.Email,
	}
}

func (s *Service) OpenSession(ctx context.Context, req domain.OpenSessionRequest) (domain.OpenSessionResult, error) {
	resident := duesdomain.Resident{
		ID:    req.ResidentID,
		Name:  req.ResidentName,
		Email: req.ResidentEmail,
	}
	year, month := req.Year, req.Month
	if year == 0 || month == 0 {
		now := s.clock.Now()
		year, month = now.Year(), int(now.Month())
	}

	due, _, err := s.dues.EnsureDue(ctx, resident, year, month)
	if err != nil {
		return domain.OpenSessionResult{}, err
	}
	if due.Paid() {
		return domain.OpenSessionResult{}, domain.ErrDuePaid
	}

	result := domain.OpenSessionResult{
		DueID:  due.ID.String(),
		Amount: due.TotalAmount,
		Year:   due.Year,
		Month:  due.Month,
	}

	// No provider configured. The due still exists so the resident can
	// settle it out of band.
	if !s.provider.Enabled() {
		s.log.Warn("checkout provider disabled, returning due without session",
			zap.String("due_id", due.ID.String()),
		)
		result.Degraded = true
		return result, nil
	}

	policy := s.policy.Current()
	session, err := s.provider.CreateSession(ctx, domain.CheckoutRequest{
		DueID:       due.ID.String(),
		ResidentID:  due.ResidentID,
		Description: fmt.Sprintf("Monthly dues %s for %s", due.Period(), due.ResidentName),
		Period:      due.Period(),
		Amount:      due.TotalAmount,
		Currency:    policy.Currency,
	})
	if err != nil {
		return domain.OpenSessionResult{}, err
	}

	if err := s.dues.AttachSession(ctx, due.ID, session.ID); err != nil {
		return domain.OpenSessionResult{}, err
	}

	s.log.Info("checkout session opened",
		zap.String("due_id", due.ID.String()),
		zap.String("session_id", session.ID),
		zap.Float64("amount", due.TotalAmount),
	)
	result.SessionID = session.ID
	result.SessionURL = session.URL
	return result, nil
}

func (s *Service) ConfirmSession(ctx context.Context, sessionID string) (domain.ConfirmResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.ConfirmResult{}, domain.ErrInvalidSession
	}

	due, err := s.dues.FindBySession(ctx, sessionID)
	if err != nil {
		if err == duesdomain.ErrNotFound {
			return domain.ConfirmResult{}, domain.ErrSessionNotFound
		}
		return domain.ConfirmResult{}, err
	}

	// Repeat confirmations of a settled session succeed without touching
	// the due again.
	if due.Paid() {
		return domain.ConfirmResult{
			DueID:         due.ID.String(),
			Amount:        due.TotalAmount,
			PaymentMethod: due.PaymentMethod,
			AlreadyPaid:   true,
		}, nil
	}

	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	if !session.Paid() {
		return domain.ConfirmResult{}, domain.ErrSessionUnpaid
	}

	method := session.PaymentMethod
	if method == "" {
		method = "card"
	}
	paid, err := s.dues.MarkPaid(ctx, due.ID, s.clock.Now(), method)
	if err != nil {
		if err == duesdomain.ErrAlreadyPaid {
			return domain.ConfirmResult{
				DueID:         due.ID.String(),
				Amount:        due.TotalAmount,
				PaymentMethod: due.PaymentMethod,
				AlreadyPaid:   true,
			}, nil
		}
		return domain.ConfirmResult{}, err
	}

	// Receipt and confirmation email are best effort. The payment itself
	// is already settled.
	if _, err := s.invoices.DueReceipt(ctx, paid.ID); err != nil {
		s.log.Warn("receipt generation failed",
			zap.String("due_id", paid.ID.String()),
			zap.Error(err),
		)
	}
	s.sendConfirmation(ctx, paid)

	s.log.Info("checkout session confirmed",
		zap.String("due_id", paid.ID.String()),
		zap.String("session_id", sessionID),
		zap.Float64("amount", paid.TotalAmount),
	)
	return domain.ConfirmResult{
		DueID:         paid.ID.String(),
		Amount:        paid.TotalAmount,
		PaymentMethod: paid.PaymentMethod,
	}, nil
}

func (s *Service) sendConfirmation(ctx context.Context, due duesdomain.MonthlyDue) {
	if due.ResidentEmail == "" {
		return
	}
	paidAt := due.UpdatedAt
	if due.PaidAt != nil {
		paidAt = *due.PaidAt
	}
	policy := s.policy.Current()
	data := map[string]interface{}{
		"resident_name":  due.ResidentName,
		"amount":         due.TotalAmount,
		"currency":       strings.ToUpper(policy.Currency),
		"reference":      fmt.Sprintf("CUO-%08d", due.ID),
		"period":         due.Period(),
		"payment_method": due.PaymentMethod,
		"paid_at":        paidAt.Format("2006-01-02 15:04"),
	}
	if err := s.email.SendTemplate(ctx, []string{due.ResidentEmail}, "payment_confirmation", data); err != nil {
		s.log.Warn("confirmation email failed",
			zap.String("due_id", due.ID.String()),
			zap.Error(err),
		)
	}
}
