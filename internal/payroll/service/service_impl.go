package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/clock"
	"github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payroll.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Pay(ctx context.Context, req domain.PayRequest) (domain.PayrollPayment, error) {
	if req.WorkerID <= 0 {
		return domain.PayrollPayment{}, domain.ErrInvalidWorker
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		return domain.PayrollPayment{}, domain.ErrInvalidPeriod
	}
	if req.Amount <= 0 {
		return domain.PayrollPayment{}, domain.ErrInvalidAmount
	}

	existing, err := s.repo.FindByPeriod(ctx, s.db, req.WorkerID, req.Year, req.Month)
	if err != nil {
		return domain.PayrollPayment{}, err
	}
	if existing != nil {
		return *existing, domain.ErrAlreadyPaid
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	payment := domain.PayrollPayment{
		ID:         id,
		WorkerID:   req.WorkerID,
		WorkerName: strings.TrimSpace(req.WorkerName),
		Year:       req.Year,
		Month:      req.Month,
		Amount:     req.Amount,
		State:      domain.StateCompleted,
		Reference:  fmt.Sprintf("PAY-%d-%04d%02d-%d", req.WorkerID, req.Year, req.Month, id),
		PaidBy:     strings.TrimSpace(req.PaidBy),
		PaidAt:     now,
		CreatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		// Two concurrent payments for the same period race on the unique
		// index. The loser reads back the winner's row.
		if db.IsDuplicateKeyErr(err) {
			winner, ferr := s.repo.FindByPeriod(ctx, s.db, req.WorkerID, req.Year, req.Month)
			if ferr == nil && winner != nil {
				return *winner, domain.ErrAlreadyPaid
			}
		}
		return domain.PayrollPayment{}, err
	}

	s.log.Info("payroll payment recorded",
		zap.Int64("worker_id", req.WorkerID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Float64("amount", req.Amount),
		zap.String("reference", payment.Reference),
	)
	return payment, nil
}

func (s *Service) Verify(ctx context.Context, workerID int64, year, month int) (domain.VerifyResult, error) {
	if workerID <= 0 {
		return domain.VerifyResult{}, domain.ErrInvalidWorker
	}
	if year == 0 || month == 0 {
		now := s.clock.Now()
		year, month = now.Year(), int(now.Month())
	}
	if month < 1 || month > 12 || year < 2000 {
		return domain.VerifyResult{}, domain.ErrInvalidPeriod
	}

	payment, err := s.repo.FindByPeriod(ctx, s.db, workerID, year, month)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	return domain.VerifyResult{
		Paid:    payment != nil,
		Payment: payment,
		Year:    year,
		Month:   month,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.PayrollPayment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.PayrollPayment{}, err
	}
	if payment == nil {
		return domain.PayrollPayment{}, domain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) History(ctx context.Context, req domain.HistoryRequest) ([]domain.PayrollPayment, error) {
	rows, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}
	payments := make([]domain.PayrollPayment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, *row)
	}
	return payments, nil
}
