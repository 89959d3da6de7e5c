package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/clock"
	conceptdomain "github.com/citylights/billing/internal/concept/domain"
	"github.com/citylights/billing/internal/config"
	"github.com/citylights/billing/internal/dues/domain"
	"github.com/citylights/billing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Concepts conceptdomain.Service
	Policy   *config.PolicyHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	concepts conceptdomain.Service
	policy   *config.PolicyHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("dues.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		concepts: p.Concepts,
		policy:   p.Policy,
	}
}

func (s *Service) EnsureDue(ctx context.Context, resident domain.Resident, year, month int) (domain.MonthlyDue, bool, error) {
	resident.ID = strings.TrimSpace(resident.ID)
	if resident.ID == "" {
		return domain.MonthlyDue{}, false, domain.ErrInvalidResident
	}
	if month < 1 || month > 12 || year < 2000 {
		return domain.MonthlyDue{}, false, domain.ErrInvalidPeriod
	}

	existing, err := s.repo.FindByPeriod(ctx, s.db, resident.ID, year, month)
	if err != nil {
		return domain.MonthlyDue{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	configuration, err := s.concepts.Configuration(ctx)
	if err != nil {
		return domain.MonthlyDue{}, false, err
	}
	policy := s.policy.Current()
	base := configuration.Total
	if base <= 0 {
		base = policy.FallbackBase
	}

	now := s.clock.Now()
	dueDate := domain.LastMomentOfMonth(year, month)
	due := domain.MonthlyDue{
		ID:               s.genID.Generate(),
		ResidentID:       resident.ID,
		ResidentName:     strings.TrimSpace(resident.Name),
		ResidentEmail:    strings.TrimSpace(resident.Email),
		Year:             year,
		Month:            month,
		BaseAmount:       base,
		SurchargeAmount:  0,
		TotalAmount:      base,
		State:            domain.StatePending,
		DueDate:          dueDate,
		GraceDate:        dueDate.AddDate(0, 0, policy.GraceDays),
		SurchargePercent: policy.SurchargePercent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &due); err != nil {
		// A concurrent generator already created this period's due; fold the
		// unique-constraint failure into "already exists".
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindByPeriod(ctx, s.db, resident.ID, year, month)
			if findErr != nil {
				return domain.MonthlyDue{}, false, findErr
			}
			if existing != nil {
				return *existing, false, nil
			}
		}
		return domain.MonthlyDue{}, false, err
	}

	return due, true, nil
}

func (s *Service) GenerateForPeriod(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	year, month := req.Year, req.Month
	if year == 0 || month == 0 {
		now := s.clock.Now()
		year, month = now.Year(), int(now.Month())
	}
	if month < 1 || month > 12 {
		return domain.GenerateResult{}, domain.ErrInvalidPeriod
	}

	result := domain.GenerateResult{
		Year:  year,
		Month: month,
		Total: len(req.Residents),
	}

	for _, resident := range req.Residents {
		_, created, err := s.EnsureDue(ctx, resident, year, month)
		if err != nil {
			result.Errors = append(result.Errors, domain.GenerateError{
				ResidentID: resident.ID,
				Reason:     err.Error(),
			})
			s.log.Warn("due generation failed for resident",
				zap.String("resident_id", resident.ID),
				zap.Int("year", year),
				zap.Int("month", month),
				zap.Error(err),
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.AlreadyExisted++
		}
	}

	s.log.Info("dues generation finished",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("created", result.Created),
		zap.Int("already_existed", result.AlreadyExisted),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.MonthlyDue, error) {
	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}
	dues := make([]domain.MonthlyDue, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		dues = append(dues, *item)
	}
	return dues, nil
}

func (s *Service) Verify(ctx context.Context, residentID string, year, month int) (domain.VerifyResult, error) {
	residentID = strings.TrimSpace(residentID)
	if residentID == "" {
		return domain.VerifyResult{}, domain.ErrInvalidResident
	}
	if year == 0 || month == 0 {
		now := s.clock.Now()
		year, month = now.Year(), int(now.Month())
	}

	due, err := s.repo.FindByPeriod(ctx, s.db, residentID, year, month)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	return domain.VerifyResult{
		Exists: due != nil,
		Due:    due,
		Year:   year,
		Month:  month,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.MonthlyDue, error) {
	due, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MonthlyDue{}, err
	}
	if due == nil {
		return domain.MonthlyDue{}, domain.ErrNotFound
	}
	return *due, nil
}

func (s *Service) FindBySession(ctx context.Context, sessionID string) (domain.MonthlyDue, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.MonthlyDue{}, domain.ErrNotFound
	}
	due, err := s.repo.FindBySession(ctx, s.db, sessionID)
	if err != nil {
		return domain.MonthlyDue{}, err
	}
	if due == nil {
		return domain.MonthlyDue{}, domain.ErrNotFound
	}
	return *due, nil
}

func (s *Service) AttachSession(ctx context.Context, id snowflake.ID, sessionID string) error {
	due, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if due == nil {
		return domain.ErrNotFound
	}
	if due.Paid() {
		return domain.ErrAlreadyPaid
	}

	due.SessionID = strings.TrimSpace(sessionID)
	due.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, due)
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID, paidAt time.Time, method string) (domain.MonthlyDue, error) {
	due, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MonthlyDue{}, err
	}
	if due == nil {
		return domain.MonthlyDue{}, domain.ErrNotFound
	}
	if due.Paid() {
		return *due, domain.ErrAlreadyPaid
	}

	paidAt = paidAt.UTC()
	due.State = domain.StatePaid
	due.PaidAt = &paidAt
	due.PaymentMethod = strings.TrimSpace(method)
	due.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, due); err != nil {
		return domain.MonthlyDue{}, err
	}

	s.log.Info("due paid",
		zap.String("resident_id", due.ResidentID),
		zap.String("period", due.Period()),
		zap.Float64("total", due.TotalAmount),
		zap.String("method", due.PaymentMethod),
	)
	return *due, nil
}
