package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/citylights/billing/internal/config"
	"github.com/citylights/billing/internal/delinquency/domain"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	"github.com/citylights/billing/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   duesdomain.Repository
	Policy *config.PolicyHolder
	Email  email.Provider
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   duesdomain.Repository
	policy *config.PolicyHolder
	email  email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("delinquency.service"),
		repo:   p.Repo,
		policy: p.Policy,
		email:  p.Email,
	}
}

func (s *Service) Sweep(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	now = now.UTC()
	dues, err := s.repo.FindSweepable(ctx, s.db, now)
	if err != nil {
		return domain.SweepResult{}, err
	}

	result := domain.SweepResult{Scanned: len(dues)}
	for _, due := range dues {
		days := int(now.Sub(due.GraceDate) / (24 * time.Hour))
		if days <= 0 {
			// Still inside the grace window at day granularity.
			continue
		}

		firstTransition := due.State != duesdomain.StateDelinquent

		// Full recompute from the base amount. Sweeping the same due twice
		// must not stack surcharges.
		due.DelinquencyDays = days
		due.SurchargeAmount = due.BaseAmount * due.SurchargePercent / 100
		due.TotalAmount = due.BaseAmount + due.SurchargeAmount
		due.State = duesdomain.StateDelinquent
		due.UpdatedAt = now

		if err := s.repo.Update(ctx, s.db, due); err != nil {
			result.Errors = append(result.Errors, domain.SweepError{
				ResidentID: due.ResidentID,
				Period:     due.Period(),
				Reason:     err.Error(),
			})
			s.log.Warn("delinquency update failed",
				zap.String("resident_id", due.ResidentID),
				zap.String("period", due.Period()),
				zap.Error(err),
			)
			continue
		}
		result.Updated++
		if firstTransition {
			s.sendReminder(ctx, due)
		}
	}

	s.log.Info("delinquency sweep finished",
		zap.Time("now", now),
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// sendReminder is best effort. A failed email never fails the sweep.
func (s *Service) sendReminder(ctx context.Context, due *duesdomain.MonthlyDue) {
	if due.ResidentEmail == "" {
		return
	}
	policy := s.policy.Current()
	data := map[string]interface{}{
		"resident_name":    due.ResidentName,
		"period":           due.Period(),
		"total_amount":     due.TotalAmount,
		"base_amount":      due.BaseAmount,
		"surcharge_amount": due.SurchargeAmount,
		"delinquency_days": due.DelinquencyDays,
		"currency":         strings.ToUpper(policy.Currency),
	}
	if err := s.email.SendTemplate(ctx, []string{due.ResidentEmail}, "delinquency_reminder", data); err != nil {
		s.log.Warn("delinquency reminder failed",
			zap.String("resident_id", due.ResidentID),
			zap.Error(err),
		)
	}
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	dues, err := s.repo.Delinquent(ctx, s.db)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{Count: len(dues)}
	totalDays := 0
	byPeriod := make(map[string]*domain.PeriodSummary)
	for _, due := range dues {
		summary.TotalSurcharge += due.SurchargeAmount
		summary.TotalOwed += due.TotalAmount
		totalDays += due.DelinquencyDays

		period := due.Period()
		entry, ok := byPeriod[period]
		if !ok {
			entry = &domain.PeriodSummary{Period: period}
			byPeriod[period] = entry
		}
		entry.Count++
		entry.TotalSurcharge += due.SurchargeAmount
		entry.TotalOwed += due.TotalAmount
	}

	if summary.Count > 0 {
		summary.AvgDelinquencyDays = float64(totalDays) / float64(summary.Count)
	}

	periods := make([]string, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Strings(periods)
	for _, period := range periods {
		summary.ByPeriod = append(summary.ByPeriod, *byPeriod[period])
	}

	return summary, nil
}
