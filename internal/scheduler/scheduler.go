package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citylights/billing/internal/clock"
	delinquencydomain "github.com/citylights/billing/internal/delinquency/domain"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	obsmetrics "github.com/citylights/billing/internal/observability/metrics"
	"github.com/citylights/billing/internal/providers/directory"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log            *zap.Logger
	Clock          clock.Clock
	DuesSvc        duesdomain.Service
	DelinquencySvc delinquencydomain.Service
	Directory      directory.Provider
	Metrics        *obsmetrics.SchedulerMetrics `optional:"true"`
	Config         Config                       `optional:"true"`
}

type Scheduler struct {
	log            *zap.Logger
	cfg            Config
	clock          clock.Clock
	duesSvc        duesdomain.Service
	delinquencySvc delinquencydomain.Service
	directory      directory.Provider
	metrics        *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.DuesSvc == nil || p.DelinquencySvc == nil || p.Directory == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            p.Config.withDefaults(),
		clock:          p.Clock,
		duesSvc:        p.DuesSvc,
		delinquencySvc: p.DelinquencySvc,
		directory:      p.Directory,
		metrics:        p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	s.metrics.IncJobRun(name)
	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"generate_dues", s.GenerateDuesJob},
		{"delinquency_sweep", s.DelinquencySweepJob},
	}

	for _, job := range jobs {
		if s.cfg.jobEnabled(job.Name) {
			name := job.Name
			run := job.Run
			err = errors.Join(err, s.runJob(parent, name, run))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GenerateDuesJob creates the month's dues for the active roster. It only
// acts on the first day of the month; dues creation is idempotent so a
// repeat run within that day is harmless.
func (s *Scheduler) GenerateDuesJob(ctx context.Context) error {
	now := s.clock.Now()
	if now.Day() != 1 {
		return nil
	}

	roster, err := s.directory.ActiveResidents(ctx)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		s.log.Info("dues generation skipped, empty roster")
		return nil
	}

	residents := make([]duesdomain.Resident, 0, len(roster))
	for _, r := range roster {
		residents = append(residents, duesdomain.Resident{ID: r.ID, Name: r.Name, Email: r.Email})
	}

	result, err := s.duesSvc.GenerateForPeriod(ctx, duesdomain.GenerateRequest{
		Residents: residents,
		Year:      now.Year(),
		Month:     int(now.Month()),
	})
	if err != nil {
		return err
	}

	s.metrics.AddItems("generate_dues", "created", result.Created)
	s.metrics.AddItems("generate_dues", "skipped", result.AlreadyExisted)
	s.metrics.AddItems("generate_dues", "failed", len(result.Errors))
	return nil
}

// DelinquencySweepJob applies surcharges to dues past their grace date.
func (s *Scheduler) DelinquencySweepJob(ctx context.Context) error {
	result, err := s.delinquencySvc.Sweep(ctx, s.clock.Now())
	if err != nil {
		return err
	}

	s.metrics.AddItems("delinquency_sweep", "updated", result.Updated)
	s.metrics.AddItems("delinquency_sweep", "failed", len(result.Errors))
	return nil
}
