package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/citylights/billing/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(StartScheduler),
)

func ProvideConfig(cfg config.Config) Config {
	out := Config{}
	if cfg.SchedulerInterval != "" {
		if interval, err := time.ParseDuration(cfg.SchedulerInterval); err == nil {
			out.RunInterval = interval
		}
	}
	if cfg.SchedulerJobs != "" {
		for _, job := range strings.Split(cfg.SchedulerJobs, ",") {
			job = strings.TrimSpace(job)
			if job != "" {
				out.EnabledJobs = append(out.EnabledJobs, job)
			}
		}
	}
	return out
}

func StartScheduler(lc fx.Lifecycle, sched *Scheduler) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go sched.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
