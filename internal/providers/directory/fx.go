package directory

import (
	"github.com/citylights/billing/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.directory",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.DirectoryBaseURL == "" {
		log.Warn("directory service not configured, roster lookups disabled")
		return &NoOpProvider{}
	}
	return NewClient(cfg.DirectoryBaseURL)
}
