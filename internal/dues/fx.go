package dues

import (
	"github.com/citylights/billing/internal/dues/repository"
	"github.com/citylights/billing/internal/dues/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dues.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
