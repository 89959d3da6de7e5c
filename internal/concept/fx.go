package concept

import (
	"github.com/citylights/billing/internal/concept/repository"
	"github.com/citylights/billing/internal/concept/service"
	"go.uber.org/fx"
)

var Module = fx.Module("concept.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
