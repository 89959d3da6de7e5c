package delinquency

import (
	"github.com/citylights/billing/internal/delinquency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("delinquency.service",
	fx.Provide(service.New),
)
