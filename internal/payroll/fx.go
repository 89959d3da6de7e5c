package payroll

import (
	"github.com/citylights/billing/internal/payroll/repository"
	"github.com/citylights/billing/internal/payroll/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payroll.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
