package providers

import (
	"github.com/citylights/billing/internal/providers/directory"
	"github.com/citylights/billing/internal/providers/email"
	"github.com/citylights/billing/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	directory.Module,
	email.Module,
	pdf.Module,
)
