package payment

import (
	"github.com/citylights/billing/internal/config"
	"github.com/citylights/billing/internal/payment/adapters/stripe"
	"github.com/citylights/billing/internal/payment/domain"
	"github.com/citylights/billing/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(provideCheckoutProvider),
	fx.Provide(service.New),
)

func provideCheckoutProvider(cfg config.Config) domain.CheckoutProvider {
	return stripe.New(cfg.StripeSecretKey, cfg.FrontendURL)
}
