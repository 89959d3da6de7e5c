package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Policy is the billing policy applied when dues are created. The values are
// frozen onto each due at creation time, so a reload only affects future dues.
type Policy struct {
	GraceDays        int     `mapstructure:"graceDays"`
	SurchargePercent float64 `mapstructure:"surchargePercent"`
	Currency         string  `mapstructure:"currency"`
	FallbackBase     float64 `mapstructure:"fallbackBase"`
}

func DefaultPolicy() Policy {
	return Policy{
		GraceDays:        5,
		SurchargePercent: 10.0,
		Currency:         "usd",
		FallbackBase:     100.0,
	}
}

// PolicyHolder serves the current billing policy and hot-reloads it from
// billing.yml when the file changes.
type PolicyHolder struct {
	current atomic.Value // holds Policy
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/citylights")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPolicy()
	v.SetDefault("policy.graceDays", defaults.GraceDays)
	v.SetDefault("policy.surchargePercent", defaults.SurchargePercent)
	v.SetDefault("policy.currency", defaults.Currency)
	v.SetDefault("policy.fallbackBase", defaults.FallbackBase)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy Policy
	if err := v.UnmarshalKey("policy", &policy); err != nil {
		return nil, err
	}
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Policy
		if err := v.UnmarshalKey("policy", &updated); err != nil {
			log.Printf("[billing-policy] reload failed: %v", err)
			return
		}
		if err := validatePolicy(updated); err != nil {
			log.Printf("[billing-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

func (h *PolicyHolder) Current() Policy {
	return h.current.Load().(Policy)
}

// StaticPolicyHolder is for tests that need a fixed policy.
func StaticPolicyHolder(p Policy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(p)
	return holder
}

func validatePolicy(p Policy) error {
	if p.GraceDays < 0 {
		return errors.New("graceDays must not be negative")
	}
	if p.SurchargePercent < 0 {
		return errors.New("surchargePercent must not be negative")
	}
	if strings.TrimSpace(p.Currency) == "" {
		return errors.New("currency is required")
	}
	return nil
}
