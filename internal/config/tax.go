package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// TaxRules carries the rates applied by the totals calculator.
type TaxRules struct {
	// DomesticComponentRate applies to each of the two domestic components.
	DomesticComponentRate decimal.Decimal
	// CrossBorderRate is the single-component rate for GLOBAL invoices.
	CrossBorderRate decimal.Decimal
}

type taxFile struct {
	DomesticComponentRate string `mapstructure:"domesticComponentRate"`
	CrossBorderRate       string `mapstructure:"crossBorderRate"`
}

func DefaultTaxRules() TaxRules {
	return TaxRules{
		DomesticComponentRate: decimal.RequireFromString("0.09"),
		CrossBorderRate:       decimal.Zero,
	}
}

type TaxRulesHolder struct {
	current atomic.Value // holds TaxRules
}

// NewStaticTaxRulesHolder returns a holder that never reloads.
func NewStaticTaxRulesHolder(rules TaxRules) *TaxRulesHolder {
	h := &TaxRulesHolder{}
	h.current.Store(rules)
	return h
}

func NewTaxRulesHolder() (*TaxRulesHolder, error) {
	v := viper.New()

	v.SetConfigName("tax")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/billdesk/config")
	v.AddConfigPath("/etc/billdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTaxRules()
	v.SetDefault("tax.domesticComponentRate", defaults.DomesticComponentRate.String())
	v.SetDefault("tax.crossBorderRate", defaults.CrossBorderRate.String())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return NewStaticTaxRulesHolder(defaults), nil
	}

	rules, err := readTaxRules(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticTaxRulesHolder(rules)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readTaxRules(v)
		if err != nil {
			log.Printf("[tax-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tax-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *TaxRulesHolder) Get() TaxRules {
	return h.current.Load().(TaxRules)
}

func readTaxRules(v *viper.Viper) (TaxRules, error) {
	var raw taxFile
	if err := v.UnmarshalKey("tax", &raw); err != nil {
		return TaxRules{}, err
	}
	return parseTaxRules(raw)
}

func parseTaxRules(raw taxFile) (TaxRules, error) {
	domestic, err := decimal.NewFromString(strings.TrimSpace(raw.DomesticComponentRate))
	if err != nil {
		return TaxRules{}, errors.New("tax.domesticComponentRate must be a decimal")
	}
	crossBorder, err := decimal.NewFromString(strings.TrimSpace(raw.CrossBorderRate))
	if err != nil {
		return TaxRules{}, errors.New("tax.crossBorderRate must be a decimal")
	}
	one := decimal.NewFromInt(1)
	if domestic.IsNegative() || domestic.GreaterThan(one) {
		return TaxRules{}, errors.New("tax.domesticComponentRate must be within [0,1]")
	}
	if crossBorder.IsNegative() || crossBorder.GreaterThan(one) {
		return TaxRules{}, errors.New("tax.crossBorderRate must be within [0,1]")
	}
	return TaxRules{DomesticComponentRate: domestic, CrossBorderRate: crossBorder}, nil
}
