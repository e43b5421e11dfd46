package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
)

// VerticalPolicy holds the rates and hold window applied to one vertical.
type VerticalPolicy struct {
	RatePerUnit           int64
	CommissionRatePercent decimal.Decimal
	TaxRatePercent        decimal.Decimal
	HoldWindow            time.Duration
	ProviderRates         map[string]int64
}

// RateFor returns the provider's own rate when one is configured.
func (policy VerticalPolicy) RateFor(providerID string) int64 {
	if rate, ok := policy.ProviderRates[providerID]; ok {
		return rate
	}
	return policy.RatePerUnit
}

// PolicyTable maps verticals to their policies and fixes the settlement currency.
type PolicyTable struct {
	currency string
	policies map[Vertical]VerticalPolicy
}

// NewPolicyTable validates a policy for every vertical.
func NewPolicyTable(currency string, policies map[Vertical]VerticalPolicy) (PolicyTable, error) {
	normalizedCurrency, err := pricing.NormalizeCurrency(currency)
	if err != nil {
		return PolicyTable{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	copied := make(map[Vertical]VerticalPolicy, len(policies))
	for _, vertical := range Verticals() {
		policy, ok := policies[vertical]
		if !ok {
			return PolicyTable{}, fmt.Errorf("%w: missing policy for %s", ErrInvalidPolicy, vertical)
		}
		if err := validatePolicy(vertical, policy); err != nil {
			return PolicyTable{}, err
		}
		providerRates := make(map[string]int64, len(policy.ProviderRates))
		for providerID, rate := range policy.ProviderRates {
			providerRates[providerID] = rate
		}
		policy.ProviderRates = providerRates
		copied[vertical] = policy
	}
	return PolicyTable{currency: normalizedCurrency, policies: copied}, nil
}

// DefaultPolicyTable returns the built-in marketplace rates.
func DefaultPolicyTable() PolicyTable {
	commission := decimal.NewFromInt(20)
	tax := decimal.NewFromInt(18)
	policies := map[Vertical]VerticalPolicy{
		VerticalTraining:  {RatePerUnit: 4500, CommissionRatePercent: commission, TaxRatePercent: tax, HoldWindow: defaultHoldWindow},
		VerticalWalk:      {RatePerUnit: 2000, CommissionRatePercent: commission, TaxRatePercent: tax, HoldWindow: defaultHoldWindow},
		VerticalSitting:   {RatePerUnit: 6000, CommissionRatePercent: commission, TaxRatePercent: tax, HoldWindow: defaultHoldWindow},
		VerticalTransport: {RatePerUnit: 3000, CommissionRatePercent: commission, TaxRatePercent: tax, HoldWindow: defaultHoldWindow},
		VerticalWash:      {RatePerUnit: 2500, CommissionRatePercent: commission, TaxRatePercent: tax, HoldWindow: defaultHoldWindow},
	}
	table, err := NewPolicyTable(defaultCurrency, policies)
	if err != nil {
		panic(err)
	}
	return table
}

// Currency returns the settlement currency.
func (table PolicyTable) Currency() string {
	return table.currency
}

// Lookup returns the policy for a vertical.
func (table PolicyTable) Lookup(vertical Vertical) (VerticalPolicy, error) {
	policy, ok := table.policies[vertical]
	if !ok {
		return VerticalPolicy{}, fmt.Errorf("%w: no policy for %q", ErrInvalidVertical, vertical)
	}
	return policy, nil
}

// Price computes the authoritative breakdown for a provider and unit count.
func (table PolicyTable) Price(vertical Vertical, providerID string, units decimal.Decimal) (pricing.Pricing, error) {
	policy, err := table.Lookup(vertical)
	if err != nil {
		return pricing.Pricing{}, err
	}
	return pricing.Compute(pricing.Input{
		BaseRatePerUnit:       policy.RateFor(providerID),
		Units:                 units,
		CommissionRatePercent: policy.CommissionRatePercent,
		TaxRatePercent:        policy.TaxRatePercent,
		Currency:              table.currency,
	})
}

func validatePolicy(vertical Vertical, policy VerticalPolicy) error {
	if policy.RatePerUnit < 0 {
		return fmt.Errorf("%w: %s rate must not be negative", ErrInvalidPolicy, vertical)
	}
	if policy.HoldWindow <= 0 {
		return fmt.Errorf("%w: %s hold window must be positive", ErrInvalidPolicy, vertical)
	}
	hundred := decimal.NewFromInt(100)
	if policy.CommissionRatePercent.IsNegative() || policy.CommissionRatePercent.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: %s commission rate must be in [0,100)", ErrInvalidPolicy, vertical)
	}
	if policy.TaxRatePercent.IsNegative() || policy.TaxRatePercent.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: %s tax rate must be in [0,100)", ErrInvalidPolicy, vertical)
	}
	for providerID, rate := range policy.ProviderRates {
		if rate < 0 {
			return fmt.Errorf("%w: %s rate for provider %s must not be negative", ErrInvalidPolicy, vertical, providerID)
		}
	}
	return nil
}
