// Package pricing computes the authoritative charge breakdown for a booking.
//
// All amounts are integer minor units. Rates and units are exact decimals and
// every derived field is rounded once, half away from zero.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPricingInput is returned for negative, zero-unit or out-of-range inputs.
var ErrInvalidPricingInput = errors.New("invalid pricing input")

var (
	percentDivisor = decimal.NewFromInt(100)
	maxAmount      = decimal.NewFromInt(math.MaxInt64)
)

// Input carries the four pricing parameters plus the currency of the charge.
type Input struct {
	BaseRatePerUnit       int64
	Units                 decimal.Decimal
	CommissionRatePercent decimal.Decimal
	TaxRatePercent        decimal.Decimal
	Currency              string
}

// Pricing is the priced breakdown persisted on a booking.
type Pricing struct {
	BaseRatePerUnit  int64  `json:"base_rate_per_unit"`
	Units            string `json:"units"`
	BaseAmount       int64  `json:"base_amount"`
	CommissionRate   string `json:"commission_rate"`
	CommissionAmount int64  `json:"commission_amount"`
	TaxRate          string `json:"tax_rate"`
	TaxAmount        int64  `json:"tax_amount"`
	TotalCharged     int64  `json:"total_charged"`
	Currency         string `json:"currency"`
}

// Compute prices a booking. It is deterministic and has no side effects.
func Compute(input Input) (Pricing, error) {
	if input.BaseRatePerUnit < 0 {
		return Pricing{}, fmt.Errorf("%w: base rate must not be negative", ErrInvalidPricingInput)
	}
	if !input.Units.IsPositive() {
		return Pricing{}, fmt.Errorf("%w: units must be greater than zero", ErrInvalidPricingInput)
	}
	if err := validatePercent("commission rate", input.CommissionRatePercent); err != nil {
		return Pricing{}, err
	}
	if err := validatePercent("tax rate", input.TaxRatePercent); err != nil {
		return Pricing{}, err
	}
	currency, err := NormalizeCurrency(input.Currency)
	if err != nil {
		return Pricing{}, err
	}

	baseAmount, err := roundToMinorUnits(decimal.NewFromInt(input.BaseRatePerUnit).Mul(input.Units))
	if err != nil {
		return Pricing{}, err
	}
	commissionAmount, err := roundToMinorUnits(decimal.NewFromInt(baseAmount).Mul(input.CommissionRatePercent).Div(percentDivisor))
	if err != nil {
		return Pricing{}, err
	}
	taxAmount, err := TaxOnCommission(commissionAmount, input.TaxRatePercent)
	if err != nil {
		return Pricing{}, err
	}
	total := decimal.NewFromInt(baseAmount).Add(decimal.NewFromInt(commissionAmount)).Add(decimal.NewFromInt(taxAmount))
	if total.GreaterThan(maxAmount) {
		return Pricing{}, fmt.Errorf("%w: total overflows minor units", ErrInvalidPricingInput)
	}

	return Pricing{
		BaseRatePerUnit:  input.BaseRatePerUnit,
		Units:            input.Units.String(),
		BaseAmount:       baseAmount,
		CommissionRate:   input.CommissionRatePercent.String(),
		CommissionAmount: commissionAmount,
		TaxRate:          input.TaxRatePercent.String(),
		TaxAmount:        taxAmount,
		TotalCharged:     total.IntPart(),
		Currency:         currency,
	}, nil
}

// TaxOnCommission returns round(commission * taxRatePercent / 100).
func TaxOnCommission(commissionAmount int64, taxRatePercent decimal.Decimal) (int64, error) {
	return roundToMinorUnits(decimal.NewFromInt(commissionAmount).Mul(taxRatePercent).Div(percentDivisor))
}

// Verify checks the stored breakdown against its own invariants.
func (pricing Pricing) Verify() error {
	if pricing.BaseAmount < 0 || pricing.CommissionAmount < 0 || pricing.TaxAmount < 0 {
		return fmt.Errorf("%w: negative component", ErrInvalidPricingInput)
	}
	if pricing.TotalCharged != pricing.BaseAmount+pricing.CommissionAmount+pricing.TaxAmount {
		return fmt.Errorf("%w: total does not equal base + commission + tax", ErrInvalidPricingInput)
	}
	taxRate, err := ParseRate(pricing.TaxRate)
	if err != nil {
		return err
	}
	expectedTax, err := TaxOnCommission(pricing.CommissionAmount, taxRate)
	if err != nil {
		return err
	}
	if expectedTax != pricing.TaxAmount {
		return fmt.Errorf("%w: tax is not levied on commission", ErrInvalidPricingInput)
	}
	return nil
}

// MatchesAdvisory reports whether a client-displayed total equals the authoritative one.
func (pricing Pricing) MatchesAdvisory(advisoryTotal int64) bool {
	return pricing.TotalCharged == advisoryTotal
}

// CanonicalJSON encodes the breakdown with a fixed field order.
func (pricing Pricing) CanonicalJSON() ([]byte, error) {
	return json.Marshal(pricing)
}

// ParseRate parses a percentage or unit count from its decimal string form.
func ParseRate(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty decimal", ErrInvalidPricingInput)
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPricingInput, err)
	}
	return value, nil
}

// NormalizeCurrency validates an ISO 4217 code and lower-cases it.
func NormalizeCurrency(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if len(trimmed) != 3 {
		return "", fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidPricingInput)
	}
	for _, character := range trimmed {
		if character < 'a' || character > 'z' {
			return "", fmt.Errorf("%w: currency must be alphabetic", ErrInvalidPricingInput)
		}
	}
	return trimmed, nil
}

func validatePercent(name string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThanOrEqual(percentDivisor) {
		return fmt.Errorf("%w: %s must be in [0,100)", ErrInvalidPricingInput, name)
	}
	return nil
}

func roundToMinorUnits(value decimal.Decimal) (int64, error) {
	rounded := value.Round(0)
	if rounded.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: amount overflows minor units", ErrInvalidPricingInput)
	}
	return rounded.IntPart(), nil
}
