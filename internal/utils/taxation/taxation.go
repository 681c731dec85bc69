package taxation

import (
	"fmt"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the scale every monetary amount is rounded to at the
// point of computation. Rounding is line-local: later summations never
// re-round or redistribute cents across a document.
const MoneyPrecision = 2

var (
	fractionStandard = decimal.NewFromFloat(0.20)
	fractionReduced  = decimal.NewFromFloat(0.10)
)

// Fraction returns the tax fraction for a rate band. Reverse-charge invoices
// shift the tax liability to the customer, so the fraction is zero.
func Fraction(rate domain.TaxRate) (decimal.Decimal, error) {
	switch rate {
	case domain.TaxStandard20:
		return fractionStandard, nil
	case domain.TaxReduced10:
		return fractionReduced, nil
	case domain.TaxZero, domain.TaxReverseCharge:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown tax rate '%s'", rate)
	}
}

// ResolveCustomerRate picks the single document-level rate applied to all
// time-based lines for a customer. Precedence: reverse charge, then tax
// exemption, then the customer default, then the standard rate.
func ResolveCustomerRate(customer domain.Customer) domain.TaxRate {
	if customer.ReverseCharge {
		return domain.TaxReverseCharge
	}
	if customer.TaxExempt {
		return domain.TaxZero
	}
	if customer.DefaultTaxRate.IsValid() {
		return customer.DefaultTaxRate
	}
	return domain.TaxStandard20
}

// RoundMoney rounds an amount to MoneyPrecision using round-half-up.
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts this system computes.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPrecision)
}

// LineAmounts computes subtotal, tax and total for quantity x unitPrice under
// the given rate. Both the subtotal and the tax amount are rounded where they
// are computed, per the line-local rounding policy.
func LineAmounts(quantity, unitPrice decimal.Decimal, rate domain.TaxRate) (subtotal, tax, total decimal.Decimal, err error) {
	fraction, err := Fraction(rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	subtotal = RoundMoney(quantity.Mul(unitPrice))
	tax = RoundMoney(subtotal.Mul(fraction))
	total = subtotal.Add(tax)
	return subtotal, tax, total, nil
}
