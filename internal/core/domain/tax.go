package domain

// TaxRate identifies one of the fixed VAT rate bands a line or expense can
// carry. The numeric fraction for each band lives in utils/taxation.
type TaxRate string

const (
	TaxStandard20    TaxRate = "STANDARD_20"
	TaxReduced10     TaxRate = "REDUCED_10"
	TaxZero          TaxRate = "ZERO"
	TaxReverseCharge TaxRate = "REVERSE_CHARGE"
)

// IsValid reports whether the value is one of the known rate bands.
func (r TaxRate) IsValid() bool {
	switch r {
	case TaxStandard20, TaxReduced10, TaxZero, TaxReverseCharge:
		return true
	}
	return false
}
