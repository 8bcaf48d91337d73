package finance

import "github.com/peterkang34/holdco-tycoon-sub003/internal/opco"

// DefaultTaxRate applies to portfolio taxable income.
const DefaultTaxRate = 0.25

// TaxInputs gathers the deductions applied against portfolio EBITDA.
type TaxInputs struct {
	Businesses     []*opco.Business
	InterestHoldco float64
	InterestOpCo   float64
	SharedServices float64
	Rate           float64 // zero means DefaultTaxRate
}

// PortfolioTax computes the round's tax bill. Negative-EBITDA businesses
// offset positive ones (loss shields), then interest and shared-service
// costs deduct, and taxable income floors at zero: the tax bill can never
// go negative no matter how large the shields are.
func PortfolioTax(in TaxInputs) float64 {
	rate := in.Rate
	if rate == 0 {
		rate = DefaultTaxRate
	}

	ebitda := 0.0
	for _, b := range in.Businesses {
		if b.Active() {
			ebitda += b.EBITDA // negatives shield positives
		}
	}

	taxable := ebitda - in.InterestHoldco - in.InterestOpCo - in.SharedServices
	if taxable < 0 {
		taxable = 0
	}
	return taxable * rate
}
