package finance

import "github.com/peterkang34/holdco-tycoon-sub003/internal/opco"

// Free cash flow primitives. Everything here is a pure function of its
// arguments; the round machine owns sequencing and cash mutation.

// PreTaxFCF is a single business's pre-tax free cash flow: EBITDA less
// maintenance capex less its share of overhead. Negative EBITDA flows
// through undamped; capex is charged on max(EBITDA, 0) so a loss-making
// business is not double-penalized.
func PreTaxFCF(ebitda, capexRate, overhead float64) float64 {
	capexBase := ebitda
	if capexBase < 0 {
		capexBase = 0
	}
	return ebitda - capexBase*capexRate - overhead
}

// CostProfile carries the capability-adjusted cost rates used by the
// collection waterfall.
type CostProfile struct {
	CapexDiscount    float64 // 0..1 reduction on sector capex rates
	OverheadPerOpCo  float64 // shared-service cost per active business
	SourcingOverhead float64 // flat M&A-sourcing cost while any focus is set
}

// PortfolioPreTaxFCF sums pre-tax FCF across active businesses in
// insertion order. Bolt-ons are consolidated upstream and excluded by
// their integrated status.
func PortfolioPreTaxFCF(businesses []*opco.Business, costs CostProfile) float64 {
	total := 0.0
	for _, b := range businesses {
		if !b.Active() {
			continue
		}
		capex := opco.Profiles[b.Sector].CapexRate * (1 - costs.CapexDiscount)
		if capex < 0 {
			capex = 0
		}
		total += PreTaxFCF(b.EBITDA, capex, costs.OverheadPerOpCo)
	}
	if len(opco.ActiveBusinesses(businesses)) > 0 {
		total -= costs.SourcingOverhead
	}
	return total
}
