package finance

import "github.com/peterkang34/holdco-tycoon-sub003/internal/opco"

// Metrics is the derived snapshot recomputed from state on every mutation.
// Nothing here is stored; degenerate inputs are guarded so no NaN or Inf
// can leak into a serialized snapshot.
type Metrics struct {
	NetWorth        float64 `json:"net_worth"`
	PortfolioEBITDA float64 `json:"portfolio_ebitda"`
	FCFPerShare     float64 `json:"fcf_per_share"`
	ROIC            float64 `json:"roic"`
	ROIIC           float64 `json:"roiic"`
	Leverage        float64 `json:"leverage"`
	DistressLevel   int     `json:"distress_level"`
}

// MetricsInputs carries everything the snapshot needs from game state.
type MetricsInputs struct {
	Cash              float64
	Businesses        []*opco.Business
	HoldcoLoan        opco.Debt
	SharesOutstanding float64
	Round             int
	MarketMod         float64
	LastRoundFCF      float64
	InvestedCapital   float64 // cumulative acquisition spend
	RecentInvested    float64 // spend over the trailing window
	RecentEBITDAGain  float64 // EBITDA added over the same window
	CovenantBreaches  int
	Restructured      bool
}

// LeverageCap stands in for "infinite" leverage when EBITDA is non-positive
// but debt is outstanding.
const LeverageCap = 99.0

// ComputeMetrics derives the full snapshot.
func ComputeMetrics(in MetricsInputs) Metrics {
	ebitda := opco.ActiveTotalEBITDA(in.Businesses)
	debt := opco.TotalAcquisitionDebt(in.Businesses) + in.HoldcoLoan.Balance

	equity := in.Cash
	for _, b := range in.Businesses {
		if b.Active() {
			equity += ExitValuation(BusinessExitInputs(b, in.Round, in.MarketMod))
		}
	}
	netWorth := equity - debt
	// Net worth may be negative; that is real information, not degeneracy.

	m := Metrics{
		NetWorth:        netWorth,
		PortfolioEBITDA: ebitda,
		FCFPerShare:     ratio(in.LastRoundFCF, in.SharesOutstanding),
		ROIC:            ratio(ebitda*(1-DefaultTaxRate), in.InvestedCapital),
		ROIIC:           ratio(in.RecentEBITDAGain*(1-DefaultTaxRate), in.RecentInvested),
		Leverage:        LeverageRatio(debt, ebitda),
	}
	m.DistressLevel = DistressLevel(in.Cash, m.Leverage, in.CovenantBreaches, in.Restructured)
	return m
}

// LeverageRatio is total debt over portfolio EBITDA, capped instead of
// dividing by a non-positive denominator.
func LeverageRatio(totalDebt, ebitda float64) float64 {
	if totalDebt <= 0 {
		return 0
	}
	if ebitda <= 0 {
		return LeverageCap
	}
	l := totalDebt / ebitda
	if l > LeverageCap {
		l = LeverageCap
	}
	return l
}

// DistressLevel grades financial stress 0 (healthy) to 3 (critical).
func DistressLevel(cash, leverage float64, breachRounds int, restructured bool) int {
	level := 0
	if leverage > 4.0 || cash < 50 {
		level = 1
	}
	if breachRounds > 0 || leverage > 6.0 {
		level = 2
	}
	if restructured || breachRounds >= 2 || cash <= 0 {
		level = 3
	}
	return level
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
