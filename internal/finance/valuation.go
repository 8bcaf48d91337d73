package finance

import "github.com/peterkang34/holdco-tycoon-sub003/internal/opco"

// Exit valuation: a composite EBITDA multiple built additively from base
// sector multiple, growth premium, hold-period premium, platform-scale
// premium, and the market-condition modifier from the most recent event.

const (
	// MinExitMultiple floors the composite multiple regardless of inputs.
	MinExitMultiple = 2.0

	maxGrowthPremium = 2.0
	maxHoldPremium   = 1.0
	maxScalePremium  = 1.5
	holdPremiumStep  = 0.1  // per round held
	scalePremiumStep = 0.35 // per integrated bolt-on
)

// ExitInputs describes one business at valuation time.
type ExitInputs struct {
	Sector         opco.Sector
	EBITDA         float64
	AcquiredEBITDA float64
	RoundsHeld     int
	BoltOnCount    int
	MarketMod      float64 // most recent event's valuation modifier
}

// ExitMultiple returns the composite multiple, floored at MinExitMultiple.
func ExitMultiple(in ExitInputs) float64 {
	m := opco.Profiles[in.Sector].BaseMultiple

	// Growth premium: EBITDA doubled since acquisition → +1.0x, capped.
	if in.AcquiredEBITDA > 0 && in.EBITDA > in.AcquiredEBITDA {
		premium := in.EBITDA/in.AcquiredEBITDA - 1
		if premium > maxGrowthPremium {
			premium = maxGrowthPremium
		}
		m += premium
	}

	hold := float64(in.RoundsHeld) * holdPremiumStep
	if hold > maxHoldPremium {
		hold = maxHoldPremium
	}
	m += hold

	scale := float64(in.BoltOnCount) * scalePremiumStep
	if scale > maxScalePremium {
		scale = maxScalePremium
	}
	m += scale

	m += in.MarketMod

	if m < MinExitMultiple {
		m = MinExitMultiple
	}
	return m
}

// ExitValuation is the enterprise value: multiple times EBITDA, floored at
// zero so a loss-making business never carries negative intrinsic value
// into persisted state.
func ExitValuation(in ExitInputs) float64 {
	if in.EBITDA <= 0 {
		return 0
	}
	return in.EBITDA * ExitMultiple(in)
}

// BusinessExitInputs snapshots a business into valuation inputs.
func BusinessExitInputs(b *opco.Business, currentRound int, marketMod float64) ExitInputs {
	held := currentRound - b.AcquiredRound
	if held < 0 {
		held = 0
	}
	return ExitInputs{
		Sector:         b.Sector,
		EBITDA:         b.EBITDA,
		AcquiredEBITDA: b.AcquiredEBITDA,
		RoundsHeld:     held,
		BoltOnCount:    len(b.BoltOnIDs),
		MarketMod:      marketMod,
	}
}

// EquityValue is enterprise value net of acquisition debt, floored at zero.
func EquityValue(b *opco.Business, currentRound int, marketMod float64) float64 {
	v := ExitValuation(BusinessExitInputs(b, currentRound, marketMod)) - b.TotalDebt()
	if v < 0 {
		return 0
	}
	return v
}
