package opco

// Business is a single operating company. Exactly one owner (the round
// machine) mutates a business per round; everything else reads.
type Business struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sector Sector `json:"sector"`

	Revenue float64 `json:"revenue"`
	EBITDA  float64 `json:"ebitda"`
	Margin  float64 `json:"margin"`
	Quality int     `json:"quality"` // ordinal 1-5
	Growth  float64 `json:"growth"`  // annual revenue growth rate

	// MarginDrift moves margin each round: positive for improving
	// operations, negative for deteriorating ones.
	MarginDrift float64 `json:"margin_drift"`

	Status Status `json:"status"`

	// Platform linkage. A platform owns BoltOnIDs; an integrated bolt-on
	// points back via PlatformID and is excluded from portfolio aggregates.
	PlatformID string   `json:"platform_id,omitempty"`
	BoltOnIDs  []string `json:"bolt_on_ids,omitempty"`

	AcquiredRound  int     `json:"acquired_round"`
	AcquiredPrice  float64 `json:"acquired_price"`
	AcquiredEBITDA float64 `json:"acquired_ebitda"`

	SellerNote Debt    `json:"seller_note"`
	BankDebt   Debt    `json:"bank_debt"`
	EarnOut    EarnOut `json:"earn_out"`

	// RolloverPct is the seller's retained equity share under a
	// rollover structure; it comes out of future exit proceeds.
	RolloverPct float64 `json:"rollover_pct,omitempty"`
}

// Active reports whether the business is independently operating (not
// folded into a platform, sold, or wound down).
func (b *Business) Active() bool {
	return b.Status == StatusActive
}

// TotalDebt is the sum of outstanding acquisition-debt balances. Earn-outs
// are contingent and excluded.
func (b *Business) TotalDebt() float64 {
	return b.SellerNote.Balance + b.BankDebt.Balance
}

// CarriesDebt reports whether the business's debt schedule is still live:
// active companies and integrated bolt-ons, whose instruments keep
// amortizing under the platform. Sold and wound-down businesses settle
// their debt at exit.
func (b *Business) CarriesDebt() bool {
	return b.Status == StatusActive || b.Status == StatusIntegrated
}

// IsPlatform reports whether the business has absorbed at least one bolt-on.
func (b *Business) IsPlatform() bool {
	return len(b.BoltOnIDs) > 0
}

// RealizedGrowth is EBITDA growth since acquisition, the earn-out yardstick.
func (b *Business) RealizedGrowth() float64 {
	if b.AcquiredEBITDA <= 0 {
		return 0
	}
	return b.EBITDA/b.AcquiredEBITDA - 1
}

// ApplyGrowth advances one round of organic growth: revenue compounds at
// growthRate, margin drifts, and EBITDA is recomputed from the two. Margin
// is clamped to a sane band so drift can never push it degenerate.
func (b *Business) ApplyGrowth(growthRate float64) {
	b.Revenue *= 1 + growthRate
	if b.Revenue < 0 {
		b.Revenue = 0
	}
	b.Margin += b.MarginDrift
	if b.Margin > 0.60 {
		b.Margin = 0.60
	}
	if b.Margin < -0.20 {
		b.Margin = -0.20
	}
	b.EBITDA = b.Revenue * b.Margin
}

// ActiveTotalEBITDA sums EBITDA across active businesses only. Bolt-ons are
// already consolidated into their platform's EBITDA and carry
// StatusIntegrated, so they are never double-counted here.
func ActiveTotalEBITDA(businesses []*Business) float64 {
	total := 0.0
	for _, b := range businesses {
		if b.Active() {
			total += b.EBITDA
		}
	}
	return total
}

// ActiveBusinesses filters to independently operating companies, preserving
// insertion order. Debt service iterates this order.
func ActiveBusinesses(businesses []*Business) []*Business {
	var out []*Business
	for _, b := range businesses {
		if b.Active() {
			out = append(out, b)
		}
	}
	return out
}

// TotalAcquisitionDebt sums outstanding seller notes and bank debt. Debt
// survives integration: a bolt-on's schedule keeps running under its
// platform, so integrated businesses count here even though their EBITDA
// is consolidated away.
func TotalAcquisitionDebt(businesses []*Business) float64 {
	total := 0.0
	for _, b := range businesses {
		if b.CarriesDebt() {
			total += b.TotalDebt()
		}
	}
	return total
}

// ByID finds a business in a slice; nil when absent.
func ByID(businesses []*Business, id string) *Business {
	for _, b := range businesses {
		if b.ID == id {
			return b
		}
	}
	return nil
}
