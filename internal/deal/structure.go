package deal

import (
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/rng"
)

// StructureKind is the closed set of financing shapes.
type StructureKind int

const (
	StructAllCash StructureKind = iota
	StructSellerNote
	StructBankDebt
	StructEarnOut
	StructLBO
	StructRollover
)

func (k StructureKind) String() string {
	switch k {
	case StructAllCash:
		return "all_cash"
	case StructSellerNote:
		return "seller_note"
	case StructBankDebt:
		return "bank_debt"
	case StructEarnOut:
		return "earn_out"
	case StructLBO:
		return "lbo"
	case StructRollover:
		return "rollover_equity"
	default:
		return "unknown"
	}
}

// Structure is one offered financing shape: the cash it requires and the
// instruments it creates on the acquired business.
type Structure struct {
	Kind         StructureKind `json:"kind"`
	CashRequired float64       `json:"cash_required"`
	SellerNote   opco.Debt     `json:"seller_note"`
	BankDebt     opco.Debt     `json:"bank_debt"`
	EarnOut      opco.EarnOut  `json:"earn_out"`
	RolloverPct  float64       `json:"rollover_pct"`
	RiskTier     int           `json:"risk_tier"` // 1 safest .. 4
}

// FinancingEnv gates and prices the offered structures.
type FinancingEnv struct {
	CreditTight bool    // bank debt and LBOs withdrawn
	RateDelta   float64 // macro shift applied to all quoted rates
	FinanceTier int     // treasury capability: 0..3, discounts rates
}

// Structures quotes every available financing shape for a deal. All terms
// derive from a stream seeded by the deal's ID, so re-rendering the same
// deal always quotes identical terms. Draw order is fixed: every shape
// draws its terms even when gated out, so availability never shifts the
// terms of the shapes that remain.
func Structures(d *Deal, env FinancingEnv) []Structure {
	s := rng.New(rng.SeedFromString(d.ID))
	price := d.AskingPrice
	discount := float64(env.FinanceTier) * 0.005

	out := []Structure{{
		Kind:         StructAllCash,
		CashRequired: price,
		RiskTier:     1,
	}}

	// Seller note: 40-60% of price carried by the seller.
	notePct := s.Float(0.40, 0.60)
	noteRate := s.Float(0.05, 0.09) + env.RateDelta - discount
	noteTerm := s.IntBetween(4, 7)
	out = append(out, Structure{
		Kind:         StructSellerNote,
		CashRequired: price * (1 - notePct),
		SellerNote:   opco.Debt{Balance: price * notePct, Rate: clampRate(noteRate), TermLeft: noteTerm},
		RiskTier:     2,
	})

	// Bank debt: 50-70% levered. Gated during credit tightening.
	bankPct := s.Float(0.50, 0.70)
	bankRate := s.Float(0.07, 0.11) + env.RateDelta - discount
	bankTerm := s.IntBetween(5, 8)
	bank := Structure{
		Kind:         StructBankDebt,
		CashRequired: price * (1 - bankPct),
		BankDebt:     opco.Debt{Balance: price * bankPct, Rate: clampRate(bankRate), TermLeft: bankTerm},
		RiskTier:     3,
	}
	if !env.CreditTight {
		out = append(out, bank)
	}

	// Earn-out: 30-50% contingent on hitting an EBITDA growth target.
	earnPct := s.Float(0.30, 0.50)
	target := s.Float(0.15, 0.35)
	window := s.IntBetween(3, 5)
	out = append(out, Structure{
		Kind:         StructEarnOut,
		CashRequired: price * (1 - earnPct),
		EarnOut:      opco.EarnOut{Balance: price * earnPct, TargetGrowth: target, RoundsLeft: window},
		RiskTier:     2,
	})

	// LBO combo: bank + seller stack over a thin cash slice.
	lboBankPct := s.Float(0.45, 0.55)
	lboNotePct := s.Float(0.25, 0.35)
	lboBankRate := s.Float(0.08, 0.12) + env.RateDelta - discount
	lboNoteRate := s.Float(0.06, 0.09) + env.RateDelta - discount
	lbo := Structure{
		Kind:         StructLBO,
		CashRequired: price * (1 - lboBankPct - lboNotePct),
		BankDebt:     opco.Debt{Balance: price * lboBankPct, Rate: clampRate(lboBankRate), TermLeft: s.IntBetween(5, 8)},
		SellerNote:   opco.Debt{Balance: price * lboNotePct, Rate: clampRate(lboNoteRate), TermLeft: s.IntBetween(4, 6)},
		RiskTier:     4,
	}
	if !env.CreditTight {
		out = append(out, lbo)
	}

	// Rollover equity: seller keeps a stake, taken out of the sale price;
	// the retained share comes back out of any future exit proceeds.
	rollPct := s.Float(0.20, 0.35)
	out = append(out, Structure{
		Kind:         StructRollover,
		CashRequired: price * (1 - rollPct),
		RolloverPct:  rollPct,
		RiskTier:     2,
	})

	return out
}

func clampRate(r float64) float64 {
	if r < 0.01 {
		return 0.01
	}
	if r > 0.20 {
		return 0.20
	}
	return r
}
