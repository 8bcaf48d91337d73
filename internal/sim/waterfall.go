package sim

import (
	"github.com/peterkang34/holdco-tycoon-sub003/internal/finance"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
)

// WaterfallResult summarizes one collection pass for history and display.
type WaterfallResult struct {
	PreTaxFCF float64 `json:"pre_tax_fcf"`
	Tax       float64 `json:"tax"`

	HoldcoPaid     float64 `json:"holdco_paid"`
	OpCoInterest   float64 `json:"opco_interest"`
	OpCoPrincipal  float64 `json:"opco_principal"`
	EarnOutPaid    float64 `json:"earn_out_paid"`
	EarnOutForfeit float64 `json:"earn_out_forfeit"`

	Shortfall bool `json:"shortfall"`
}

// runWaterfall applies the round's collection sequence against the cash
// balance, in strict order: FCF, tax, holdco loan, per-business seller
// note then bank debt in insertion order, earn-outs. Debt payments are
// capped at available cash, interest first; balances fall only by the
// principal actually paid. Cash is floored at zero at the end; a negative
// pre-floor balance or any short payment flags the shortfall.
func (g *GameState) runWaterfall() WaterfallResult {
	var res WaterfallResult

	// (a) pre-tax free cash flow.
	res.PreTaxFCF = finance.PortfolioPreTaxFCF(g.Businesses, g.costProfile())
	g.Cash += res.PreTaxFCF

	// (b) tax on EBITDA net of loss shields, interest, shared services.
	holdcoInterest, _ := finance.AmortizationDue(g.HoldcoLoan)
	opcoInterest := 0.0
	for _, b := range g.Businesses {
		if !b.CarriesDebt() {
			continue
		}
		i1, _ := finance.AmortizationDue(b.SellerNote)
		i2, _ := finance.AmortizationDue(b.BankDebt)
		opcoInterest += i1 + i2
	}
	active := opco.ActiveBusinesses(g.Businesses)
	res.Tax = finance.PortfolioTax(finance.TaxInputs{
		Businesses:     g.Businesses,
		InterestHoldco: holdcoInterest,
		InterestOpCo:   opcoInterest,
		SharedServices: g.costProfile().OverheadPerOpCo * float64(len(active)),
		Rate:           g.Balance.TaxRate,
	})
	g.Cash -= res.Tax

	// (c) holdco loan.
	if g.HoldcoLoan.Outstanding() {
		p := finance.ServiceDebt(&g.HoldcoLoan, available(g.Cash))
		g.Cash -= p.Total()
		res.HoldcoPaid += p.Total()
		res.Shortfall = res.Shortfall || p.Short
	}

	// (d) per-business acquisition debt, insertion order, note before bank.
	for _, b := range g.Businesses {
		if !b.CarriesDebt() {
			continue
		}
		if b.SellerNote.Outstanding() {
			p := finance.ServiceDebt(&b.SellerNote, available(g.Cash))
			g.Cash -= p.Total()
			res.OpCoInterest += p.Interest
			res.OpCoPrincipal += p.Principal
			res.Shortfall = res.Shortfall || p.Short
		}
		if b.BankDebt.Outstanding() {
			p := finance.ServiceDebt(&b.BankDebt, available(g.Cash))
			g.Cash -= p.Total()
			res.OpCoInterest += p.Interest
			res.OpCoPrincipal += p.Principal
			res.Shortfall = res.Shortfall || p.Short
		}
	}

	// (e) earn-outs: paid in full once the growth target is met, carried
	// while the window is open, forfeited entirely when it closes unmet.
	for _, b := range g.Businesses {
		if !b.CarriesDebt() || !b.EarnOut.Outstanding() {
			continue
		}
		if b.RealizedGrowth() >= b.EarnOut.TargetGrowth {
			pay := b.EarnOut.Balance
			avail := available(g.Cash)
			if pay > avail {
				pay = avail
				res.Shortfall = true
			}
			b.EarnOut.Balance -= pay
			g.Cash -= pay
			res.EarnOutPaid += pay
			continue
		}
		b.EarnOut.RoundsLeft--
		if b.EarnOut.RoundsLeft <= 0 {
			res.EarnOutForfeit += b.EarnOut.Balance
			b.EarnOut.Balance = 0
		}
	}

	if g.Cash < 0 {
		res.Shortfall = true
		g.Cash = 0
	}

	g.LastRoundFCF = res.PreTaxFCF - res.Tax
	g.RoundFCF = res.PreTaxFCF
	g.RoundTax = res.Tax
	g.RoundDebtService = res.HoldcoPaid + res.OpCoInterest + res.OpCoPrincipal + res.EarnOutPaid
	g.RoundShortfall = res.Shortfall
	return res
}

// available floors the spendable balance at zero: FCF and tax can push the
// running balance negative mid-waterfall, but debt never draws on cash
// that is not there.
func available(cash float64) float64 {
	if cash < 0 {
		return 0
	}
	return cash
}
