package sim

import (
	"github.com/peterkang34/holdco-tycoon-sub003/internal/deal"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/event"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
)

// Phase transitions. Each transition executes as one atomic step: all of
// its RNG draws happen inside it, in fixed order, so a given seed and
// action sequence always replays identically.

// stepCollect runs collect → event: the collection waterfall, then either
// the event draw or the escape into restructuring. A shortfall after the
// player has already restructured once is terminal bankruptcy.
func (g *GameState) stepCollect() {
	res := g.runWaterfall()

	forced := res.Shortfall || g.CovenantBreaches >= g.Balance.CovenantGraceRounds
	if forced {
		if g.Restructured {
			g.declareBankruptcy()
			return
		}
		g.Phase = PhaseRestructure
		return
	}

	g.enterEvent()
}

// enterEvent draws the round's event and applies immediate effects. Both
// collect→event and restructure→event arrive here, so a restructured round
// faces the same draw it would have faced directly.
func (g *GameState) enterEvent() {
	e := event.Draw(g.streams().Events, event.Context{
		Round:       g.Round,
		Businesses:  g.Businesses,
		CreditTight: g.CreditTight(),
		MarketMod:   g.MarketMod,
		Leverage:    g.Leverage(),
	})
	g.RoundEventType = e.Type
	g.EventLog = append(g.EventLog, e)

	if e.Mode == event.ModeChoice {
		g.PendingEvent = &e
	} else {
		g.applyEffects(e.Effects, e.TargetID)
	}
	g.Phase = PhaseEvent
}

// stepEvent runs event → allocate: expires stale pipeline deals and
// regenerates this round's inbound flow. Blocked while a choice event is
// unresolved; the engine never applies a default choice.
func (g *GameState) stepEvent() bool {
	if g.PendingEvent != nil {
		return false
	}

	kept := g.Pipeline[:0]
	for _, d := range g.Pipeline {
		if !d.Expire() {
			kept = append(kept, d)
		}
	}
	g.Pipeline = kept

	st := g.streams()
	g.Pipeline = append(g.Pipeline, deal.GeneratePipeline(st.Deals, st.Cosmetic, g.pipelineParams())...)
	g.Phase = PhaseAllocate
	return true
}

// stepAllocate runs allocate → collect: organic growth, covenant tracking,
// round advance, end-condition checks.
func (g *GameState) stepAllocate() {
	g.applyOrganicGrowth()
	g.recordRound()
	g.trackCovenant()

	if g.CreditTightRounds > 0 {
		g.CreditTightRounds--
	}
	g.SourceCount = 0
	g.OutreachCount = 0
	g.RoundDealsAcquired = 0
	g.RoundAcquisitionSpend = 0
	g.RoundEventType = ""

	g.Round++
	if g.Round > g.Balance.MaxRounds {
		g.Phase = PhaseOver
		return
	}
	g.Phase = PhaseCollect
}

// applyOrganicGrowth advances every active business one year. Each
// business draws from its own fork of the simulation stream, keyed by ID,
// so portfolio composition never shifts a neighbor's draw.
func (g *GameState) applyOrganicGrowth() {
	sim := g.streams().Simulation
	for _, b := range g.Businesses {
		if !b.Active() {
			continue
		}
		s := sim.Fork("grow-" + b.ID)
		rate := b.Growth + g.MarketMod*0.02 + s.Float(-0.02, 0.02)
		b.ApplyGrowth(rate)
	}
}

// trackCovenant advances the breach counter: leverage above the covenant
// threshold increments it, a compliant round resets it.
func (g *GameState) trackCovenant() {
	if g.Leverage() > g.Balance.CovenantMaxLeverage {
		g.CovenantBreaches++
	} else {
		g.CovenantBreaches = 0
	}
}

func (g *GameState) recordRound() {
	g.History = append(g.History, RoundHistoryEntry{
		Round:            g.Round,
		Cash:             g.Cash,
		PortfolioEBITDA:  g.PortfolioEBITDA(),
		NetWorth:         g.NetWorth(),
		FCF:              g.RoundFCF,
		Tax:              g.RoundTax,
		DebtService:      g.RoundDebtService,
		EventType:        g.RoundEventType,
		DealsAcquired:    g.RoundDealsAcquired,
		AcquisitionSpend: g.RoundAcquisitionSpend,
		Shortfall:        g.RoundShortfall,
		Leverage:         g.Leverage(),
	})
	g.RoundShortfall = false
	g.RoundFCF = 0
	g.RoundTax = 0
	g.RoundDebtService = 0
}

func (g *GameState) declareBankruptcy() {
	g.Bankrupt = true
	g.Phase = PhaseOver
}

// applyEffects is the only code that turns an EffectSet into state change.
func (g *GameState) applyEffects(fx event.EffectSet, targetID string) {
	if fx.Zero() {
		return
	}

	g.Cash += fx.CashDelta
	if g.Cash < 0 {
		g.Cash = 0
	}

	if fx.GlobalEBITDAPct != 0 {
		for _, b := range g.Businesses {
			if b.Active() {
				scaleEBITDA(b, fx.GlobalEBITDAPct)
			}
		}
	}
	if fx.SectorEBITDAPct != 0 && fx.Sector != "" {
		for _, b := range g.Businesses {
			if b.Active() && b.Sector == fx.Sector {
				scaleEBITDA(b, fx.SectorEBITDAPct)
			}
		}
	}

	if targetID != "" {
		if b := g.businessByID(targetID); b != nil && b.Active() {
			if fx.TargetEBITDAPct != 0 {
				scaleEBITDA(b, fx.TargetEBITDAPct)
			}
			if fx.TargetQualityDelta != 0 {
				b.Quality += fx.TargetQualityDelta
				if b.Quality < 1 {
					b.Quality = 1
				}
				if b.Quality > 5 {
					b.Quality = 5
				}
			}
			b.Growth += fx.TargetGrowthDelta
			if fx.TargetSellerNoteMul != 0 {
				b.SellerNote.Balance *= fx.TargetSellerNoteMul
			}
		}
	}

	g.RateDelta += fx.RateDelta
	if fx.CreditTightRounds > g.CreditTightRounds {
		g.CreditTightRounds = fx.CreditTightRounds
	}
	g.MarketMod = clamp(g.MarketMod+fx.MarketModDelta, -1, 1)
	g.DealFlowMod = clamp(g.DealFlowMod+fx.DealFlowDelta, -1, 1)
}

// scaleEBITDA shifts a business's EBITDA by a fraction, folding the shift
// into margin so Revenue*Margin stays consistent for growth recomputation.
func scaleEBITDA(b *opco.Business, pct float64) {
	b.EBITDA *= 1 + pct
	if b.Revenue > 0 {
		b.Margin = b.EBITDA / b.Revenue
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
