package sim

import (
	"github.com/peterkang34/holdco-tycoon-sub003/internal/deal"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/event"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/finance"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
)

// Action is one decoded player decision.
type Action struct {
	Type string `json:"type"`

	DealID     string `json:"deal_id,omitempty"`
	Structure  string `json:"structure,omitempty"` // deal.StructureKind string form
	BusinessID string `json:"business_id,omitempty"`
	PlatformID string `json:"platform_id,omitempty"`
	Track      string `json:"track,omitempty"`
	ChoiceID   string `json:"choice_id,omitempty"`
	Amount     float64 `json:"amount,omitempty"`

	FocusSector string `json:"focus_sector,omitempty"`
	FocusSize   string `json:"focus_size,omitempty"`
}

// Result reports an action's outcome. Invalid actions never error or
// mutate state; they come back with OK false and a reason for the UI.
type Result struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

func ok(outcome string) Result    { return Result{OK: true, Outcome: outcome} }
func reject(reason string) Result { return Result{Reason: reason} }

// Apply dispatches one action against the state. This is the single entry
// point for both the HTTP layer and the montecarlo harness.
func (g *GameState) Apply(a Action) Result {
	if g.Phase == PhaseOver {
		return reject("game over")
	}

	switch a.Type {
	case "advance":
		return g.Advance()
	case "acquire":
		return g.Acquire(a.DealID, a.Structure)
	case "pass_deal":
		return g.PassDeal(a.DealID)
	case "sell":
		return g.Sell(a.BusinessID)
	case "merge":
		return g.Merge(a.BusinessID, a.PlatformID)
	case "improve":
		return g.Improve(a.Track)
	case "set_focus":
		return g.SetFocus(a.FocusSector, a.FocusSize)
	case "source_deals":
		return g.SourceDeals()
	case "founder_outreach":
		return g.FounderOutreach()
	case "raise_equity":
		return g.RaiseEquity(a.Amount)
	case "buy_back":
		return g.BuyBack(a.Amount)
	case "take_loan":
		return g.TakeLoan(a.Amount)
	case "repay_loan":
		return g.RepayLoan(a.Amount)
	case "resolve_event":
		return g.ResolveEvent(a.ChoiceID)
	case "restructure_sell":
		return g.RestructureSell(a.BusinessID)
	case "restructure_raise":
		return g.RestructureRaise(a.Amount)
	case "declare_bankruptcy":
		return g.DeclareBankruptcy()
	default:
		return reject("unknown action")
	}
}

// Advance moves the phase machine one step forward.
func (g *GameState) Advance() Result {
	switch g.Phase {
	case PhaseCollect:
		g.stepCollect()
		return ok(g.Phase.String())
	case PhaseEvent:
		if !g.stepEvent() {
			return reject("event awaiting choice")
		}
		return ok(g.Phase.String())
	case PhaseAllocate:
		g.stepAllocate()
		return ok(g.Phase.String())
	case PhaseRestructure:
		return reject("corrective action required")
	default:
		return reject("game over")
	}
}

// Acquire buys a pipeline deal under one of its quoted structures. A
// contested sourced deal first survives the snatch roll; losing it
// consumes the deal without granting the business.
func (g *GameState) Acquire(dealID, structure string) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	d, idx := g.dealByID(dealID)
	if d == nil {
		return reject("unknown deal")
	}
	st, found := findStructure(d, g.financingEnv(), structure)
	if !found {
		return reject("structure unavailable")
	}
	if st.CashRequired > g.Cash {
		return reject("insufficient cash")
	}

	if d.Sourced && d.Heat == deal.HeatContested {
		roll := g.streams().Deals.Fork("snatch-" + d.ID)
		if roll.Chance(deal.SnatchProbability) {
			g.removeDeal(idx)
			return ok("outbid")
		}
	}

	b := d.Target // value snapshot becomes the owned record
	b.AcquiredRound = g.Round
	b.AcquiredPrice = d.AskingPrice
	b.AcquiredEBITDA = b.EBITDA
	b.SellerNote = st.SellerNote
	b.BankDebt = st.BankDebt
	b.EarnOut = st.EarnOut
	b.RolloverPct = st.RolloverPct

	g.Cash -= st.CashRequired
	g.InvestedCapital += st.CashRequired
	g.RoundAcquisitionSpend += st.CashRequired
	g.RoundDealsAcquired++
	g.Businesses = append(g.Businesses, &b)
	g.removeDeal(idx)
	return ok("acquired")
}

func findStructure(d *deal.Deal, env deal.FinancingEnv, name string) (deal.Structure, bool) {
	for _, st := range deal.Structures(d, env) {
		if st.Kind.String() == name {
			return st, true
		}
	}
	return deal.Structure{}, false
}

// PassDeal drops a deal from the pipeline without acquiring it.
func (g *GameState) PassDeal(dealID string) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	if _, idx := g.dealByID(dealID); idx >= 0 {
		g.removeDeal(idx)
		return ok("passed")
	}
	return reject("unknown deal")
}

// Sell exits an active business at its exit valuation less the
// transaction-cost haircut. Outstanding acquisition debt settles from the
// proceeds; a rollover seller takes their retained share of the equity.
func (g *GameState) Sell(businessID string) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	return g.sellAt(businessID, 1-g.Balance.TransactionCostPct)
}

func (g *GameState) sellAt(businessID string, haircut float64) Result {
	b := g.businessByID(businessID)
	if b == nil || !b.Active() {
		return reject("unknown or inactive business")
	}

	proceeds := finance.ExitValuation(finance.BusinessExitInputs(b, g.Round, g.MarketMod)) * haircut
	equity := proceeds - b.TotalDebt() - b.EarnOut.Balance
	if equity < 0 {
		equity = 0
	}
	equity *= 1 - b.RolloverPct

	b.SellerNote = opco.Debt{}
	b.BankDebt = opco.Debt{}
	b.EarnOut = opco.EarnOut{}
	b.Status = opco.StatusSold
	g.Cash += equity
	return ok("sold")
}

// Merge folds an active business into a platform as a bolt-on: EBITDA
// consolidates with a synergy bump, the bolt-on's debt schedule keeps
// amortizing under the platform, and a one-time integration cost is paid.
func (g *GameState) Merge(boltOnID, platformID string) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	bolt := g.businessByID(boltOnID)
	plat := g.businessByID(platformID)
	if bolt == nil || plat == nil || bolt == plat || !bolt.Active() || !plat.Active() {
		return reject("invalid merge pair")
	}

	cost := g.Balance.IntegrationCostPct * bolt.AcquiredPrice
	cost *= 1 - float64(g.Capabilities.MA)*maIntegrationDiscountPerTier
	if cost > g.Cash {
		return reject("insufficient cash")
	}
	g.Cash -= cost

	plat.Revenue += bolt.Revenue
	plat.EBITDA += bolt.EBITDA * (1 + g.Balance.SynergyPct)
	if plat.Revenue > 0 {
		plat.Margin = plat.EBITDA / plat.Revenue
	}
	plat.BoltOnIDs = append(plat.BoltOnIDs, bolt.ID)

	bolt.Status = opco.StatusIntegrated
	bolt.PlatformID = plat.ID
	bolt.Revenue = 0
	bolt.EBITDA = 0
	return ok("merged")
}

// Improve buys the next tier on a capability track.
func (g *GameState) Improve(track string) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	tier := g.Capabilities.Tier(track)
	if tier < 0 {
		return reject("unknown track")
	}
	cost, purchasable := g.Balance.CapabilityCost(tier + 1)
	if !purchasable {
		return reject("track maxed")
	}
	if cost > g.Cash {
		return reject("insufficient cash")
	}
	g.Cash -= cost
	g.Capabilities.bump(track)
	return ok("improved")
}

// SetFocus declares the sourcing focus used by deal generation. Takes
// effect from the next pipeline regeneration.
func (g *GameState) SetFocus(sector, size string) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	f := deal.Focus{}
	if sector != "" {
		valid := false
		for _, s := range opco.Sectors {
			if string(s) == sector {
				valid = true
				break
			}
		}
		if !valid {
			return reject("unknown sector")
		}
		f.Sector = opco.Sector(sector)
	}
	switch size {
	case "", "any":
	case "small":
		f.Size = deal.SizeSmall
	case "mid":
		f.Size = deal.SizeMid
	case "large":
		f.Size = deal.SizeLarge
	default:
		return reject("unknown size band")
	}
	g.Focus = f
	return ok("focus set")
}

// SourceDeals pays for a brokered sourcing batch. The occurrence counter
// feeds the fork key, so a second call in the same round produces a
// financially distinct batch.
func (g *GameState) SourceDeals() Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	if g.Balance.SourcingCost > g.Cash {
		return reject("insufficient cash")
	}
	g.Cash -= g.Balance.SourcingCost

	st := g.streams()
	batch := deal.SourceBatch(st.Deals, st.Cosmetic, g.pipelineParams(), deal.SourceBroker, g.SourceCount)
	g.SourceCount++
	g.Pipeline = append(g.Pipeline, batch...)
	return ok("sourced")
}

// FounderOutreach pays for one hand-picked target matching the focus.
func (g *GameState) FounderOutreach() Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	if g.Balance.OutreachCost > g.Cash {
		return reject("insufficient cash")
	}
	g.Cash -= g.Balance.OutreachCost

	st := g.streams()
	batch := deal.SourceBatch(st.Deals, st.Cosmetic, g.pipelineParams(), deal.SourceOutreach, g.OutreachCount)
	g.OutreachCount++
	g.Pipeline = append(g.Pipeline, batch...)
	return ok("sourced")
}

// RaiseEquity issues new shares at intrinsic value per share. Dilution
// that would push founder ownership under the floor is rejected.
func (g *GameState) RaiseEquity(amount float64) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	return g.raiseAt(amount, 1)
}

func (g *GameState) raiseAt(amount, priceFactor float64) Result {
	if amount <= 0 {
		return reject("amount must be positive")
	}
	pps := g.pricePerShare() * priceFactor
	if pps <= 0 {
		return reject("no intrinsic value to issue against")
	}
	newShares := amount / pps
	if g.FounderShares/(g.SharesOutstanding+newShares) < g.Balance.FounderFloor {
		return reject("founder ownership floor")
	}
	g.SharesOutstanding += newShares
	g.Cash += amount
	g.ContributedEquity += amount
	return ok("raised")
}

// BuyBack retires shares at intrinsic value. Only non-founder shares can
// be repurchased.
func (g *GameState) BuyBack(amount float64) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	if amount <= 0 {
		return reject("amount must be positive")
	}
	if amount > g.Cash {
		return reject("insufficient cash")
	}
	pps := g.pricePerShare()
	if pps <= 0 {
		return reject("no intrinsic value to repurchase at")
	}
	retired := amount / pps
	if g.SharesOutstanding-retired < g.FounderShares {
		return reject("cannot repurchase founder shares")
	}
	g.SharesOutstanding -= retired
	g.Cash -= amount
	return ok("repurchased")
}

// pricePerShare is intrinsic net worth over shares outstanding, floored
// at zero; degenerate cap tables never produce NaN.
func (g *GameState) pricePerShare() float64 {
	if g.SharesOutstanding <= 0 {
		return 0
	}
	nw := g.NetWorth()
	if nw <= 0 {
		return 0
	}
	return nw / g.SharesOutstanding
}

// TakeLoan draws (or refinances upward) the holdco loan. Capacity is a
// multiple of portfolio EBITDA, widened by the finance track; the quote
// reflects the macro rate environment.
func (g *GameState) TakeLoan(amount float64) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	if amount <= 0 {
		return reject("amount must be positive")
	}
	capMultiple := g.Balance.LoanCapMultiple + float64(g.Capabilities.Finance)*financeLoanCapBonusPerTier
	capacity := capMultiple*g.PortfolioEBITDA() - g.HoldcoLoan.Balance
	if amount > capacity {
		return reject("exceeds loan capacity")
	}

	rate := g.Balance.LoanBaseRate + g.RateDelta - float64(g.Capabilities.Finance)*financeRateDiscountPerTier
	if rate < 0.02 {
		rate = 0.02
	}
	g.HoldcoLoan = opco.Debt{
		Balance:  g.HoldcoLoan.Balance + amount,
		Rate:     rate,
		TermLeft: g.Balance.LoanTermRounds,
	}
	g.Cash += amount
	return ok("drawn")
}

// RepayLoan prepays holdco loan principal.
func (g *GameState) RepayLoan(amount float64) Result {
	if g.Phase != PhaseAllocate {
		return reject("not in allocate phase")
	}
	if amount <= 0 {
		return reject("amount must be positive")
	}
	if amount > g.Cash {
		return reject("insufficient cash")
	}
	if amount > g.HoldcoLoan.Balance {
		amount = g.HoldcoLoan.Balance
	}
	if amount == 0 {
		return reject("no loan outstanding")
	}
	g.HoldcoLoan.Balance -= amount
	g.Cash -= amount
	if g.HoldcoLoan.Balance == 0 {
		g.HoldcoLoan = opco.Debt{}
	}
	return ok("repaid")
}

// ResolveEvent settles a pending choice event. The cost is paid up front;
// the outcome rolls on a fork keyed by event and choice, so the order of
// unrelated draws in the round cannot shift it.
func (g *GameState) ResolveEvent(choiceID string) Result {
	if g.Phase != PhaseEvent || g.PendingEvent == nil {
		return reject("no event awaiting choice")
	}
	c := g.PendingEvent.ChoiceByID(choiceID)
	if c == nil {
		return reject("unknown choice")
	}
	if c.Cost > g.Cash {
		return reject("insufficient cash")
	}
	g.Cash -= c.Cost

	roll := g.streams().Events.Fork("choice-" + g.PendingEvent.ID + "-" + c.ID)
	fx, success := event.ResolveChoice(g.PendingEvent, c, roll)
	g.applyEffects(fx, g.PendingEvent.TargetID)
	g.PendingEvent = nil
	if success {
		return ok("choice succeeded")
	}
	return ok("choice failed")
}

// RestructureSell is a distressed exit: the business sells at a deep
// haircut on top of transaction costs, and the phase releases to event.
func (g *GameState) RestructureSell(businessID string) Result {
	if g.Phase != PhaseRestructure {
		return reject("not in restructure phase")
	}
	res := g.sellAt(businessID, (1-g.Balance.TransactionCostPct)*(1-g.Balance.DistressedSalePct))
	if !res.OK {
		return res
	}
	g.exitRestructure()
	return ok("distressed sale")
}

// RestructureRaise is an emergency equity issue at a deep discount to
// intrinsic value. The founder floor still binds; a founder unwilling to
// concede it declares bankruptcy instead.
func (g *GameState) RestructureRaise(amount float64) Result {
	if g.Phase != PhaseRestructure {
		return reject("not in restructure phase")
	}
	res := g.raiseAt(amount, 1-g.Balance.EmergencyRaisePct)
	if !res.OK {
		return res
	}
	g.exitRestructure()
	return ok("emergency raise")
}

// DeclareBankruptcy ends the game from the restructure phase.
func (g *GameState) DeclareBankruptcy() Result {
	if g.Phase != PhaseRestructure {
		return reject("not in restructure phase")
	}
	g.declareBankruptcy()
	return ok("bankrupt")
}

// exitRestructure marks the restructuring consumed and releases the round
// into its event draw, the same draw a healthy collect would have faced.
func (g *GameState) exitRestructure() {
	g.Restructured = true
	g.CovenantBreaches = 0
	g.enterEvent()
}
