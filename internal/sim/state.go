package sim

import (
	"github.com/peterkang34/holdco-tycoon-sub003/internal/config"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/deal"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/event"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/finance"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/rng"
)

// Phase is the position within the annual cycle.
type Phase int

const (
	PhaseCollect Phase = iota
	PhaseEvent
	PhaseAllocate
	PhaseRestructure
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseCollect:
		return "collect"
	case PhaseEvent:
		return "event"
	case PhaseAllocate:
		return "allocate"
	case PhaseRestructure:
		return "restructure"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// GameState is the full simulation state for one game. It is mutated only
// by the action/transition methods in this package, one at a time; the
// orchestration layer serializes access per game.
type GameState struct {
	Seed  uint32 `json:"seed"`
	Round int    `json:"round"`
	Phase Phase  `json:"phase"`

	Cash       float64   `json:"cash"`
	HoldcoLoan opco.Debt `json:"holdco_loan"`

	SharesOutstanding float64 `json:"shares_outstanding"`
	FounderShares     float64 `json:"founder_shares"`

	Businesses []*opco.Business `json:"businesses"`
	Pipeline   []*deal.Deal     `json:"pipeline"`

	// PendingEvent is a drawn choice event awaiting the player. Nothing
	// else blocks the event phase.
	PendingEvent *event.Event `json:"pending_event,omitempty"`
	EventLog     []event.Event `json:"event_log"`

	Focus        deal.Focus   `json:"focus"`
	Capabilities Capabilities `json:"capabilities"`

	// Macro environment, shifted by events.
	MarketMod         float64 `json:"market_mod"`  // valuation modifier
	RateDelta         float64 `json:"rate_delta"`  // applied to quoted rates
	DealFlowMod       float64 `json:"deal_flow_mod"`
	CreditTightRounds int     `json:"credit_tight_rounds"`

	CovenantBreaches int  `json:"covenant_breaches"`
	Restructured     bool `json:"restructured"`
	Bankrupt         bool `json:"bankrupt"`

	// Per-round sourcing occurrence counters; reset when the round advances.
	SourceCount   int `json:"source_count"`
	OutreachCount int `json:"outreach_count"`

	StartingCapital float64 `json:"starting_capital"`
	InvestedCapital float64 `json:"invested_capital"`
	ContributedEquity float64 `json:"contributed_equity"`
	LastRoundFCF    float64 `json:"last_round_fcf"`

	History []RoundHistoryEntry `json:"history"`

	// Scratch totals for the round in progress; folded into History when
	// the round completes.
	RoundDealsAcquired   int     `json:"round_deals_acquired"`
	RoundAcquisitionSpend float64 `json:"round_acquisition_spend"`
	RoundDebtService     float64 `json:"round_debt_service"`
	RoundTax             float64 `json:"round_tax"`
	RoundFCF             float64 `json:"round_fcf"`
	RoundEventType       string  `json:"round_event_type"`
	RoundShortfall       bool    `json:"round_shortfall"`

	Balance config.Balance `json:"balance"`
}

// NewGameState builds round-1 state for a master seed. The game opens in
// the collect phase; with no businesses yet the first collection is a
// no-op, which keeps every round's shape identical.
func NewGameState(seed uint32, balance config.Balance) *GameState {
	return &GameState{
		Seed:              seed,
		Round:             1,
		Phase:             PhaseCollect,
		Cash:              balance.StartingCash,
		SharesOutstanding: balance.SharesOutstanding,
		FounderShares:     balance.FounderShares,
		StartingCapital:   balance.StartingCash,
		ContributedEquity: balance.StartingCash,
		Balance:           balance,
	}
}

// streams derives this round's stream set fresh. Consumers either fork by
// a key unique within the round or consume a whole stream in a single
// call, so re-deriving is always safe: fork keys alone (never leftover
// stream positions) carry the determinism.
func (g *GameState) streams() *rng.RoundStreams {
	return rng.StreamsFor(g.Seed, g.Round)
}

// CreditTight reports whether credit-tightening is in force this round.
func (g *GameState) CreditTight() bool {
	return g.CreditTightRounds > 0
}

// PortfolioEBITDA is the consolidated active-business EBITDA.
func (g *GameState) PortfolioEBITDA() float64 {
	return opco.ActiveTotalEBITDA(g.Businesses)
}

// TotalDebt is holdco loan plus all live acquisition debt.
func (g *GameState) TotalDebt() float64 {
	return g.HoldcoLoan.Balance + opco.TotalAcquisitionDebt(g.Businesses)
}

// Leverage is the covenant ratio: total debt over portfolio EBITDA.
func (g *GameState) Leverage() float64 {
	return finance.LeverageRatio(g.TotalDebt(), g.PortfolioEBITDA())
}

// NetWorth is cash plus portfolio enterprise value less total debt.
func (g *GameState) NetWorth() float64 {
	equity := g.Cash
	for _, b := range g.Businesses {
		if b.Active() {
			equity += finance.ExitValuation(finance.BusinessExitInputs(b, g.Round, g.MarketMod))
		}
	}
	return equity - g.TotalDebt()
}

// Metrics derives the reporting snapshot from current state.
func (g *GameState) Metrics() finance.Metrics {
	recentInvested, recentGain := g.trailingInvestment(3)
	return finance.ComputeMetrics(finance.MetricsInputs{
		Cash:              g.Cash,
		Businesses:        g.Businesses,
		HoldcoLoan:        g.HoldcoLoan,
		SharesOutstanding: g.SharesOutstanding,
		Round:             g.Round,
		MarketMod:         g.MarketMod,
		LastRoundFCF:      g.LastRoundFCF,
		InvestedCapital:   g.InvestedCapital,
		RecentInvested:    recentInvested,
		RecentEBITDAGain:  recentGain,
		CovenantBreaches:  g.CovenantBreaches,
		Restructured:      g.Restructured,
	})
}

// trailingInvestment sums acquisition spend and the portfolio EBITDA gain
// over the last n completed rounds, the ROIIC window.
func (g *GameState) trailingInvestment(n int) (invested, ebitdaGain float64) {
	h := g.History
	if len(h) == 0 {
		return 0, 0
	}
	start := len(h) - n
	if start < 0 {
		start = 0
	}
	for _, e := range h[start:] {
		invested += e.AcquisitionSpend
	}
	ebitdaGain = g.PortfolioEBITDA() - h[start].PortfolioEBITDA
	return invested, ebitdaGain
}

// businessByID finds a live record; nil when absent.
func (g *GameState) businessByID(id string) *opco.Business {
	return opco.ByID(g.Businesses, id)
}

// dealByID finds a pipeline deal and its index; nil, -1 when absent.
func (g *GameState) dealByID(id string) (*deal.Deal, int) {
	for i, d := range g.Pipeline {
		if d.ID == id {
			return d, i
		}
	}
	return nil, -1
}

func (g *GameState) removeDeal(idx int) {
	g.Pipeline = append(g.Pipeline[:idx], g.Pipeline[idx+1:]...)
}

// costProfile maps capability tiers onto the waterfall's cost rates.
func (g *GameState) costProfile() finance.CostProfile {
	ops := g.Capabilities.Operations
	cp := finance.CostProfile{
		CapexDiscount:   float64(ops) * opsCapexDiscountPerTier,
		OverheadPerOpCo: g.Balance.OverheadPerOpCo * (1 - float64(ops)*opsOverheadDiscountPerTier),
	}
	if g.Focus != (deal.Focus{}) {
		cp.SourcingOverhead = sourcingOverheadBase * (1 - float64(g.Capabilities.Sourcing)*sourcingOverheadDiscountPerTier)
	}
	return cp
}

// financingEnv is the current quote environment for deal structures.
func (g *GameState) financingEnv() deal.FinancingEnv {
	return deal.FinancingEnv{
		CreditTight: g.CreditTight(),
		RateDelta:   g.RateDelta,
		FinanceTier: g.Capabilities.Finance,
	}
}

// pipelineParams is the current deal-generation environment.
func (g *GameState) pipelineParams() deal.PipelineParams {
	return deal.PipelineParams{
		Round:        g.Round,
		Focus:        g.Focus,
		SourcingTier: g.Capabilities.Sourcing,
		MarketHeat:   g.DealFlowMod,
		CreditTight:  g.CreditTight(),
	}
}
