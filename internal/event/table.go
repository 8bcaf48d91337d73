package event

import (
	"fmt"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/rng"
)

// Context is the draw-time view of game state. Eligibility filters run
// against this, not against anything captured at definition time.
type Context struct {
	Round       int
	Businesses  []*opco.Business
	CreditTight bool
	MarketMod   float64
	Leverage    float64
}

func (c Context) active() []*opco.Business {
	return opco.ActiveBusinesses(c.Businesses)
}

// recentLevered returns active businesses acquired within the window that
// still carry acquisition debt.
func (c Context) recentLevered(window int) []*opco.Business {
	var out []*opco.Business
	for _, b := range c.active() {
		if c.Round-b.AcquiredRound <= window && b.TotalDebt() > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Definition is one row of the probability table.
type Definition struct {
	Type     string
	Category Category
	Weight   float64
	// Eligible filters on current state; nil means always eligible.
	Eligible func(ctx Context) bool
	// Build draws the event's specifics. It receives a fork of the events
	// stream keyed by the event type, so one definition's draws never shift
	// a sibling's.
	Build func(s *rng.Stream, ctx Context) Event
}

// Table is the fixed, ordered probability table. Order matters: the
// weighted pick iterates it, so reordering rows is a determinism break.
var Table = []Definition{
	{
		Type: "rate_hike", Category: CategoryMacro, Weight: 8,
		Build: func(s *rng.Stream, ctx Context) Event {
			return Event{Effects: EffectSet{
				RateDelta:      s.Float(0.010, 0.020),
				MarketModDelta: -0.3,
			}}
		},
	},
	{
		Type: "rate_cut", Category: CategoryMacro, Weight: 6,
		Build: func(s *rng.Stream, ctx Context) Event {
			return Event{Effects: EffectSet{
				RateDelta:      -s.Float(0.005, 0.015),
				MarketModDelta: 0.2,
			}}
		},
	},
	{
		Type: "credit_tightening", Category: CategoryMacro, Weight: 6,
		Eligible: func(ctx Context) bool { return !ctx.CreditTight },
		Build: func(s *rng.Stream, ctx Context) Event {
			return Event{Effects: EffectSet{
				CreditTightRounds: s.IntBetween(2, 4),
				MarketModDelta:    -0.2,
			}}
		},
	},
	{
		Type: "bull_market", Category: CategoryMacro, Weight: 7,
		Build: func(s *rng.Stream, ctx Context) Event {
			return Event{Effects: EffectSet{
				MarketModDelta: s.Float(0.3, 0.6),
				DealFlowDelta:  0.3,
			}}
		},
	},
	{
		Type: "recession", Category: CategoryMacro, Weight: 5,
		Eligible: func(ctx Context) bool { return ctx.Round >= 3 },
		Build: func(s *rng.Stream, ctx Context) Event {
			return Event{Effects: EffectSet{
				GlobalEBITDAPct: -s.Float(0.05, 0.12),
				MarketModDelta:  -0.5,
			}}
		},
	},
	{
		Type: "sector_boom", Category: CategoryMacro, Weight: 6,
		Build: func(s *rng.Stream, ctx Context) Event {
			sector := rng.Pick(s, opco.Sectors)
			return Event{Effects: EffectSet{
				Sector:          sector,
				SectorEBITDAPct: s.Float(0.06, 0.14),
				DealFlowDelta:   0.2,
			}}
		},
	},
	{
		Type: "contract_win", Category: CategoryPortfolio, Weight: 7,
		Eligible: func(ctx Context) bool { return len(ctx.active()) > 0 },
		Build: func(s *rng.Stream, ctx Context) Event {
			b := rng.Pick(s, ctx.active())
			return Event{
				TargetID: b.ID, TargetName: b.Name,
				Effects: EffectSet{TargetEBITDAPct: s.Float(0.08, 0.16)},
			}
		},
	},
	{
		Type: "margin_squeeze", Category: CategoryPortfolio, Weight: 7,
		Eligible: func(ctx Context) bool { return len(ctx.active()) > 0 },
		Build: func(s *rng.Stream, ctx Context) Event {
			b := rng.Pick(s, ctx.active())
			return Event{
				TargetID: b.ID, TargetName: b.Name,
				Effects: EffectSet{TargetEBITDAPct: -s.Float(0.05, 0.12)},
			}
		},
	},
	{
		Type: "key_customer_loss", Category: CategoryPortfolio, Weight: 6,
		Eligible: func(ctx Context) bool { return len(ctx.active()) > 0 },
		Build: func(s *rng.Stream, ctx Context) Event {
			b := rng.Pick(s, ctx.active())
			winBackCost := roundTo(b.EBITDA*0.08, 5)
			return Event{
				TargetID: b.ID, TargetName: b.Name,
				Choices: []Choice{
					{
						ID: "win_back", Label: "Fly out and win them back",
						Cost: winBackCost, SuccessProb: 0.60,
						Failure: EffectSet{TargetEBITDAPct: -0.15},
					},
					{
						ID: "absorb", Label: "Let them go, cut costs",
						Cost: 0, SuccessProb: 1,
						Success: EffectSet{TargetEBITDAPct: -0.10},
					},
				},
			}
		},
	},
	{
		Type: "operator_exit", Category: CategoryPortfolio, Weight: 5,
		Eligible: func(ctx Context) bool { return len(ctx.active()) > 0 },
		Build: func(s *rng.Stream, ctx Context) Event {
			b := rng.Pick(s, ctx.active())
			pkg := roundTo(b.EBITDA*0.10, 5)
			return Event{
				TargetID: b.ID, TargetName: b.Name,
				Choices: []Choice{
					{
						ID: "retention", Label: "Offer a retention package",
						Cost: pkg, SuccessProb: 0.75,
						Failure: EffectSet{TargetQualityDelta: -1, TargetGrowthDelta: -0.02},
					},
					{
						ID: "promote", Label: "Promote from within",
						Cost: pkg * 0.3, SuccessProb: 0.45,
						Success: EffectSet{TargetQualityDelta: 1},
						Failure: EffectSet{TargetQualityDelta: -1, TargetGrowthDelta: -0.01},
					},
					{
						ID: "let_go", Label: "Wish them well",
						Cost: 0, SuccessProb: 1,
						Success: EffectSet{TargetQualityDelta: -1, TargetGrowthDelta: -0.02},
					},
				},
			}
		},
	},
	{
		Type: "equipment_failure", Category: CategoryPortfolio, Weight: 5,
		Eligible: func(ctx Context) bool {
			for _, b := range ctx.active() {
				if b.Sector == opco.SectorManufacturing || b.Sector == opco.SectorLogistics {
					return true
				}
			}
			return false
		},
		Build: func(s *rng.Stream, ctx Context) Event {
			var heavy []*opco.Business
			for _, b := range ctx.active() {
				if b.Sector == opco.SectorManufacturing || b.Sector == opco.SectorLogistics {
					heavy = append(heavy, b)
				}
			}
			b := rng.Pick(s, heavy)
			replaceCost := roundTo(b.EBITDA*0.20, 10)
			return Event{
				TargetID: b.ID, TargetName: b.Name,
				Choices: []Choice{
					{
						ID: "replace", Label: "Replace the line now",
						Cost: replaceCost, SuccessProb: 1,
						Success: EffectSet{TargetQualityDelta: 1},
					},
					{
						ID: "patch", Label: "Patch it and run",
						Cost: replaceCost * 0.25, SuccessProb: 0.55,
						Failure: EffectSet{TargetEBITDAPct: -0.12},
					},
					{
						ID: "idle", Label: "Idle the line this year",
						Cost: 0, SuccessProb: 1,
						Success: EffectSet{TargetEBITDAPct: -0.08},
					},
				},
			}
		},
	},
	{
		Type: "seller_dispute", Category: CategoryPortfolio, Weight: 4,
		// Only recently acquired businesses still carrying acquisition debt
		// can be disputed; evaluated against state at draw time.
		Eligible: func(ctx Context) bool { return len(ctx.recentLevered(3)) > 0 },
		Build: func(s *rng.Stream, ctx Context) Event {
			b := rng.Pick(s, ctx.recentLevered(3))
			settle := roundTo(b.SellerNote.Balance*0.10+b.EBITDA*0.05, 5)
			return Event{
				TargetID: b.ID, TargetName: b.Name,
				Choices: []Choice{
					{
						ID: "settle", Label: "Settle the dispute",
						Cost: settle, SuccessProb: 1,
						Success: EffectSet{TargetSellerNoteMul: 0.95},
					},
					{
						ID: "fight", Label: "Fight it in court",
						Cost: settle * 0.3, SuccessProb: 0.50,
						Success: EffectSet{TargetSellerNoteMul: 0.75},
						Failure: EffectSet{CashDelta: -settle * 2},
					},
					{
						ID: "concede", Label: "Concede the point",
						Cost: 0, SuccessProb: 1,
						Success: EffectSet{TargetSellerNoteMul: 1.05},
					},
				},
			}
		},
	},
	{
		Type: "quiet_year", Category: CategoryQuiet, Weight: 10,
		Build: func(s *rng.Stream, ctx Context) Event {
			return Event{}
		},
	},
}

// Draw selects and builds one event for the round. The weighted pick and
// every definition's internal draws consume forks of the events stream, in
// table order, so adding state-dependent eligibility never shifts an
// unrelated definition's output.
func Draw(events *rng.Stream, ctx Context) Event {
	weights := make([]float64, len(Table))
	for i, def := range Table {
		if def.Eligible == nil || def.Eligible(ctx) {
			weights[i] = def.Weight
		}
	}

	idx := rng.WeightedPick(events, weights)
	def := Table[idx]

	e := def.Build(events.Fork("build-"+def.Type), ctx)
	e.ID = fmt.Sprintf("evt-r%d-%s", ctx.Round, def.Type)
	e.Type = def.Type
	e.Category = def.Category
	e.Round = ctx.Round
	if len(e.Choices) > 0 {
		e.Mode = ModeChoice
	}
	return e
}

// ResolveChoice rolls a selected choice's outcome. The caller pays the cost
// and applies the returned effects; success is reported for narration.
func ResolveChoice(e *Event, c *Choice, roll *rng.Stream) (EffectSet, bool) {
	if roll.Chance(c.SuccessProb) {
		return c.Success, true
	}
	return c.Failure, false
}

func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	n := int(v/step + 0.5)
	return float64(n) * step
}
