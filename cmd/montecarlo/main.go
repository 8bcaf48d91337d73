package main

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/config"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/deal"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/sim"
)

// --- Config ---
const (
	seedsPerStrategy = 2_500
	maxSteps         = 2_000 // hard cap on actions per game
)

type Strategy int

const (
	Conservative Strategy = iota
	Leveraged
	RollUp
	Passive
	strategyCount
)

func (s Strategy) String() string {
	return [...]string{"Conservative", "Leveraged", "RollUp", "Passive"}[s]
}

type gameResult struct {
	strategy     Strategy
	seed         uint32
	grade        string
	moic         float64
	netWorth     float64
	rounds       int
	bankrupt     bool
	restructured bool
	acquisitions int
	peakLeverage float64
	finalEBITDA  float64
}

func main() {
	start := time.Now()
	balance := config.DefaultBalance()

	totalGames := int(strategyCount) * seedsPerStrategy
	results := make([]gameResult, totalGames)

	workers := runtime.GOMAXPROCS(0)
	var progress atomic.Int64
	var wg sync.WaitGroup

	chunkSize := totalGames / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		lo := w * chunkSize
		hi := lo + chunkSize
		if w == workers-1 {
			hi = totalGames
		}
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				strat := Strategy(i / seedsPerStrategy)
				seed := uint32(i%seedsPerStrategy + 1)
				results[i] = playGame(strat, seed, balance)
				if n := progress.Add(1); n%(int64(totalGames)/10) == 0 {
					fmt.Printf("  ... %d/%d games (%.0f%%)\n", n, totalGames, float64(n)/float64(totalGames)*100)
				}
			}
		}(lo, hi)
	}
	wg.Wait()

	elapsed := time.Since(start)
	printReport(results, elapsed)
}

// playGame runs one full game under a scripted strategy. Every decision
// goes through Apply, the same entry point the HTTP layer uses, so the
// harness exercises exactly what players see.
func playGame(strat Strategy, seed uint32, balance config.Balance) gameResult {
	g := sim.NewGameState(seed, balance)

	for step := 0; step < maxSteps && g.Phase != sim.PhaseOver; step++ {
		switch g.Phase {
		case sim.PhaseCollect:
			g.Apply(sim.Action{Type: "advance"})

		case sim.PhaseEvent:
			if g.PendingEvent != nil {
				resolveEvent(g, strat)
			} else {
				g.Apply(sim.Action{Type: "advance"})
			}

		case sim.PhaseAllocate:
			allocate(g, strat)
			g.Apply(sim.Action{Type: "advance"})

		case sim.PhaseRestructure:
			restructure(g)
		}
	}

	score := g.Score()
	res := gameResult{
		strategy:     strat,
		seed:         seed,
		grade:        score.Grade,
		moic:         score.MOIC,
		netWorth:     score.NetWorth,
		rounds:       score.Rounds,
		bankrupt:     score.Bankrupt,
		restructured: score.Restructured,
		finalEBITDA:  g.PortfolioEBITDA(),
	}
	for _, h := range g.History {
		res.acquisitions += h.DealsAcquired
		if h.Leverage > res.peakLeverage {
			res.peakLeverage = h.Leverage
		}
	}
	return res
}

// resolveEvent picks a choice by temperament: cautious strategies take the
// cheapest affordable option, aggressive ones spend for the upside.
func resolveEvent(g *sim.GameState, strat Strategy) {
	e := g.PendingEvent
	best := -1
	for i, c := range e.Choices {
		if c.Cost > g.Cash {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		switch strat {
		case Leveraged, RollUp:
			if c.Cost > e.Choices[best].Cost {
				best = i
			}
		default:
			if c.Cost < e.Choices[best].Cost {
				best = i
			}
		}
	}
	if best < 0 {
		best = 0 // every table event carries a zero-cost option
	}
	g.Apply(sim.Action{Type: "resolve_event", ChoiceID: e.Choices[best].ID})
}

func allocate(g *sim.GameState, strat Strategy) {
	switch strat {
	case Passive:
		return

	case Conservative:
		// All-cash buyer: one deal a year at most, modest reserve kept back.
		if d, st := pickDeal(g, "all_cash", g.Cash*0.6); d != nil {
			g.Apply(sim.Action{Type: "acquire", DealID: d.ID, Structure: st})
		}
		if g.Cash > 200 && g.Capabilities.Operations < 3 {
			g.Apply(sim.Action{Type: "improve", Track: sim.TrackOperations})
		}

	case Leveraged:
		// Draw the loan to capacity, then buy the largest deal leverage
		// will reach.
		if ebitda := g.PortfolioEBITDA(); ebitda > 0 {
			capacity := g.Balance.LoanCapMultiple*ebitda - g.HoldcoLoan.Balance
			if capacity > 50 {
				g.Apply(sim.Action{Type: "take_loan", Amount: capacity * 0.8})
			}
		}
		if len(g.Pipeline) < 2 && g.Cash > g.Balance.SourcingCost*2 {
			g.Apply(sim.Action{Type: "source_deals"})
		}
		for _, kind := range []string{"lbo", "bank_debt", "seller_note"} {
			if d, st := pickDeal(g, kind, g.Cash); d != nil {
				g.Apply(sim.Action{Type: "acquire", DealID: d.ID, Structure: st})
				break
			}
		}
		if g.Cash > 400 && g.Capabilities.Finance < 3 {
			g.Apply(sim.Action{Type: "improve", Track: sim.TrackFinance})
		}

	case RollUp:
		// Sector consolidator: focus services, buy on seller paper, tuck
		// everything into the first platform.
		if g.Round == 1 {
			g.Apply(sim.Action{Type: "set_focus", FocusSector: string(opco.SectorServices), FocusSize: "small"})
		}
		if len(g.Pipeline) < 3 && g.Cash > g.Balance.OutreachCost*2 {
			g.Apply(sim.Action{Type: "founder_outreach"})
		}
		for _, kind := range []string{"seller_note", "earn_out", "all_cash"} {
			if d, st := pickDeal(g, kind, g.Cash*0.8); d != nil {
				g.Apply(sim.Action{Type: "acquire", DealID: d.ID, Structure: st})
				break
			}
		}
		consolidate(g)
		if g.Cash > 250 && g.Capabilities.MA < 3 {
			g.Apply(sim.Action{Type: "improve", Track: sim.TrackMA})
		}
	}
}

// pickDeal returns the cheapest pipeline deal whose named structure quote
// fits the cash limit, along with the structure name.
func pickDeal(g *sim.GameState, kind string, cashLimit float64) (*deal.Deal, string) {
	env := deal.FinancingEnv{
		CreditTight: g.CreditTight(),
		RateDelta:   g.RateDelta,
		FinanceTier: g.Capabilities.Finance,
	}
	var best *deal.Deal
	bestCash := cashLimit
	for _, d := range g.Pipeline {
		for _, st := range deal.Structures(d, env) {
			if st.Kind.String() != kind {
				continue
			}
			if st.CashRequired <= bestCash {
				best = d
				bestCash = st.CashRequired
			}
		}
	}
	return best, kind
}

// consolidate merges every second active business into the oldest one.
func consolidate(g *sim.GameState) {
	var platform *opco.Business
	for _, b := range g.Businesses {
		if !b.Active() {
			continue
		}
		if platform == nil {
			platform = b
			continue
		}
		g.Apply(sim.Action{Type: "merge", BusinessID: b.ID, PlatformID: platform.ID})
	}
}

// restructure tries a distressed sale first, an emergency raise second,
// and folds when neither clears.
func restructure(g *sim.GameState) {
	var worst *opco.Business
	for _, b := range g.Businesses {
		if !b.Active() {
			continue
		}
		if worst == nil || b.TotalDebt() > worst.TotalDebt() {
			worst = b
		}
	}
	if worst != nil {
		if res := g.Apply(sim.Action{Type: "restructure_sell", BusinessID: worst.ID}); res.OK {
			return
		}
	}
	if res := g.Apply(sim.Action{Type: "restructure_raise", Amount: 100}); res.OK {
		return
	}
	g.Apply(sim.Action{Type: "declare_bankruptcy"})
}

var gradeOrder = []string{"S", "A", "B", "C", "D", "F"}

func printReport(results []gameResult, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║              MONTE CARLO BALANCE REPORT                     ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Strategies: %d  |  Seeds each: %d  |  Games: %d\n", strategyCount, seedsPerStrategy, len(results))
	fmt.Printf("  Elapsed: %v  |  Workers: %d\n", elapsed.Round(time.Millisecond), runtime.GOMAXPROCS(0))

	fmt.Println()
	fmt.Println("─── GRADE DISTRIBUTION BY STRATEGY ────────────────────────────")
	fmt.Printf("  %-14s", "")
	for _, gr := range gradeOrder {
		fmt.Printf("  %5s", gr)
	}
	fmt.Println()
	for s := Strategy(0); s < strategyCount; s++ {
		counts := make(map[string]int)
		total := 0
		for _, r := range results {
			if r.strategy == s {
				counts[r.grade]++
				total++
			}
		}
		fmt.Printf("  %-14s", s.String())
		for _, gr := range gradeOrder {
			fmt.Printf("  %4.1f%%", float64(counts[gr])/float64(total)*100)
		}
		fmt.Println()
	}

	fmt.Println()
	fmt.Println("─── OUTCOMES BY STRATEGY ──────────────────────────────────────")
	for s := Strategy(0); s < strategyCount; s++ {
		var moics, worths, levs []float64
		var bankrupt, restructured, acq, games int
		for _, r := range results {
			if r.strategy != s {
				continue
			}
			games++
			moics = append(moics, r.moic)
			worths = append(worths, r.netWorth)
			levs = append(levs, r.peakLeverage)
			acq += r.acquisitions
			if r.bankrupt {
				bankrupt++
			}
			if r.restructured {
				restructured++
			}
		}
		sort.Float64s(moics)
		sort.Float64s(worths)
		sort.Float64s(levs)
		fmt.Printf("  %-14s  MOIC p50: %5.2f  p90: %5.2f  |  net worth p50: %8.0f\n",
			s.String(), percentile(moics, 50), percentile(moics, 90), percentile(worths, 50))
		fmt.Printf("  %-14s  bankrupt: %4.1f%%  restructured: %4.1f%%  deals/game: %.1f  peak lev p90: %.1fx\n",
			"", float64(bankrupt)/float64(games)*100, float64(restructured)/float64(games)*100,
			float64(acq)/float64(games), percentile(levs, 90))
	}

	fmt.Println()
	fmt.Println("─── DIAGNOSIS ─────────────────────────────────────────────────")
	diagnose(results)
	fmt.Println()
}

func diagnose(results []gameResult) {
	byStrat := func(s Strategy) (bankruptPct, medianMOIC float64) {
		var moics []float64
		var bankrupt, games int
		for _, r := range results {
			if r.strategy != s {
				continue
			}
			games++
			moics = append(moics, r.moic)
			if r.bankrupt {
				bankrupt++
			}
		}
		sort.Float64s(moics)
		return float64(bankrupt) / float64(games) * 100, percentile(moics, 50)
	}

	levBankrupt, levMOIC := byStrat(Leveraged)
	consBankrupt, consMOIC := byStrat(Conservative)
	_, passiveMOIC := byStrat(Passive)
	_, rollMOIC := byStrat(RollUp)

	if levBankrupt < 5 {
		fmt.Printf("  !! LEVERAGED BANKRUPTCY %.1f%% — debt is free, tighten covenants\n", levBankrupt)
	} else if levBankrupt > 50 {
		fmt.Printf("  !! LEVERAGED BANKRUPTCY %.1f%% — debt unplayable, loosen rates\n", levBankrupt)
	} else {
		fmt.Printf("  OK LEVERAGED BANKRUPTCY %.1f%% — leverage carries real risk\n", levBankrupt)
	}

	if consBankrupt > 5 {
		fmt.Printf("  !! CONSERVATIVE BANKRUPTCY %.1f%% — all-cash play should rarely fold\n", consBankrupt)
	} else {
		fmt.Printf("  OK CONSERVATIVE BANKRUPTCY %.1f%%\n", consBankrupt)
	}

	if passiveMOIC >= 1.0 {
		fmt.Printf("  !! PASSIVE MOIC %.2f — doing nothing should not preserve capital\n", passiveMOIC)
	} else {
		fmt.Printf("  OK PASSIVE MOIC %.2f — overhead punishes inaction\n", passiveMOIC)
	}

	if levMOIC > consMOIC && rollMOIC > consMOIC {
		fmt.Println("  OK RISK PREMIUM — leverage and roll-ups out-earn the cautious median")
	} else {
		fmt.Printf("  ~~ RISK PREMIUM — leveraged %.2f / rollup %.2f vs conservative %.2f\n", levMOIC, rollMOIC, consMOIC)
	}

	// Replay check: the same seed and script must reproduce bitwise.
	a := playGame(RollUp, 7, config.DefaultBalance())
	b := playGame(RollUp, 7, config.DefaultBalance())
	if a.netWorth == b.netWorth && a.grade == b.grade && a.rounds == b.rounds {
		fmt.Println("  OK DETERMINISM — replayed seed matches")
	} else {
		fmt.Println("  !! DETERMINISM — replayed seed diverged, fork keys are leaking")
	}
}

func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * pct / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
