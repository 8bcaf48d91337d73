package deal

import (
	"testing"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/rng"
)

func roundStreams(seed uint32, round int) (*rng.Stream, *rng.Stream) {
	rs := rng.StreamsFor(seed, round)
	return rs.Deals, rs.Cosmetic
}

// ---------------------------------------------------------------------------
// 1. Pipeline determinism and independence
// ---------------------------------------------------------------------------

func TestPipelineDeterministic(t *testing.T) {
	p := PipelineParams{Round: 3, Focus: Focus{Sector: opco.SectorServices}}

	d1, c1 := roundStreams(42, 3)
	d2, c2 := roundStreams(42, 3)
	a := GeneratePipeline(d1, c1, p)
	b := GeneratePipeline(d2, c2, p)

	if len(a) != len(b) {
		t.Fatalf("pipeline sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].AskingPrice != b[i].AskingPrice ||
			a[i].Target.EBITDA != b[i].Target.EBITDA ||
			a[i].Heat != b[i].Heat ||
			a[i].Target.Name != b[i].Target.Name {
			t.Fatalf("deal %d differs:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestNamesDoNotPerturbFinancials(t *testing.T) {
	p := PipelineParams{Round: 2}

	d1, c1 := roundStreams(7, 2)
	a := GeneratePipeline(d1, c1, p)

	// Drain the cosmetic stream before generating: financial draws must be
	// unaffected because names come only from cosmetic forks.
	d2, c2 := roundStreams(7, 2)
	for i := 0; i < 100; i++ {
		c2.Next()
	}
	b := GeneratePipeline(d2, c2, p)

	for i := range a {
		if a[i].Target.EBITDA != b[i].Target.EBITDA || a[i].AskingPrice != b[i].AskingPrice {
			t.Fatalf("cosmetic stream position leaked into deal financials at %d", i)
		}
	}
}

// ---------------------------------------------------------------------------
// 2. Sourcing occurrence counters
// ---------------------------------------------------------------------------

func TestSourceBatchesDiffer(t *testing.T) {
	p := PipelineParams{Round: 5, Focus: Focus{Sector: opco.SectorHealthcare}}

	deals, cosmetic := roundStreams(42, 5)
	first := SourceBatch(deals, cosmetic, p, SourceBroker, 0)
	second := SourceBatch(deals, cosmetic, p, SourceBroker, 1)

	if len(first) == 0 || len(second) == 0 {
		t.Fatal("sourcing should always yield at least one deal")
	}
	differ := false
	for i := 0; i < len(first) && i < len(second); i++ {
		if first[i].Target.EBITDA != second[i].Target.EBITDA {
			differ = true
		}
	}
	if !differ && len(first) == len(second) {
		t.Fatal("source-0 and source-1 batches should yield distinct EBITDA profiles")
	}
}

func TestSourceBatchReproducible(t *testing.T) {
	p := PipelineParams{Round: 5}

	d1, c1 := roundStreams(42, 5)
	d2, c2 := roundStreams(42, 5)
	a := SourceBatch(d1, c1, p, SourceOutreach, 0)
	b := SourceBatch(d2, c2, p, SourceOutreach, 0)

	if len(a) != len(b) || a[0].ID != b[0].ID || a[0].AskingPrice != b[0].AskingPrice {
		t.Fatal("same occurrence counter must replay the identical batch")
	}
}

func TestSourcedDealsChaseFocus(t *testing.T) {
	p := PipelineParams{Round: 1, Focus: Focus{Sector: opco.SectorSoftware}}
	deals, cosmetic := roundStreams(1234, 1)

	matches := 0
	total := 0
	for n := 0; n < 200; n++ {
		for _, d := range SourceBatch(deals, cosmetic, p, SourceBroker, n) {
			total++
			if d.Target.Sector == opco.SectorSoftware {
				matches++
			}
		}
	}
	if matches*2 < total {
		t.Fatalf("focused sourcing should mostly hit the focus sector: %d/%d", matches, total)
	}
}

// ---------------------------------------------------------------------------
// 3. Heat
// ---------------------------------------------------------------------------

func TestSourcingTierCoolsSourcedDeals(t *testing.T) {
	heatCount := func(tier int) int {
		deals, cosmetic := roundStreams(99, 4)
		p := PipelineParams{Round: 4, SourcingTier: tier}
		hot := 0
		for n := 0; n < 300; n++ {
			for _, d := range SourceBatch(deals, cosmetic, p, SourceBroker, n) {
				if d.Heat >= HeatHot {
					hot++
				}
			}
		}
		return hot
	}

	if t0, t3 := heatCount(0), heatCount(3); t3 >= t0 {
		t.Fatalf("tier 3 sourcing should cool deals: tier0=%d hot, tier3=%d hot", t0, t3)
	}
}

// ---------------------------------------------------------------------------
// 4. Structuring
// ---------------------------------------------------------------------------

func sampleDeal() *Deal {
	return &Deal{
		ID: "deal-r3-i1",
		Target: opco.Business{
			ID: "deal-r3-i1", Sector: opco.SectorServices,
			Revenue: 1000, EBITDA: 200, Margin: 0.2, Quality: 3,
		},
		AskingPrice: 800,
		AskMultiple: 4.0,
	}
}

func TestStructuresStableAcrossRenders(t *testing.T) {
	d := sampleDeal()
	env := FinancingEnv{}
	a := Structures(d, env)
	b := Structures(d, env)
	if len(a) != len(b) {
		t.Fatalf("structure counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("structure %d differs between renders:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestCreditTighteningGatesBankShapes(t *testing.T) {
	d := sampleDeal()

	open := Structures(d, FinancingEnv{})
	tight := Structures(d, FinancingEnv{CreditTight: true})

	kinds := func(ss []Structure) map[StructureKind]Structure {
		m := make(map[StructureKind]Structure)
		for _, s := range ss {
			m[s.Kind] = s
		}
		return m
	}
	openK, tightK := kinds(open), kinds(tight)

	if _, ok := tightK[StructBankDebt]; ok {
		t.Fatal("bank debt should be unavailable during credit tightening")
	}
	if _, ok := tightK[StructLBO]; ok {
		t.Fatal("LBO should be unavailable during credit tightening")
	}
	// Gating must not shift the surviving shapes' terms.
	for _, k := range []StructureKind{StructAllCash, StructSellerNote, StructEarnOut, StructRollover} {
		if openK[k] != tightK[k] {
			t.Fatalf("gating changed %s terms:\n%+v\n%+v", k, openK[k], tightK[k])
		}
	}
}

func TestStructureCashPlusDebtCoversPrice(t *testing.T) {
	d := sampleDeal()
	for _, s := range Structures(d, FinancingEnv{}) {
		covered := s.CashRequired + s.SellerNote.Balance + s.BankDebt.Balance +
			s.EarnOut.Balance + d.AskingPrice*s.RolloverPct
		if covered < d.AskingPrice*0.999 || covered > d.AskingPrice*1.001 {
			t.Errorf("%s: cash+instruments %.2f should cover price %.2f", s.Kind, covered, d.AskingPrice)
		}
		if s.CashRequired < 0 {
			t.Errorf("%s: negative cash required", s.Kind)
		}
		if s.RiskTier < 1 || s.RiskTier > 4 {
			t.Errorf("%s: risk tier %d out of range", s.Kind, s.RiskTier)
		}
	}
}

func TestFinanceTierDiscountsRates(t *testing.T) {
	d := sampleDeal()
	base := Structures(d, FinancingEnv{})
	skilled := Structures(d, FinancingEnv{FinanceTier: 3})

	var baseRate, skilledRate float64
	for _, s := range base {
		if s.Kind == StructSellerNote {
			baseRate = s.SellerNote.Rate
		}
	}
	for _, s := range skilled {
		if s.Kind == StructSellerNote {
			skilledRate = s.SellerNote.Rate
		}
	}
	if skilledRate >= baseRate {
		t.Fatalf("finance tier should discount rates: base=%.4f skilled=%.4f", baseRate, skilledRate)
	}
}

// ---------------------------------------------------------------------------
// 5. Freshness
// ---------------------------------------------------------------------------

func TestDealExpiry(t *testing.T) {
	d := &Deal{Freshness: 2}
	if d.Expire() {
		t.Fatal("should survive first tick")
	}
	if !d.Expire() {
		t.Fatal("should expire on second tick")
	}
}
