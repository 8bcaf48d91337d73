package deal

import (
	"fmt"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/rng"
)

// PipelineParams describes the conditions a round's deal flow is generated
// under. Everything financial draws from the deals stream; names draw from
// the cosmetic stream so flavor can never perturb terms.
type PipelineParams struct {
	Round        int
	Focus        Focus
	SourcingTier int     // 0..3 capability tier
	MarketHeat   float64 // -1..1, from recent market events
	CreditTight  bool
}

// SourceKind names a paid sourcing action. The occurrence counter in the
// fork key is what keeps two identical actions in one round from replaying
// the same batch.
type SourceKind string

const (
	SourceBroker   SourceKind = "source"   // "source-{n}"
	SourceOutreach SourceKind = "outreach" // "outreach-{n}"
)

// GeneratePipeline produces the round's inbound deal flow. Each deal's
// financial profile draws from a fork of the deals stream keyed by its
// slot, so deals are mutually independent and insertion order is fixed.
func GeneratePipeline(deals, cosmetic *rng.Stream, p PipelineParams) []*Deal {
	count := 2 + deals.Intn(3) // 2-4 inbound
	if p.SourcingTier >= 2 {
		count++
	}
	if p.MarketHeat > 0.5 {
		count++
	}

	out := make([]*Deal, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("deal-r%d-i%d", p.Round, i)
		d := generate(deals.Fork(id), cosmetic, id, p, false)
		out = append(out, d)
	}
	return out
}

// SourceBatch produces deals for one paid sourcing action. The batch stream
// is forked by "{kind}-{occurrence}" off the round's deals stream.
func SourceBatch(deals, cosmetic *rng.Stream, p PipelineParams, kind SourceKind, occurrence int) []*Deal {
	batch := deals.Fork(fmt.Sprintf("%s-%d", kind, occurrence))

	count := 1 + batch.Intn(2) // 1-2
	if kind == SourceOutreach {
		count = 1 // outreach is one hand-picked target
	}

	out := make([]*Deal, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("deal-r%d-%s%d-%d", p.Round, kind, occurrence, i)
		d := generate(batch.Fork(id), cosmetic, id, p, true)
		if kind == SourceOutreach {
			// Outreach targets the declared focus directly.
			d.Heat = coolOne(d.Heat)
		}
		out = append(out, d)
	}
	return out
}

func generate(s *rng.Stream, cosmetic *rng.Stream, id string, p PipelineParams, sourced bool) *Deal {
	sector := drawSector(s, p.Focus, sourced)
	prof := opco.Profiles[sector]

	revenue := s.Float(200, 2600)
	if sourced && p.Focus.Size != SizeAny {
		revenue = revenueForBand(s, p.Focus.Size)
	}
	margin := s.Float(prof.MarginLow, prof.MarginHigh)
	quality := drawQuality(s)
	growth := s.Float(prof.GrowthLow, prof.GrowthHigh) + float64(quality-3)*0.005
	drift := s.Float(-0.008, 0.008) + float64(quality-3)*0.002

	ebitda := revenue * margin

	target := opco.Business{
		ID:          id,
		Name:        businessName(cosmetic.Fork("name-"+id), sector),
		Sector:      sector,
		Revenue:     revenue,
		EBITDA:      ebitda,
		Margin:      margin,
		Quality:     quality,
		Growth:      growth,
		MarginDrift: drift,
		Status:      opco.StatusActive,
	}

	multiple := prof.BaseMultiple * s.Float(0.80, 1.20)
	multiple += float64(quality-3) * 0.25
	if p.Focus.Matches(&target) {
		multiple -= 0.15 // proprietary angle: slight pricing edge
	}
	if p.CreditTight {
		multiple -= 0.30 // fewer bidders when credit is scarce
	}
	if multiple < 1.5 {
		multiple = 1.5
	}

	price := ebitda * multiple
	if price < 50 {
		price = 50 // nuisance floor for tiny targets
	}

	d := &Deal{
		ID:          id,
		Target:      target,
		AskingPrice: price,
		AskMultiple: multiple,
		Sourced:     sourced,
		Freshness:   2 + s.Intn(2),
		Round:       p.Round,
	}
	d.Heat = heatFor(s, d, p)
	return d
}

func drawSector(s *rng.Stream, f Focus, sourced bool) opco.Sector {
	weights := make([]float64, len(opco.Sectors))
	for i, sec := range opco.Sectors {
		w := opco.Profiles[sec].FlowWeight
		if f.Sector == sec {
			if sourced {
				w *= 6 // sourcing actions chase the declared focus hard
			} else {
				w *= 2.5
			}
		}
		weights[i] = w
	}
	return opco.Sectors[rng.WeightedPick(s, weights)]
}

func revenueForBand(s *rng.Stream, band SizeBand) float64 {
	switch band {
	case SizeSmall:
		return s.Float(200, 800)
	case SizeMid:
		return s.Float(800, 1800)
	case SizeLarge:
		return s.Float(1800, 2600)
	}
	return s.Float(200, 2600)
}

// drawQuality skews toward the middle: 1 and 5 are rare.
func drawQuality(s *rng.Stream) int {
	return 1 + rng.WeightedPick(s, []float64{0.8, 2.2, 3.4, 2.6, 1.0})
}

// heatFor classifies competitiveness. Big, on-focus targets in a hot market
// run hotter; sourcing capability statistically cools sourced deals.
// Inbound deals receive the same classification but never face a snatch.
func heatFor(s *rng.Stream, d *Deal, p PipelineParams) Heat {
	score := s.Next()*0.5 + d.Target.EBITDA/1200.0 + p.MarketHeat*0.15
	if p.Focus.Matches(&d.Target) {
		score += 0.10
	}
	if d.Sourced {
		score -= float64(p.SourcingTier) * 0.12
	}
	switch {
	case score < 0.35:
		return HeatCold
	case score < 0.70:
		return HeatWarm
	case score < 0.95:
		return HeatHot
	default:
		return HeatContested
	}
}

func coolOne(h Heat) Heat {
	if h > HeatCold {
		return h - 1
	}
	return h
}

var namePrefixes = map[opco.Sector][]string{
	opco.SectorServices:      {"Summit", "Beacon", "Keystone", "Meridian", "Pinnacle", "Harbor"},
	opco.SectorManufacturing: {"Ironline", "Forgeworks", "Precision", "Axle", "Gridstone", "Weldon"},
	opco.SectorHealthcare:    {"Carewell", "Vital", "Mercy", "Clearview", "Haven", "Restore"},
	opco.SectorSoftware:      {"Nimbus", "Vector", "Ledgerline", "Quanta", "Signal", "Parcel"},
	opco.SectorConsumer:      {"Hearth", "Orchard", "Maple", "Crafted", "Daily", "Tidewater"},
	opco.SectorLogistics:     {"Freightline", "Crossdock", "Lanehaul", "Portside", "Relay", "Overland"},
}

var nameSuffixes = map[opco.Sector][]string{
	opco.SectorServices:      {"Facility Services", "Staffing Group", "Field Services", "Maintenance Co"},
	opco.SectorManufacturing: {"Manufacturing", "Components", "Industries", "Fabrication"},
	opco.SectorHealthcare:    {"Clinics", "Home Health", "Diagnostics", "Therapy Partners"},
	opco.SectorSoftware:      {"Software", "Systems", "Labs", "Platforms"},
	opco.SectorConsumer:      {"Brands", "Goods Co", "Provisions", "Outfitters"},
	opco.SectorLogistics:     {"Logistics", "Carriers", "Distribution", "Freight"},
}

func businessName(s *rng.Stream, sector opco.Sector) string {
	return rng.Pick(s, namePrefixes[sector]) + " " + rng.Pick(s, nameSuffixes[sector])
}
