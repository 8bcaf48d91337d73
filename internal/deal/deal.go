package deal

import "github.com/peterkang34/holdco-tycoon-sub003/internal/opco"

// Heat classifies a deal's competitiveness. Only sourced deals ever face
// the contested-snatch roll; for inbound/brokered deals heat is a label
// with no gameplay effect.
type Heat int

const (
	HeatCold Heat = iota
	HeatWarm
	HeatHot
	HeatContested
)

func (h Heat) String() string {
	switch h {
	case HeatCold:
		return "cold"
	case HeatWarm:
		return "warm"
	case HeatHot:
		return "hot"
	case HeatContested:
		return "contested"
	default:
		return "unknown"
	}
}

// SnatchProbability is the chance a contested sourced deal is outbid at
// acquisition time. The roll consumes a stream forked by deal ID so
// inspecting or re-rendering a deal never burns it.
const SnatchProbability = 0.35

// Deal is a prospective acquisition: an unowned business snapshot plus the
// terms of engagement.
type Deal struct {
	ID          string        `json:"id"`
	Target      opco.Business `json:"target"`
	AskingPrice float64       `json:"asking_price"`
	AskMultiple float64       `json:"ask_multiple"`
	Heat        Heat          `json:"heat"`
	Sourced     bool          `json:"sourced"`
	Freshness   int           `json:"freshness"` // rounds left before expiry
	Round       int           `json:"round"`     // round generated
}

// SizeBand is the player's declared deal-size focus.
type SizeBand int

const (
	SizeAny SizeBand = iota
	SizeSmall
	SizeMid
	SizeLarge
)

func (s SizeBand) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeMid:
		return "mid"
	case SizeLarge:
		return "large"
	default:
		return "any"
	}
}

// Focus is the player's declared sourcing focus. Matching deals are boosted
// in frequency and get a small pricing edge.
type Focus struct {
	Sector opco.Sector `json:"sector,omitempty"` // empty = none
	Size   SizeBand    `json:"size,omitempty"`
}

// Matches reports whether a target fits the declared focus.
func (f Focus) Matches(b *opco.Business) bool {
	if f.Sector != "" && f.Sector != b.Sector {
		return false
	}
	switch f.Size {
	case SizeSmall:
		return b.EBITDA < smallCutoff
	case SizeMid:
		return b.EBITDA >= smallCutoff && b.EBITDA < largeCutoff
	case SizeLarge:
		return b.EBITDA >= largeCutoff
	}
	return f.Sector != "" // SizeAny alone is not a focus
}

const (
	smallCutoff = 120.0
	largeCutoff = 300.0
)

// Expire ticks freshness down; true once the deal has gone stale.
func (d *Deal) Expire() bool {
	d.Freshness--
	return d.Freshness <= 0
}
