package opco

// Sector classifies a business line. Sector drives capex intensity, base
// exit multiples, and deal-flow weighting.
type Sector string

const (
	SectorServices      Sector = "services"
	SectorManufacturing Sector = "manufacturing"
	SectorHealthcare    Sector = "healthcare"
	SectorSoftware      Sector = "software"
	SectorConsumer      Sector = "consumer"
	SectorLogistics     Sector = "logistics"
)

// Sectors lists all sectors in a fixed order. Generation code iterates this
// slice, never the map, so draw order stays deterministic.
var Sectors = []Sector{
	SectorServices,
	SectorManufacturing,
	SectorHealthcare,
	SectorSoftware,
	SectorConsumer,
	SectorLogistics,
}

// Profile holds a sector's financial character.
type Profile struct {
	CapexRate    float64 // share of EBITDA consumed by maintenance capex
	BaseMultiple float64 // baseline exit multiple on EBITDA
	MarginLow    float64
	MarginHigh   float64
	GrowthLow    float64
	GrowthHigh   float64
	FlowWeight   float64 // relative deal-flow frequency
}

var Profiles = map[Sector]Profile{
	SectorServices:      {CapexRate: 0.02, BaseMultiple: 3.5, MarginLow: 0.10, MarginHigh: 0.25, GrowthLow: 0.01, GrowthHigh: 0.08, FlowWeight: 1.4},
	SectorManufacturing: {CapexRate: 0.06, BaseMultiple: 4.0, MarginLow: 0.08, MarginHigh: 0.20, GrowthLow: 0.00, GrowthHigh: 0.06, FlowWeight: 1.0},
	SectorHealthcare:    {CapexRate: 0.04, BaseMultiple: 5.0, MarginLow: 0.12, MarginHigh: 0.28, GrowthLow: 0.02, GrowthHigh: 0.09, FlowWeight: 0.8},
	SectorSoftware:      {CapexRate: 0.03, BaseMultiple: 6.0, MarginLow: 0.15, MarginHigh: 0.40, GrowthLow: 0.05, GrowthHigh: 0.18, FlowWeight: 0.6},
	SectorConsumer:      {CapexRate: 0.03, BaseMultiple: 3.0, MarginLow: 0.06, MarginHigh: 0.18, GrowthLow: 0.00, GrowthHigh: 0.07, FlowWeight: 1.2},
	SectorLogistics:     {CapexRate: 0.05, BaseMultiple: 3.5, MarginLow: 0.07, MarginHigh: 0.16, GrowthLow: 0.01, GrowthHigh: 0.06, FlowWeight: 0.9},
}

// Status tracks where a business sits in its lifecycle.
type Status int

const (
	StatusActive Status = iota
	StatusIntegrated
	StatusSold
	StatusMerged
	StatusWoundDown
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusIntegrated:
		return "integrated"
	case StatusSold:
		return "sold"
	case StatusMerged:
		return "merged"
	case StatusWoundDown:
		return "wound_down"
	default:
		return "unknown"
	}
}

// Debt is one amortizing instrument: seller note, bank debt, or the holdco
// loan. Straight-line principal over the remaining term.
type Debt struct {
	Balance  float64 `json:"balance"`
	Rate     float64 `json:"rate"`
	TermLeft int     `json:"term_left"`
}

// Outstanding reports whether the instrument still has a balance to service.
func (d Debt) Outstanding() bool {
	return d.Balance > 0 && d.TermLeft > 0
}

// EarnOut is a contingent seller payment: paid only if realized EBITDA
// growth meets the target before the window closes, forfeited otherwise.
type EarnOut struct {
	Balance      float64 `json:"balance"`
	TargetGrowth float64 `json:"target_growth"`
	RoundsLeft   int     `json:"rounds_left"`
}

func (e EarnOut) Outstanding() bool {
	return e.Balance > 0 && e.RoundsLeft > 0
}
