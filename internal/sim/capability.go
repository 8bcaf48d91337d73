package sim

// Capability tracks. Each tier is a one-time purchase during the allocate
// phase; bonuses are flat per tier and stack.
//
//	operations: capex-rate and shared-service discounts
//	sourcing:   extra deal flow, cooler sourced deals, cheaper focus overhead
//	finance:    rate discounts on quoted debt, larger holdco loan capacity
//	ma:         cheaper tuck-in integration
type Capabilities struct {
	Operations int `json:"operations"`
	Sourcing   int `json:"sourcing"`
	Finance    int `json:"finance"`
	MA         int `json:"ma"`
}

const (
	TrackOperations = "operations"
	TrackSourcing   = "sourcing"
	TrackFinance    = "finance"
	TrackMA         = "ma"
)

const (
	opsCapexDiscountPerTier         = 0.10
	opsOverheadDiscountPerTier      = 0.12
	sourcingOverheadBase            = 8.0
	sourcingOverheadDiscountPerTier = 0.15
	financeLoanCapBonusPerTier      = 0.20 // multiple-of-EBITDA bonus
	financeRateDiscountPerTier      = 0.005
	maIntegrationDiscountPerTier    = 0.20
)

// Tier returns the current tier for a named track; -1 for unknown tracks.
func (c Capabilities) Tier(track string) int {
	switch track {
	case TrackOperations:
		return c.Operations
	case TrackSourcing:
		return c.Sourcing
	case TrackFinance:
		return c.Finance
	case TrackMA:
		return c.MA
	default:
		return -1
	}
}

func (c *Capabilities) bump(track string) {
	switch track {
	case TrackOperations:
		c.Operations++
	case TrackSourcing:
		c.Sourcing++
	case TrackFinance:
		c.Finance++
	case TrackMA:
		c.MA++
	}
}
