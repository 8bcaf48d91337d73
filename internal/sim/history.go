package sim

// RoundHistoryEntry is the append-only record of one completed round, kept
// for review surfaces and the ROIIC trailing window.
type RoundHistoryEntry struct {
	Round           int     `json:"round"`
	Cash            float64 `json:"cash"`
	PortfolioEBITDA float64 `json:"portfolio_ebitda"`
	NetWorth        float64 `json:"net_worth"`
	FCF             float64 `json:"fcf"`
	Tax             float64 `json:"tax"`
	DebtService     float64 `json:"debt_service"`
	EventType       string  `json:"event_type"`
	DealsAcquired   int     `json:"deals_acquired"`
	AcquisitionSpend float64 `json:"acquisition_spend"`
	Shortfall       bool    `json:"shortfall"`
	Leverage        float64 `json:"leverage"`
}
