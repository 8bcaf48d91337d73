package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Balance holds the gameplay tuning knobs. Values load from an optional
// YAML file over compiled-in defaults; tuning never touches RNG derivation,
// so two games on the same seed with the same balance file are identical.
type Balance struct {
	StartingCash float64 `yaml:"starting_cash"`
	MaxRounds    int     `yaml:"max_rounds"`

	TaxRate         float64 `yaml:"tax_rate"`
	OverheadPerOpCo float64 `yaml:"overhead_per_opco"`

	SourcingCost float64 `yaml:"sourcing_cost"`
	OutreachCost float64 `yaml:"outreach_cost"`

	LoanBaseRate    float64 `yaml:"loan_base_rate"`
	LoanTermRounds  int     `yaml:"loan_term_rounds"`
	LoanCapMultiple float64 `yaml:"loan_cap_multiple"` // of portfolio EBITDA

	CovenantMaxLeverage float64 `yaml:"covenant_max_leverage"`
	CovenantGraceRounds int     `yaml:"covenant_grace_rounds"`

	TransactionCostPct float64 `yaml:"transaction_cost_pct"` // sale haircut
	DistressedSalePct  float64 `yaml:"distressed_sale_pct"`  // restructure haircut
	EmergencyRaisePct  float64 `yaml:"emergency_raise_pct"`  // discount to intrinsic

	IntegrationCostPct float64 `yaml:"integration_cost_pct"` // of bolt-on price
	SynergyPct         float64 `yaml:"synergy_pct"`          // EBITDA bump on merge

	FounderFloor float64 `yaml:"founder_floor"` // min founder ownership share

	SharesOutstanding float64 `yaml:"shares_outstanding"`
	FounderShares     float64 `yaml:"founder_shares"`

	CapabilityCosts []float64 `yaml:"capability_costs"` // cost per tier 1..n
}

// DefaultBalance returns the shipped tuning.
func DefaultBalance() Balance {
	return Balance{
		StartingCash:        500,
		MaxRounds:           20,
		TaxRate:             0.25,
		OverheadPerOpCo:     12,
		SourcingCost:        25,
		OutreachCost:        40,
		LoanBaseRate:        0.09,
		LoanTermRounds:      5,
		LoanCapMultiple:     2.5,
		CovenantMaxLeverage: 5.0,
		CovenantGraceRounds: 3,
		TransactionCostPct:  0.03,
		DistressedSalePct:   0.30,
		EmergencyRaisePct:   0.40,
		IntegrationCostPct:  0.05,
		SynergyPct:          0.08,
		FounderFloor:        0.10,
		SharesOutstanding:   1000,
		FounderShares:       1000,
		CapabilityCosts:     []float64{60, 140, 300},
	}
}

// LoadBalance reads YAML tuning over the defaults. An empty path returns
// the defaults unchanged; a missing or malformed file is an error so a
// typo'd override never silently ships default tuning.
func LoadBalance(path string) (Balance, error) {
	b := DefaultBalance()
	if path == "" {
		return b, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read balance file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("parse balance file: %w", err)
	}
	if err := b.validate(); err != nil {
		return b, fmt.Errorf("balance file: %w", err)
	}
	return b, nil
}

func (b Balance) validate() error {
	if b.StartingCash <= 0 {
		return fmt.Errorf("starting_cash must be positive")
	}
	if b.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1")
	}
	if b.TaxRate < 0 || b.TaxRate >= 1 {
		return fmt.Errorf("tax_rate must be in [0,1)")
	}
	if b.FounderFloor < 0 || b.FounderFloor > 1 {
		return fmt.Errorf("founder_floor must be in [0,1]")
	}
	if b.FounderShares > b.SharesOutstanding {
		return fmt.Errorf("founder_shares cannot exceed shares_outstanding")
	}
	return nil
}

// CapabilityCost returns the cost of moving to the given tier (1-based).
// Tiers past the configured ladder are unobtainable.
func (b Balance) CapabilityCost(tier int) (float64, bool) {
	if tier < 1 || tier > len(b.CapabilityCosts) {
		return 0, false
	}
	return b.CapabilityCosts[tier-1], true
}
