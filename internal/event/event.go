package event

import (
	"github.com/peterkang34/holdco-tycoon-sub003/internal/opco"
)

// Category spans the prioritized probability table.
type Category int

const (
	CategoryMacro Category = iota
	CategoryPortfolio
	CategoryQuiet
)

func (c Category) String() string {
	switch c {
	case CategoryMacro:
		return "macro"
	case CategoryPortfolio:
		return "portfolio"
	case CategoryQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// Mode splits events into the two resolution disciplines: immediate effects
// apply the moment the event is drawn; choice effects are entirely deferred
// until the player picks an action.
type Mode int

const (
	ModeImmediate Mode = iota
	ModeChoice
)

func (m Mode) String() string {
	if m == ModeChoice {
		return "choice"
	}
	return "immediate"
}

// EffectSet is the declarative consequence of an event or choice outcome.
// The round machine is the only code that applies one to state.
type EffectSet struct {
	CashDelta float64 `json:"cash_delta,omitempty"`

	// Portfolio-wide and sector-scoped EBITDA shifts (fractional).
	GlobalEBITDAPct float64     `json:"global_ebitda_pct,omitempty"`
	Sector          opco.Sector `json:"sector,omitempty"`
	SectorEBITDAPct float64     `json:"sector_ebitda_pct,omitempty"`

	// Target-business shifts; TargetID lives on the event.
	TargetEBITDAPct    float64 `json:"target_ebitda_pct,omitempty"`
	TargetQualityDelta int     `json:"target_quality_delta,omitempty"`
	TargetGrowthDelta  float64 `json:"target_growth_delta,omitempty"`
	// Multiplier on the target's seller-note balance (1 = unchanged).
	TargetSellerNoteMul float64 `json:"target_seller_note_mul,omitempty"`

	// Macro environment shifts.
	RateDelta         float64 `json:"rate_delta,omitempty"`
	CreditTightRounds int     `json:"credit_tight_rounds,omitempty"`
	MarketModDelta    float64 `json:"market_mod_delta,omitempty"`
	DealFlowDelta     float64 `json:"deal_flow_delta,omitempty"`
}

// Zero reports whether the effect set does nothing.
func (e EffectSet) Zero() bool {
	return e == EffectSet{}
}

// Choice is one player-selectable response to a choice event. Cost is paid
// up front; the probabilistic outcome resolves only when selected.
type Choice struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Cost        float64   `json:"cost"`
	SuccessProb float64   `json:"success_prob"` // 1 = certain
	Success     EffectSet `json:"success"`
	Failure     EffectSet `json:"failure"`
}

// Event is one drawn market or portfolio occurrence.
type Event struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Category Category `json:"category"`
	Mode     Mode     `json:"mode"`
	Round    int      `json:"round"`

	TargetID   string `json:"target_id,omitempty"`
	TargetName string `json:"target_name,omitempty"`

	Effects EffectSet `json:"effects"`           // ModeImmediate only
	Choices []Choice  `json:"choices,omitempty"` // ModeChoice only

	// Headline is presentation text, filled by the narrative collaborator
	// after the draw. Never consulted by the engine.
	Headline string `json:"headline,omitempty"`
}

// ChoiceByID finds an offered choice; nil when absent.
func (e *Event) ChoiceByID(id string) *Choice {
	for i := range e.Choices {
		if e.Choices[i].ID == id {
			return &e.Choices[i]
		}
	}
	return nil
}
