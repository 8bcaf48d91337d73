package narrative

import (
	"context"
	"fmt"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/event"
)

// Generator produces flavor text for a drawn event. Implementations may
// call out to anything they like; the engine never depends on them
// succeeding. An empty string or an error falls back to templates.
type Generator interface {
	Generate(ctx context.Context, e *event.Event) (string, error)
}

// Headline renders an event's headline through gen, falling back to the
// deterministic template when gen is nil, errors, or returns nothing.
func Headline(ctx context.Context, gen Generator, e *event.Event) string {
	if gen != nil {
		if s, err := gen.Generate(ctx, e); err == nil && s != "" {
			return s
		}
	}
	return Template(e)
}

// Template is the deterministic fallback: same event, same string.
func Template(e *event.Event) string {
	switch e.Type {
	case "rate_hike":
		return "The central bank tightens. Every floating rate in the portfolio just got heavier."
	case "rate_cut":
		return "Rates come down. Lenders are suddenly returning calls."
	case "credit_tightening":
		return "Credit markets seize up. Bank financing is off the table for now."
	case "bull_market":
		return "Multiples are running hot. Sellers know it, and so do buyers."
	case "recession":
		return "The economy turns. Order books thin out across the portfolio."
	case "sector_boom":
		return fmt.Sprintf("A wave of demand lifts the %s sector.", e.Effects.Sector)
	case "contract_win":
		return fmt.Sprintf("%s lands a marquee contract.", e.TargetName)
	case "margin_squeeze":
		return fmt.Sprintf("Input costs bite at %s. Margins compress.", e.TargetName)
	case "key_customer_loss":
		return fmt.Sprintf("%s's largest customer is walking. What now?", e.TargetName)
	case "operator_exit":
		return fmt.Sprintf("The operator running %s wants out.", e.TargetName)
	case "equipment_failure":
		return fmt.Sprintf("A critical line goes down at %s.", e.TargetName)
	case "seller_dispute":
		return fmt.Sprintf("The sellers of %s are disputing the purchase agreement.", e.TargetName)
	case "quiet_year":
		return "A quiet year. Nothing breaks, nothing booms."
	default:
		return "The year brings news."
	}
}
