package finance

import "github.com/peterkang34/holdco-tycoon-sub003/internal/opco"

// Payment is the realized portion of one instrument's scheduled service.
type Payment struct {
	Interest  float64
	Principal float64
	Short     bool // scheduled amount exceeded available cash
}

// Total is the cash actually paid out.
func (p Payment) Total() float64 {
	return p.Interest + p.Principal
}

// AmortizationDue computes one round's scheduled interest and straight-line
// principal for an instrument. A zero term with a balance is treated as
// fully due (balloon) rather than dividing by zero.
func AmortizationDue(d opco.Debt) (interest, principal float64) {
	if d.Balance <= 0 {
		return 0, 0
	}
	interest = d.Balance * d.Rate
	if d.TermLeft <= 1 {
		principal = d.Balance
	} else {
		principal = d.Balance / float64(d.TermLeft)
	}
	return interest, principal
}

// PayCapped applies a scheduled payment against available cash,
// interest-first. The instrument's balance is only reduced by the principal
// portion actually paid; unpaid interest is simply cash the lender didn't
// receive this round (the shortfall flag is what carries the consequence).
func PayCapped(cash, interestDue, principalDue float64) Payment {
	p := Payment{}
	if cash <= 0 {
		p.Short = interestDue > 0 || principalDue > 0
		return p
	}

	p.Interest = interestDue
	if p.Interest > cash {
		p.Interest = cash
		p.Short = true
	}
	remaining := cash - p.Interest

	p.Principal = principalDue
	if p.Principal > remaining {
		p.Principal = remaining
		p.Short = true
	}
	return p
}

// ServiceDebt advances one instrument by one round: computes the schedule,
// caps it by cash, mutates the instrument, and returns the realized
// payment. Term decrements whether or not the full principal was met, so a
// missed payment becomes a balloon at maturity rather than a term reset.
func ServiceDebt(d *opco.Debt, cash float64) Payment {
	if !d.Outstanding() {
		if d.Balance <= 0 {
			d.Balance = 0
		}
		return Payment{}
	}
	interestDue, principalDue := AmortizationDue(*d)
	p := PayCapped(cash, interestDue, principalDue)
	d.Balance -= p.Principal
	if d.Balance < 0 {
		d.Balance = 0
	}
	d.TermLeft--
	return p
}
