package sim

// FinalScore is the end-of-game grade sheet.
type FinalScore struct {
	NetWorth     float64 `json:"net_worth"`
	MOIC         float64 `json:"moic"` // net worth over contributed equity
	Rounds       int     `json:"rounds"`
	Bankrupt     bool    `json:"bankrupt"`
	Restructured bool    `json:"restructured"`
	Grade        string  `json:"grade"`
}

// Score grades a finished (or in-flight) game. MOIC drives the letter;
// bankruptcy is an automatic F, and a restructuring on the record costs
// one letter off the top.
func (g *GameState) Score() FinalScore {
	nw := g.NetWorth()
	moic := 0.0
	if g.ContributedEquity > 0 {
		moic = nw / g.ContributedEquity
	}

	s := FinalScore{
		NetWorth:     nw,
		MOIC:         moic,
		Rounds:       len(g.History),
		Bankrupt:     g.Bankrupt,
		Restructured: g.Restructured,
	}
	s.Grade = gradeFor(moic, g.Bankrupt, g.Restructured)
	return s
}

var gradeLadder = []struct {
	min   float64
	grade string
}{
	{5.0, "S"},
	{3.0, "A"},
	{2.0, "B"},
	{1.2, "C"},
	{0.6, "D"},
}

func gradeFor(moic float64, bankrupt, restructured bool) string {
	if bankrupt {
		return "F"
	}
	idx := len(gradeLadder) // F by default
	for i, step := range gradeLadder {
		if moic >= step.min {
			idx = i
			break
		}
	}
	if restructured {
		idx++ // one letter down
	}
	if idx >= len(gradeLadder) {
		return "F"
	}
	return gradeLadder[idx].grade
}
