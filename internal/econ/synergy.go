package econ

// ActiveSynergy is one currently-satisfied rule instance.
type ActiveSynergy struct {
	Rule   SynergyRule
	First  *Business
	Second *Business
}

// SynergyEngine recomputes the active bonus set from scratch every tick.
// Bonuses never multiply a live value: they only set per-business factors
// that enter the derived-field recomputation, so a bonus whose requirement
// lapses disappears at the next recomputation with nothing to unwind.
type SynergyEngine struct {
	catalog *Catalog
}

func NewSynergyEngine(catalog *Catalog) *SynergyEngine {
	return &SynergyEngine{catalog: catalog}
}

// Recompute resets every business's synergy factors and re-applies each
// satisfied rule to both members of its pair.
func (e *SynergyEngine) Recompute(portfolio *Portfolio) []ActiveSynergy {
	for _, b := range portfolio.All() {
		b.resetSynergies()
	}

	var active []ActiveSynergy
	for _, rule := range e.catalog.Rules() {
		first, ok := portfolio.GetByName(e.catalog, rule.FirstBusiness)
		if !ok {
			continue
		}
		second, ok := portfolio.GetByName(e.catalog, rule.SecondBusiness)
		if !ok {
			continue
		}
		if first.Level < rule.RequiredLevel || second.Level < rule.RequiredLevel {
			continue
		}
		for _, b := range []*Business{first, second} {
			if rule.affects(SynergyIncome) {
				b.synergyIncome *= rule.Bonus
			}
			if rule.affects(SynergyRisk) {
				b.synergyRisk *= rule.Bonus
			}
			if rule.affects(SynergyWorkers) {
				b.synergyWorkers *= rule.Bonus
			}
		}
		active = append(active, ActiveSynergy{Rule: rule, First: first, Second: second})
	}
	return active
}
