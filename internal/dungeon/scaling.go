package dungeon

// PartyMember is the slice of party state difficulty scaling cares about.
type PartyMember struct {
	// Class is the character class name, e.g. "Warrior".
	Class string
	// Level is the character level, >= 1.
	Level int
}

// PartyScaler summarizes a party for difficulty adjustment.
type PartyScaler struct {
	PartySize    int
	AverageLevel int
	HasHealer    bool
	HasTank      bool
	HasDPS       bool
	// SynergyBonus rewards role coverage, in [0, 0.25].
	SynergyBonus float64
}

// AnalyzeParty derives a PartyScaler from party composition.
//
// Postcondition: AverageLevel >= 1; SynergyBonus in [0, 0.25].
func AnalyzeParty(members []PartyMember) PartyScaler {
	s := PartyScaler{PartySize: len(members), AverageLevel: 1}
	if len(members) == 0 {
		return s
	}

	total := 0
	for _, m := range members {
		level := m.Level
		if level < 1 {
			level = 1
		}
		total += level

		switch m.Class {
		case "Paladin", "Druid":
			s.HasHealer = true
		case "Warrior":
			s.HasTank = true
		case "Mage", "Rogue", "Ranger":
			s.HasDPS = true
		}
	}
	s.AverageLevel = total / len(members)
	if s.AverageLevel < 1 {
		s.AverageLevel = 1
	}

	if s.HasTank && s.HasDPS {
		s.SynergyBonus += 0.1
	}
	if s.HasHealer && (s.HasTank || s.HasDPS) {
		s.SynergyBonus += 0.1
	}
	if s.PartySize >= 4 {
		s.SynergyBonus += 0.05
	}
	return s
}

// Multiplier returns the difficulty multiplier for this party: encounters
// tighten for small parties and for well-rounded role coverage, since both
// make the baseline content too easy to be interesting.
//
// Postcondition: result > 0.
func (s PartyScaler) Multiplier() float64 {
	size := s.PartySize
	if size < 1 {
		size = 1
	}
	sizeMult := 1.0 + float64(4-size)*0.1
	if sizeMult < 0.5 {
		sizeMult = 0.5
	}
	return sizeMult * (1.0 + s.SynergyBonus)
}

// ScaleEncounters returns a copy of encounters with difficulties multiplied
// by the party's scaling factor. The input slice is not modified.
func (s PartyScaler) ScaleEncounters(encounters []Encounter) []Encounter {
	mult := s.Multiplier()
	out := make([]Encounter, len(encounters))
	for i, e := range encounters {
		e.Difficulty *= mult
		out[i] = e
	}
	return out
}
