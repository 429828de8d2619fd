package game

import (
	"fmt"
)

const (
	StarterMoney  = 50_000.0
	StarterMorale = 75.0
	StarterRep    = 10.0
)

var StartDate = Date{Day: 1, Month: 1, Year: 2000}

var AllPlatforms = []string{"PC", "Mobile", "Web", "Console", "VR"}

var Genres = []string{"Action", "RPG", "Strategy", "Puzzle", "Simulation", "Adventure", "Sports", "Horror"}

// NewGame returns a fresh studio: some cash, no staff and the default stock listing.
func NewGame(cfg Config) State {
	return State{
		Date:       StartDate,
		Speed:      1,
		Money:      StarterMoney,
		Morale:     StarterMorale,
		Reputation: StarterRep,
		Platforms:  []string{"PC", "Web"},
		Stocks:     DefaultStocks(),
		Portfolio: Portfolio{
			Holdings: make(map[string]Holding),
		},
	}
}

func DefaultStocks() []Stock {
	seed := []struct {
		Symbol     string
		Name       string
		Sector     Sector
		Price      float64
		Volatility float64
		Yield      float64
	}{
		{"PIXL", "Pixel Forge", SectorGaming, 42.00, 0.020, 0.010},
		{"QUST", "Questline Interactive", SectorGaming, 88.50, 0.025, 0},
		{"RUSH", "Rushdown Games", SectorGaming, 17.25, 0.035, 0},
		{"NIMB", "Nimbus Labs", SectorTech, 95.00, 0.015, 0.015},
		{"VCTR", "Vectra AI", SectorTech, 165.00, 0.022, 0},
		{"CBLT", "Cobalt Dynamics", SectorTech, 130.00, 0.012, 0.020},
		{"SLCN", "Silicon Orchard", SectorHardware, 210.00, 0.018, 0.025},
		{"GPUX", "Gigapixel Devices", SectorHardware, 74.00, 0.028, 0},
		{"STRM", "Streamwave Media", SectorMedia, 36.00, 0.020, 0.030},
		{"LUMN", "Lumina Studios", SectorMedia, 58.00, 0.016, 0.022},
		{"BYTC", "Bytecoin Trust", SectorCrypto, 12.00, 0.060, 0},
		{"NODE", "Nodeon Chain", SectorCrypto, 6.50, 0.075, 0},
	}
	out := make([]Stock, 0, len(seed))
	for _, s := range seed {
		out = append(out, Stock{
			ID:            s.Symbol,
			Symbol:        s.Symbol,
			Name:          s.Name,
			Sector:        s.Sector,
			Price:         s.Price,
			Volatility:    s.Volatility,
			Trend:         1.0,
			DividendYield: s.Yield,
			History:       []float64{s.Price},
		})
	}
	return out
}

// Candidate is someone on the job market. Hiring turns it into an Employee.
type Candidate struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Type         EmployeeType       `json:"type"`
	Skills       map[string]float64 `json:"skills"`
	Personality  []string           `json:"personality"`
	Salary       float64            `json:"salary"`
	Productivity float64            `json:"productivity"`
}

func (c Candidate) Employee(id string, hiredOn Date) Employee {
	return Employee{
		ID:           id,
		Name:         c.Name,
		Type:         c.Type,
		Skills:       cloneSkills(c.Skills),
		Personality:  append([]string(nil), c.Personality...),
		Salary:       c.Salary,
		Productivity: c.Productivity,
		CandidateID:  c.ID,
		HiredOn:      hiredOn,
	}
}

var allTraits = []string{
	TraitInnovative, TraitPerfectionist, TraitCollaborative, TraitCreative, TraitAnalytical,
	TraitLeader, TraitWorkaholic, TraitRelaxed, TraitIntrovert, TraitExtrovert,
}

var allSkills = []string{SkillProgramming, SkillDesign, SkillMarketing, SkillArt, SkillSound, SkillManagement}

// Candidates builds a deterministic job market of n people. The same n always yields the same pool.
func Candidates(n int) []Candidate {
	first := []string{"Maya", "Arun", "Iris", "Noah", "Tara", "Kian", "Lea", "Ravi", "Nora", "Evan", "Zara", "Omar", "Lina", "Kade", "Ava", "Dion", "Sana", "Milo", "Rhea", "Theo"}
	last := []string{"Lee", "Vale", "Knox", "Pike", "Sol", "Moss", "Rowe", "Jain", "Park", "Reid", "Cross", "Quill", "Stone", "Wren", "Bose", "Cho", "Kent", "Ford", "Hart", "Yoon"}

	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		typ := EmployeeTypes[i%len(EmployeeTypes)]
		skills := make(map[string]float64, len(allSkills))
		for j, skill := range allSkills {
			skills[skill] = float64(20 + (i*13+j*17)%40)
		}
		primary := float64(60 + (i*7)%36)
		skills[typ.PrimarySkill()] = primary

		traits := []string{allTraits[(i*3)%len(allTraits)]}
		if i%3 == 0 {
			if second := allTraits[(i*3+5)%len(allTraits)]; second != traits[0] {
				traits = append(traits, second)
			}
		}

		out = append(out, Candidate{
			ID:           fmt.Sprintf("cand-%02d", i+1),
			Name:         fmt.Sprintf("%s %s", first[i%len(first)], last[(i*7)%len(last)]),
			Type:         typ,
			Skills:       skills,
			Personality:  traits,
			Salary:       float64(2_500 + int(primary-60)*60 + (i%5)*150),
			Productivity: 0.8 + float64((i*11)%5)*0.1,
		})
	}
	return out
}

// RequiredSkillsFor is the skill mix a project of genre needs.
func RequiredSkillsFor(genre string) []string {
	switch genre {
	case "Action", "Sports":
		return []string{SkillProgramming, SkillArt}
	case "RPG", "Adventure":
		return []string{SkillDesign, SkillArt, SkillProgramming}
	case "Strategy", "Simulation":
		return []string{SkillProgramming, SkillDesign}
	case "Puzzle":
		return []string{SkillDesign}
	case "Horror":
		return []string{SkillArt, SkillSound}
	}
	return []string{SkillProgramming}
}
