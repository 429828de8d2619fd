package game

import "time"

// scriptedRand replays vals in a loop.
type scriptedRand struct {
	vals []float64
	i    int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func fixed(v float64) *scriptedRand {
	return &scriptedRand{vals: []float64{v}}
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func staffedState() State {
	st := NewGame(DefaultConfig())
	st.Employees = []Employee{
		{
			ID:                "e1",
			Name:              "Maya Lee",
			Type:              Developer,
			Skills:            map[string]float64{SkillProgramming: 80},
			Personality:       []string{TraitInnovative},
			Salary:            3_000,
			Productivity:      1.0,
			AssignedProjectID: "p1",
		},
		{
			ID:                "e2",
			Name:              "Arun Vale",
			Type:              Designer,
			Skills:            map[string]float64{SkillProgramming: 60, SkillDesign: 85},
			Salary:            4_500,
			Productivity:      1.2,
			AssignedProjectID: "p1",
		},
	}
	st.Projects = []Project{
		{
			ID:               "p1",
			Name:             "Space Quest",
			Size:             SizeA,
			Platform:         "PC",
			Genre:            "Action",
			Phase:            PhaseProduction,
			Status:           StatusInProgress,
			Progress:         40,
			EstimatedDays:    30,
			EstimatedRevenue: 20_000,
			RequiredSkills:   []string{SkillProgramming},
		},
	}
	return st
}
