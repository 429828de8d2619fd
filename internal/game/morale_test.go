package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayroll(t *testing.T) {
	employees := []Employee{{Salary: 3_000}, {Salary: 4_500}}
	assert.InDelta(t, 250, Payroll(employees, 1, DefaultConfig()), 1e-9)
	assert.InDelta(t, 125, Payroll(employees, 0.5, DefaultConfig()), 1e-9)
	assert.Zero(t, Payroll(nil, 1, DefaultConfig()))
}

func TestWorkloadDelta(t *testing.T) {
	active := func(phase Phase) Project { return Project{Status: StatusInProgress, Phase: phase} }
	staff := func(n int) []Employee { return make([]Employee, n) }

	tests := []struct {
		name string
		st   State
		want float64
	}{
		{"phase overload", State{Projects: []Project{active(PhaseBeta), active(PhaseAlpha)}, Employees: staff(10)}, -10},
		{"understaffed", State{Projects: []Project{active(PhaseConcept), active(PhaseConcept), active(PhaseConcept)}, Employees: staff(1)}, -8},
		{"stretched", State{Projects: []Project{active(PhaseConcept), active(PhaseConcept)}, Employees: staff(1)}, -3},
		{"relaxed", State{Projects: []Project{active(PhaseProduction)}, Employees: staff(4)}, 2},
		{"balanced", State{Projects: []Project{active(PhaseProduction)}, Employees: staff(1)}, 0},
		{"idle, nobody hired", State{}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WorkloadDelta(tc.st))
		})
	}
}

func TestFinancialDelta(t *testing.T) {
	assert.Equal(t, -5.0, FinancialDelta(-100))
	assert.Equal(t, -5.0, FinancialDelta(4_999))
	assert.Equal(t, -2.0, FinancialDelta(5_000))
	assert.Equal(t, 1.0, FinancialDelta(99_999))
	assert.Equal(t, 0.0, FinancialDelta(100_000))
}

func TestCompletionBoost(t *testing.T) {
	projects := []Project{
		{Completed: true, Size: SizeAAA, Progress: 100, CompletedAt: testNow.Add(-24 * time.Hour)},
		{Completed: true, Size: SizeA, Progress: 90, CompletedAt: testNow.Add(-48 * time.Hour)},
		{Completed: true, Size: SizeAA, Progress: 100, CompletedAt: testNow.Add(-31 * 24 * time.Hour)},
		{Completed: false, Size: SizeAAA, Progress: 100},
	}
	want := 0.5*1.5*1.2 + 0.5*0.5*1.0
	assert.InDelta(t, want, CompletionBoost(projects, testNow), 1e-9)
}

func TestHarmonyDelta(t *testing.T) {
	assert.Zero(t, HarmonyDelta([]Employee{{Personality: []string{TraitLeader}}}))

	synergy := []Employee{
		{Personality: []string{TraitCreative}},
		{Personality: []string{TraitInnovative}},
	}
	assert.InDelta(t, 0.5, HarmonyDelta(synergy), 1e-9)

	mixed := []Employee{
		{Personality: []string{TraitIntrovert}},
		{Personality: []string{TraitExtrovert}},
		{Personality: []string{TraitCollaborative}},
	}
	// introvert/extrovert -0.3, extrovert/collaborative +0.5, introvert/collaborative 0
	assert.InDelta(t, 0.2/3, HarmonyDelta(mixed), 1e-9)
}

func TestMoraleDeltaScalesWithDayProgress(t *testing.T) {
	st := State{Money: 1_000}
	full := MoraleDelta(st, 1, testNow)
	assert.Equal(t, 2.0-5.0, full)
	assert.InDelta(t, full/4, MoraleDelta(st, 0.25, testNow), 1e-9)
}
