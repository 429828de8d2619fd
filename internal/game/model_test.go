package game

import (
	"math"
	"testing"
)

func TestApplyMoraleBounds(t *testing.T) {
	tests := []struct {
		morale float64
		delta  float64
		want   float64
	}{
		{morale: 50, delta: 9999, want: 100},
		{morale: 50, delta: -9999, want: 0},
		{morale: 50, delta: 2.5, want: 52.5},
		{morale: 100, delta: 0, want: 100},
		{morale: 120, delta: -1, want: 100},
		{morale: 40, delta: math.NaN(), want: 40},
		{morale: 40, delta: math.Inf(1), want: 100},
	}
	for _, tc := range tests {
		got := ApplyMoraleBounds(tc.morale, tc.delta)
		if got != tc.want {
			t.Fatalf("morale=%v delta=%v got=%v want=%v", tc.morale, tc.delta, got, tc.want)
		}
	}
}

func TestPhaseForProgress(t *testing.T) {
	tests := []struct {
		progress float64
		want     Phase
	}{
		{0, PhaseConcept},
		{9.99, PhaseConcept},
		{10, PhasePreProduction},
		{30, PhaseProduction},
		{60, PhaseAlpha},
		{85, PhaseBeta},
		{100, PhaseRelease},
	}
	for _, tc := range tests {
		if got := PhaseForProgress(tc.progress); got != tc.want {
			t.Fatalf("progress=%v got=%s want=%s", tc.progress, got, tc.want)
		}
	}
}

func TestUnknownPhaseDefaults(t *testing.T) {
	if got := Phase("Gold").SkillMultiplier(); got != 1.0 {
		t.Fatalf("got %v want 1.0", got)
	}
	if got := Phase("").WorkloadImpact(); got != 1.0 {
		t.Fatalf("got %v want 1.0", got)
	}
}

func TestCostCurves(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.HireCost(0); got != 2_000 {
		t.Fatalf("hire cost got=%v", got)
	}
	if got := cfg.HireCost(2); got != math.Round(2_000*1.15*1.15) {
		t.Fatalf("hire cost got=%v", got)
	}
	if got := cfg.ProjectCost(1); got != 6_250 {
		t.Fatalf("project cost got=%v", got)
	}
	if got := cfg.EstimatedDays(SizeAA); got != 90 {
		t.Fatalf("estimated days got=%v", got)
	}
	if got := (Config{}).EstimatedDays(SizeA); got != defaultEstimatedDays {
		t.Fatalf("estimated days fallback got=%v", got)
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"Space Quest", "Doom 3", "Pixel & Co.", "Q"}
	for _, s := range valid {
		if err := ValidateName(s); err != nil {
			t.Fatalf("expected %q to be valid: %v", s, err)
		}
	}
	invalid := []string{"", "   ", "-leading", "semi;colon"}
	for _, s := range invalid {
		if err := ValidateName(s); err == nil {
			t.Fatalf("expected %q to fail", s)
		}
	}
}

func TestEmployeeSkillDefaults(t *testing.T) {
	e := Employee{Skills: map[string]float64{SkillArt: 140}}
	if got := e.Skill(SkillArt); got != 100 {
		t.Fatalf("clamped skill got=%v", got)
	}
	if got := e.Skill(SkillSound); got != defaultSkillLevel {
		t.Fatalf("missing skill got=%v", got)
	}
	var bare Employee
	if got := bare.Skill(SkillProgramming); got != defaultSkillLevel {
		t.Fatalf("nil skills got=%v", got)
	}
}
