package game

import (
	"time"
)

const completionBoostWindow = 30 * 24 * time.Hour

type traitPair [2]string

func orderedPair(a, b string) traitPair {
	if a > b {
		a, b = b, a
	}
	return traitPair{a, b}
}

// traitAffinity scores one pair of traits: +0.5 for synergy, -0.3 for conflict.
var traitAffinity = map[traitPair]float64{
	orderedPair(TraitCollaborative, TraitLeader):      0.5,
	orderedPair(TraitCollaborative, TraitExtrovert):   0.5,
	orderedPair(TraitCreative, TraitInnovative):       0.5,
	orderedPair(TraitAnalytical, TraitPerfectionist):  0.5,
	orderedPair(TraitWorkaholic, TraitLeader):         0.5,
	orderedPair(TraitRelaxed, TraitCreative):          0.5,
	orderedPair(TraitIntrovert, TraitAnalytical):      0.5,
	orderedPair(TraitWorkaholic, TraitRelaxed):        -0.3,
	orderedPair(TraitIntrovert, TraitExtrovert):       -0.3,
	orderedPair(TraitPerfectionist, TraitRelaxed):     -0.3,
	orderedPair(TraitLeader, TraitLeader):             -0.3,
	orderedPair(TraitInnovative, TraitAnalytical):     -0.3,
	orderedPair(TraitPerfectionist, TraitInnovative):  -0.3,
}

// WorkloadDelta is the per-day morale change from project load.
func WorkloadDelta(st State) float64 {
	var impact float64
	active := 0
	for _, p := range st.Projects {
		if !p.Active() {
			continue
		}
		active++
		impact += p.Phase.WorkloadImpact()
	}
	if impact > 3.0 {
		return -10
	}
	ratio := float64(active) / float64(max(1, len(st.Employees)))
	switch {
	case ratio > 2.5:
		return -8
	case ratio > 1.5:
		return -3
	case ratio < 0.5:
		return 2
	}
	return 0
}

// FinancialDelta is the per-day morale change from the bank balance. The first matching tier wins.
func FinancialDelta(money float64) float64 {
	switch {
	case money < 5_000:
		return -5
	case money < 25_000:
		return -2
	case money < 100_000:
		return 1
	}
	return 0
}

// CompletionBoost is the per-day lift from titles shipped in the last 30 real-world days.
func CompletionBoost(projects []Project, now time.Time) float64 {
	var boost float64
	for _, p := range projects {
		if !p.Completed || p.CompletedAt.IsZero() {
			continue
		}
		if now.Sub(p.CompletedAt) > completionBoostWindow {
			continue
		}
		quality := 1.0
		if p.Progress >= 95 {
			quality = 1.2
		}
		boost += 0.5 * p.Size.MoraleBonus() * quality
	}
	return boost
}

// HarmonyDelta averages trait affinity over every pair of employees. Each pair scores the sum of its
// trait-pair affinities.
func HarmonyDelta(employees []Employee) float64 {
	if len(employees) < 2 {
		return 0
	}
	var total float64
	pairs := 0
	for i := 0; i < len(employees); i++ {
		for j := i + 1; j < len(employees); j++ {
			pairs++
			for _, a := range employees[i].Personality {
				for _, b := range employees[j].Personality {
					total += traitAffinity[orderedPair(a, b)]
				}
			}
		}
	}
	return total / float64(pairs)
}

// MoraleDelta sums every morale driver and scales by dayProgress.
func MoraleDelta(st State, dayProgress float64, now time.Time) float64 {
	perDay := WorkloadDelta(st) +
		FinancialDelta(st.Money) +
		CompletionBoost(st.Projects, now) +
		HarmonyDelta(st.Employees)
	return perDay * dayProgress
}
