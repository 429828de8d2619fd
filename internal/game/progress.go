package game

import (
	"fmt"
	"math"
	"slices"
	"time"
)

const minProgressDelta = 0.01

// personalityBonus returns the first matching trait bonus. Innovative wins over Perfectionist.
func personalityBonus(traits []string) float64 {
	switch {
	case slices.Contains(traits, TraitInnovative):
		return 1.1
	case slices.Contains(traits, TraitPerfectionist):
		return 1.05
	}
	return 1.0
}

// SkillMatch scores how well e fits a project needing required at phase, in [0, phase multiplier].
func SkillMatch(e Employee, required []string, phase Phase) float64 {
	if len(required) == 0 {
		return 0.5 * phase.SkillMultiplier()
	}
	bonus := personalityBonus(e.Personality)
	var sum float64
	for _, skill := range required {
		sum += e.Skill(skill) * bonus
	}
	match := math.Min(1, sum/(float64(len(required))*100))
	return match * phase.SkillMultiplier()
}

func TeamProductivity(team []Employee, p Project, morale float64) float64 {
	moraleFactor := math.Max(0.1, morale/100)
	var total float64
	for _, e := range team {
		productivity := e.Productivity
		if productivity <= 0 || math.IsNaN(productivity) {
			productivity = defaultProductivity
		}
		total += productivity * SkillMatch(e, p.RequiredSkills, p.Phase) * moraleFactor
	}
	return total
}

func estimatedDays(p Project) float64 {
	if p.EstimatedDays <= 0 || math.IsNaN(p.EstimatedDays) {
		return defaultEstimatedDays
	}
	return p.EstimatedDays
}

// ProjectRevenue is the one-off payout for shipping p. reception is the market's random verdict in
// [0.8, 1.2).
func ProjectRevenue(p Project, morale, reception float64) float64 {
	quality := 0.2 + 0.3*(morale/100) + 0.1*float64(len(p.RequiredSkills))
	revenue := p.EstimatedRevenue *
		p.Size.RevenueMultiplier() *
		GenreMultiplier(p.Genre) *
		quality *
		reception *
		PlatformMultiplier(p.Platform)
	return math.Floor(revenue)
}

type progressResult struct {
	Updates     []ProjectUpdate
	Completions []ProjectCompletion
}

// AdvanceProjects moves every staffed in-progress project forward by dayProgress days of work.
// Projects crossing 100% complete exactly once, dated d.
func AdvanceProjects(st State, dayProgress float64, rng Rand, d Date, now time.Time) progressResult {
	var out progressResult
	for _, p := range st.Projects {
		if !p.Active() {
			continue
		}
		team := st.Team(p.ID)
		if len(team) == 0 {
			continue
		}
		productivity := TeamProductivity(team, p, st.Morale)
		next := math.Min(100, p.Progress+(100/estimatedDays(p))*(1+productivity*0.5)*dayProgress)
		crossed := next >= 100 && p.Progress < 100
		if next-p.Progress <= minProgressDelta && !crossed {
			continue
		}
		out.Updates = append(out.Updates, ProjectUpdate{
			ProjectID: p.ID,
			Progress:  next,
			Phase:     PhaseForProgress(next),
		})
		if crossed {
			out.Completions = append(out.Completions, ProjectCompletion{
				ProjectID: p.ID,
				Name:      p.Name,
				Size:      p.Size,
				Revenue:   ProjectRevenue(p, st.Morale, uniform(rng, 0.8, 1.2)),
				On:        d,
				At:        now,
			})
		}
	}
	return out
}

func (r progressResult) envelope(now time.Time) Envelope {
	env := Envelope{
		ProjectUpdates: r.Updates,
		Completions:    r.Completions,
	}
	for _, c := range r.Completions {
		env.Finance.Revenue += c.Revenue
		env.Notifications = append(env.Notifications, newNotification(
			fmt.Sprintf("%s shipped! Revenue: $%.0f", c.Name, c.Revenue), NotifySuccess, now))
	}
	return env
}
