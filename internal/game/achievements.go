package game

import (
	"fmt"
	"time"
)

type Achievement struct {
	ID          string
	Title       string
	Description string
	Category    string
	Reward      float64
	Condition   func(State) bool
}

// DefaultAchievements is the built-in achievement table. Conditions must not mutate the state.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID: "first-hire", Title: "First Hire", Category: "team",
			Description: "Hire your first employee.",
			Reward:      1_000,
			Condition:   func(s State) bool { return len(s.Employees) >= 1 },
		},
		{
			ID: "full-house", Title: "Full House", Category: "team",
			Description: "Have 10 employees on payroll.",
			Reward:      10_000,
			Condition:   func(s State) bool { return len(s.Employees) >= 10 },
		},
		{
			ID: "first-ship", Title: "Gone Gold", Category: "projects",
			Description: "Ship your first game.",
			Reward:      5_000,
			Condition:   func(s State) bool { return s.CompletedProjectCount() >= 1 },
		},
		{
			ID: "prolific", Title: "Prolific", Category: "projects",
			Description: "Ship 5 games.",
			Reward:      25_000,
			Condition:   func(s State) bool { return s.CompletedProjectCount() >= 5 },
		},
		{
			ID: "blockbuster", Title: "Blockbuster", Category: "projects",
			Description: "Ship an AAA title.",
			Reward:      50_000,
			Condition: func(s State) bool {
				for _, p := range s.Projects {
					if p.Completed && p.Size == SizeAAA {
						return true
					}
				}
				return false
			},
		},
		{
			ID: "six-figures", Title: "Six Figures", Category: "finance",
			Description: "Hold $100,000 in the bank.",
			Reward:      2_500,
			Condition:   func(s State) bool { return s.Money >= 100_000 },
		},
		{
			ID: "millionaire", Title: "Millionaire", Category: "finance",
			Description: "Hold $1,000,000 in the bank.",
			Reward:      25_000,
			Condition:   func(s State) bool { return s.Money >= 1_000_000 },
		},
		{
			ID: "happy-team", Title: "Happy Team", Category: "team",
			Description: "Reach 90 morale with at least 3 employees.",
			Reward:      3_000,
			Condition:   func(s State) bool { return s.Morale >= 90 && len(s.Employees) >= 3 },
		},
		{
			ID: "first-trade", Title: "Market Debut", Category: "market",
			Description: "Own shares of any stock.",
			Reward:      500,
			Condition: func(s State) bool {
				for _, h := range s.Portfolio.Holdings {
					if h.Quantity > 0 {
						return true
					}
				}
				return false
			},
		},
		{
			ID: "dividend-collector", Title: "Dividend Collector", Category: "market",
			Description: "Receive your first dividend.",
			Reward:      1_000,
			Condition:   func(s State) bool { return s.Portfolio.TotalDividends > 0 },
		},
		{
			ID: "diversified", Title: "Diversified", Category: "market",
			Description: "Hold stocks in 3 different sectors.",
			Reward:      5_000,
			Condition: func(s State) bool {
				sectors := make(map[Sector]struct{})
				for id, h := range s.Portfolio.Holdings {
					if i := s.StockIndex(id); i >= 0 && h.Quantity > 0 {
						sectors[s.Stocks[i].Sector] = struct{}{}
					}
				}
				return len(sectors) >= 3
			},
		},
		{
			ID: "multi-platform", Title: "Multi-platform", Category: "research",
			Description: "Unlock 4 platforms.",
			Reward:      7_500,
			Condition:   func(s State) bool { return len(s.Platforms) >= 4 },
		},
		{
			ID: "veteran", Title: "Veteran Studio", Category: "time",
			Description: "Survive until year 2005.",
			Reward:      20_000,
			Condition:   func(s State) bool { return s.Date.Year >= 2005 },
		},
	}
}

// EvaluateAchievements returns an unlock for every achievement whose condition now holds and that
// st has not unlocked yet.
func EvaluateAchievements(table []Achievement, st State, now time.Time) []UnlockedAchievement {
	var unlocks []UnlockedAchievement
	for _, a := range table {
		if a.Condition == nil || st.AchievementUnlocked(a.ID) {
			continue
		}
		if !a.Condition(st) {
			continue
		}
		unlocks = append(unlocks, UnlockedAchievement{
			ID:         a.ID,
			Title:      a.Title,
			Category:   a.Category,
			Reward:     a.Reward,
			UnlockedAt: now,
		})
	}
	return unlocks
}

func unlockEnvelope(unlocks []UnlockedAchievement, now time.Time) Envelope {
	env := Envelope{Unlocks: unlocks}
	for _, u := range unlocks {
		env.Notifications = append(env.Notifications, newNotification(
			fmt.Sprintf("Achievement unlocked: %s (+$%.0f)", u.Title, u.Reward), NotifySuccess, now))
	}
	return env
}
