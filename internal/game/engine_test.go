package game

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(rng Rand) *Engine {
	return NewEngine(DefaultConfig(), rng, nil, WithNow(func() time.Time { return testNow }))
}

func TestTickRejectsBadDayProgress(t *testing.T) {
	e := newTestEngine(fixed(0.5))
	for _, dp := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := e.Tick(NewGame(DefaultConfig()), dp)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDayProgress))
	}
	assert.Zero(t, e.Ticks())
}

func TestTickDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(fixed(0.01))
	st := staffedState()
	before := st.Clone()

	env, err := e.Tick(st, 1)
	require.NoError(t, err)
	require.False(t, env.Empty())
	assert.Equal(t, before, st)
}

func TestTickOrdering(t *testing.T) {
	e := newTestEngine(fixed(0.01))
	st := staffedState()
	st.Projects[0].Progress = 99.9
	st.Date = Date{Day: 30, Month: 12, Year: 1999}

	env, err := e.Tick(st, 1)
	require.NoError(t, err)

	require.NotNil(t, env.Date)
	assert.Equal(t, Date{Day: 1, Month: 1, Year: 2000}, *env.Date)

	require.Len(t, env.Completions, 1)
	assert.Equal(t, *env.Date, env.Completions[0].On, "completion uses the advanced date")
	assert.InDelta(t, 250, env.Finance.Payroll, 1e-9)

	ids := map[string]bool{}
	for _, u := range env.Unlocks {
		ids[u.ID] = true
	}
	assert.True(t, ids["first-ship"], "achievements see the completion from the same tick")
	assert.True(t, ids["first-hire"])

	st.Apply(env)
	assert.True(t, st.Projects[0].Completed)
	assert.Equal(t, 1, st.CompletedProjectCount())
}

func TestTickCarriesFractionalDays(t *testing.T) {
	e := newTestEngine(fixed(0.99))
	st := NewGame(DefaultConfig())

	days := 0
	for i := 0; i < 40; i++ {
		env, err := e.Tick(st, 0.25)
		require.NoError(t, err)
		if env.Date != nil {
			days++
		}
		st.Apply(env)
	}
	assert.Equal(t, 10, days)
	assert.Equal(t, Date{Day: 11, Month: 1, Year: 2000}, st.Date)
	assert.Equal(t, uint64(40), e.Ticks())
}

func TestTickMoraleStaysBounded(t *testing.T) {
	e := newTestEngine(NewRand(3))
	st := staffedState()
	st.Money = -1_000_000
	for i := 0; i < 200; i++ {
		env, err := e.Tick(st, 5)
		require.NoError(t, err)
		st.Apply(env)
		require.GreaterOrEqual(t, st.Morale, MoraleMin)
		require.LessOrEqual(t, st.Morale, MoraleMax)
	}
	assert.Equal(t, MoraleMin, st.Morale)
}

func TestApplySplitEqualsMerged(t *testing.T) {
	e := newTestEngine(fixed(0.01))
	st := staffedState()
	env, err := e.Tick(st, 1)
	require.NoError(t, err)

	a := st.Clone()
	a.Apply(env)

	b := st.Clone()
	b.Apply(Envelope{Date: env.Date, ProjectUpdates: env.ProjectUpdates, Completions: env.Completions})
	b.Apply(Envelope{Finance: env.Finance, Morale: env.Morale, Unlocks: env.Unlocks})
	b.Apply(Envelope{StockUpdates: env.StockUpdates, Dividends: env.Dividends, Alerts: env.Alerts})
	b.Apply(Envelope{MarketEvents: env.MarketEvents, Notifications: env.Notifications})

	assert.Equal(t, a, b)
}

type recordingSink struct {
	calls []string
}

func (r *recordingSink) UpdateTime(Date)                       { r.calls = append(r.calls, "UpdateTime") }
func (r *recordingSink) UpdateProject(ProjectUpdate)           { r.calls = append(r.calls, "UpdateProject") }
func (r *recordingSink) CompleteProject(ProjectCompletion)     { r.calls = append(r.calls, "CompleteProject") }
func (r *recordingSink) UpdateFinances(FinanceDelta)           { r.calls = append(r.calls, "UpdateFinances") }
func (r *recordingSink) UpdateMorale(float64)                  { r.calls = append(r.calls, "UpdateMorale") }
func (r *recordingSink) UnlockAchievement(UnlockedAchievement) { r.calls = append(r.calls, "UnlockAchievement") }
func (r *recordingSink) UpdateStockPrices([]StockUpdate)       { r.calls = append(r.calls, "UpdateStockPrices") }
func (r *recordingSink) ProcessDividendPayment(DividendPayment) {
	r.calls = append(r.calls, "ProcessDividendPayment")
}
func (r *recordingSink) TriggerPriceAlert(AlertTrigger) { r.calls = append(r.calls, "TriggerPriceAlert") }
func (r *recordingSink) AddMarketEvent(MarketEvent)     { r.calls = append(r.calls, "AddMarketEvent") }
func (r *recordingSink) AddNotification(Notification)   { r.calls = append(r.calls, "AddNotification") }

func TestDispatchOrder(t *testing.T) {
	morale := 50.0
	d := Date{Day: 2, Month: 1, Year: 2000}
	env := Envelope{
		Notifications:  []Notification{{}},
		MarketEvents:   []MarketEvent{{}},
		Alerts:         []AlertTrigger{{}},
		Dividends:      []DividendPayment{{}},
		StockUpdates:   []StockUpdate{{}},
		Unlocks:        []UnlockedAchievement{{}},
		Morale:         &morale,
		Finance:        FinanceDelta{Payroll: 1},
		Completions:    []ProjectCompletion{{}},
		ProjectUpdates: []ProjectUpdate{{}},
		Date:           &d,
	}
	sink := &recordingSink{}
	Dispatch(env, sink)
	assert.Equal(t, []string{
		"UpdateTime", "UpdateProject", "CompleteProject", "UpdateFinances", "UpdateMorale",
		"UnlockAchievement", "UpdateStockPrices", "ProcessDividendPayment", "TriggerPriceAlert",
		"AddMarketEvent", "AddNotification",
	}, sink.calls)

	empty := &recordingSink{}
	Dispatch(Envelope{}, empty)
	assert.Empty(t, empty.calls)
}

func TestNotificationsCapped(t *testing.T) {
	st := State{}
	for i := 0; i < MaxNotifications+10; i++ {
		st.Apply(Envelope{Notifications: []Notification{{Message: "n"}}})
	}
	assert.Len(t, st.Notifications, MaxNotifications)
}
