package game

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Engine turns one tick's day progress into an Envelope. It never mutates the state it is given.
type Engine struct {
	cfg          Config
	rng          Rand
	log          *slog.Logger
	now          func() time.Time
	achievements []Achievement

	mu       sync.Mutex
	dayCarry float64
	ticks    uint64
}

type EngineOption func(*Engine)

func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithAchievements(table []Achievement) EngineOption {
	return func(e *Engine) {
		e.achievements = table
	}
}

func NewEngine(cfg Config, rng Rand, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = NewRand(0)
	}
	e := &Engine{
		cfg:          cfg,
		rng:          rng,
		log:          logger,
		now:          time.Now,
		achievements: DefaultAchievements(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Tick runs every updater against st in a fixed order: date, projects, payroll, morale,
// achievements, then the market. Each step sees the changes of the steps before it.
func (e *Engine) Tick(st State, dayProgress float64) (Envelope, error) {
	if dayProgress < 0 || math.IsNaN(dayProgress) || math.IsInf(dayProgress, 0) {
		return Envelope{}, fmt.Errorf("tick: %w: %v", ErrInvalidDayProgress, dayProgress)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	work := st.Clone()
	env := Envelope{DayProgress: dayProgress}
	step := func(part Envelope) {
		work.Apply(part)
		env.merge(part)
	}

	step(e.advanceDate(work.Date, dayProgress))

	progress := AdvanceProjects(work, dayProgress, e.rng, work.Date, now)
	step(progress.envelope(now))
	for _, c := range progress.Completions {
		e.log.Info("project completed", "project_id", c.ProjectID, "name", c.Name, "revenue", c.Revenue, "date", c.On.String())
	}

	if payroll := Payroll(work.Employees, dayProgress, e.cfg); payroll != 0 {
		step(Envelope{Finance: FinanceDelta{Payroll: payroll}})
	}

	if delta := MoraleDelta(work, dayProgress, now); delta != 0 {
		next := ApplyMoraleBounds(work.Morale, delta)
		if next != work.Morale {
			step(Envelope{Morale: &next})
		}
	}

	if unlocks := EvaluateAchievements(e.achievements, work, now); len(unlocks) > 0 {
		step(unlockEnvelope(unlocks, now))
		for _, u := range unlocks {
			e.log.Info("achievement unlocked", "id", u.ID, "reward", u.Reward)
		}
	}

	step(StepMarket(e.cfg, work, dayProgress, e.rng, now))

	e.ticks++
	return env, nil
}

// advanceDate emits a date change only when the calendar day moves. Sub-day progress is carried
// until it adds up to a whole day.
func (e *Engine) advanceDate(d Date, dayProgress float64) Envelope {
	e.dayCarry += dayProgress
	next, rest := CalculateNewGameDate(e.cfg, d, e.dayCarry)
	e.dayCarry = rest
	if next == d {
		return Envelope{}
	}
	return Envelope{Date: &next}
}

// ResetCarry drops any fractional day progress, e.g. after a state restore.
func (e *Engine) ResetCarry() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dayCarry = 0
}
