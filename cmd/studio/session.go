package main

import (
	"fmt"
	"log/slog"
	"time"

	"devstudio/internal/game"
	"devstudio/internal/loop"
	"devstudio/internal/savegame"
	"devstudio/internal/store"
)

// session is one offline studio: the store, the engine and the stepper that drives it.
type session struct {
	cfg      game.Config
	mem      *store.Memory
	engine   *game.Engine
	stepper  *loop.Stepper
	savePath string
	log      *slog.Logger

	status    string
	lastSpeed int
	savedAt   time.Time
	stats     simStats
}

type simStats struct {
	Frames      int
	Ticks       int
	Shed        int
	Completions int
	Unlocks     int
	Dividends   float64
	Days        float64
}

func newSession(cfg game.Config, st game.State, seed int64, savePath string, logger *slog.Logger) *session {
	s := &session{
		cfg:       cfg,
		mem:       store.NewMemory(cfg, st, logger),
		engine:    game.NewEngine(cfg, game.NewRand(seed), logger),
		savePath:  savePath,
		log:       logger,
		lastSpeed: max(st.Speed, 1),
	}
	s.stepper = loop.NewStepper(loop.StepperConfig{GameDaysPerRealSecond: cfg.GameDaysPerRealSecond}, s.tick, logger)
	return s
}

func (s *session) tick(dayProgress float64) error {
	env, err := s.mem.Advance(s.engine, dayProgress)
	if err != nil {
		return err
	}
	s.stats.Ticks++
	s.stats.Days += dayProgress
	s.stats.Completions += len(env.Completions)
	s.stats.Unlocks += len(env.Unlocks)
	s.stats.Dividends += env.Finance.Dividends
	return nil
}

func (s *session) frame(now time.Time) loop.FrameResult {
	res := s.stepper.Frame(now, s.mem.Speed())
	s.stats.Frames++
	if res.Shed {
		s.stats.Shed++
	}
	return res
}

func (s *session) togglePause() {
	if speed := s.mem.Speed(); speed > 0 {
		s.lastSpeed = speed
		_ = s.mem.SetSpeed(0)
		s.status = "Paused"
		return
	}
	_ = s.mem.SetSpeed(s.lastSpeed)
	s.status = fmt.Sprintf("Resumed at %dx", s.lastSpeed)
}

var speedSteps = []int{1, 2, 5, 10, 25, 50, 100}

// shiftSpeed moves one notch along speedSteps.
func (s *session) shiftSpeed(dir int) {
	cur := s.mem.Speed()
	if cur == 0 {
		cur = s.lastSpeed
	}
	i := 0
	for i < len(speedSteps)-1 && speedSteps[i] < cur {
		i++
	}
	i = min(max(i+dir, 0), len(speedSteps)-1)
	_ = s.mem.SetSpeed(speedSteps[i])
	s.lastSpeed = speedSteps[i]
	s.status = fmt.Sprintf("Speed %dx", speedSteps[i])
}

// hireNext hires the first candidate still on the market.
func (s *session) hireNext() {
	cands := s.mem.Candidates()
	if len(cands) == 0 {
		s.status = "Nobody left on the job market"
		return
	}
	emp, err := s.mem.Hire(cands[0].ID)
	if err != nil {
		s.status = "Hire failed: " + err.Error()
		return
	}
	s.status = fmt.Sprintf("Hired %s (%s)", emp.Name, emp.Type)
}

// quickProject starts a small project on the first platform and puts every idle employee on it.
func (s *session) quickProject() {
	st := s.mem.Snapshot()
	genre := game.Genres[len(st.Projects)%len(game.Genres)]
	name := fmt.Sprintf("%s Project %d", genre, len(st.Projects)+1)
	p, err := s.mem.CreateProject(store.ProjectInput{Name: name, Size: game.SizeA, Platform: st.Platforms[0], Genre: genre})
	if err != nil {
		s.status = "Project failed: " + err.Error()
		return
	}
	staffed := 0
	for _, e := range st.Employees {
		if e.AssignedProjectID != "" {
			if i := st.ProjectIndex(e.AssignedProjectID); i >= 0 && st.Projects[i].Active() {
				continue
			}
		}
		if err := s.mem.AssignEmployee(e.ID, p.ID); err == nil {
			staffed++
		}
	}
	if err := s.mem.StartProject(p.ID); err != nil {
		s.status = "Start failed: " + err.Error()
		return
	}
	s.status = fmt.Sprintf("Started %s with %d staff", p.Name, staffed)
}

// buyTop buys ten shares of the best-trending stock.
func (s *session) buyTop() {
	st := s.mem.Snapshot()
	if len(st.Stocks) == 0 {
		return
	}
	best := st.Stocks[0]
	for _, stock := range st.Stocks[1:] {
		if stock.Trend > best.Trend {
			best = stock
		}
	}
	res, err := s.mem.BuyStock(best.ID, 10)
	if err != nil {
		s.status = "Buy failed: " + err.Error()
		return
	}
	s.status = fmt.Sprintf("Bought %d %s for %s", res.Quantity, best.Symbol, formatMoney(res.Notional))
}

func (s *session) save(now time.Time) error {
	if err := savegame.Save(s.savePath, s.mem.Snapshot(), now); err != nil {
		return err
	}
	s.savedAt = now
	return nil
}

type simResult struct {
	Start game.State
	Final game.State
	Stats simStats
}

// simulate runs the stepper against a synthetic clock at 60 frames per second until days have passed.
func simulate(cfg game.Config, st game.State, seed int64, speed int, days float64, logger *slog.Logger) (simResult, error) {
	s := newSession(cfg, st, seed, "", logger)
	if err := s.mem.SetSpeed(speed); err != nil {
		return simResult{}, err
	}
	start := s.mem.Snapshot()

	const frame = time.Second / 60
	now := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	maxFrames := int(days/s.stepper.DayProgress(speed))*2 + 120
	s.frame(now)
	for s.stats.Days < days {
		if s.stats.Frames > maxFrames {
			return simResult{}, fmt.Errorf("simulation stalled after %d frames", s.stats.Frames)
		}
		now = now.Add(frame)
		if res := s.frame(now); res.Err != nil {
			return simResult{}, res.Err
		}
	}
	return simResult{Start: start, Final: s.mem.Snapshot(), Stats: s.stats}, nil
}
