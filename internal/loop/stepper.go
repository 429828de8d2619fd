package loop

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

const (
	// FixedTimeStep is one simulation tick of real time, in milliseconds.
	FixedTimeStep = 1000.0 / 60.0

	DefaultMaxFrameTime  = 50 * time.Millisecond
	DefaultSkipThreshold = 5 * time.Second
)

// TickFunc runs one simulation tick worth dayProgress game days.
type TickFunc func(dayProgress float64) error

type StepperConfig struct {
	GameDaysPerRealSecond float64
	MaxFrameTime          time.Duration
	SkipThreshold         time.Duration
}

type FrameResult struct {
	Ticks       int
	DayProgress float64
	Skipped     bool
	Shed        bool
	Accumulator float64
	Err         error
}

// Stepper converts wall-clock frame deltas into a bounded number of fixed ticks.
type Stepper struct {
	cfg  StepperConfig
	tick TickFunc
	log  *slog.Logger

	mu          sync.Mutex
	lastUpdate  time.Time
	accumulator float64
}

func NewStepper(cfg StepperConfig, tick TickFunc, logger *slog.Logger) *Stepper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GameDaysPerRealSecond <= 0 {
		cfg.GameDaysPerRealSecond = 1
	}
	if cfg.MaxFrameTime <= 0 {
		cfg.MaxFrameTime = DefaultMaxFrameTime
	}
	if cfg.SkipThreshold <= 0 {
		cfg.SkipThreshold = DefaultSkipThreshold
	}
	return &Stepper{cfg: cfg, tick: tick, log: logger}
}

// SpeedBuffer is the most real time, in milliseconds, the accumulator may hold at speed.
func SpeedBuffer(speed int) float64 {
	return FixedTimeStep * 10 * math.Log2(float64(speed)+1)
}

// MaxIterations caps the ticks one frame may run at speed.
func MaxIterations(speed int) int {
	return max(3, int(math.Floor(math.Log2(float64(speed)+1)*3)))
}

// TimeStep is the simulated seconds one tick covers. It grows sub-linearly with speed.
func TimeStep(speed int) float64 {
	return (FixedTimeStep / 1000) * math.Pow(float64(speed), 0.75)
}

func (s *Stepper) DayProgress(speed int) float64 {
	return TimeStep(speed) * s.cfg.GameDaysPerRealSecond
}

// Frame is called once per host frame. A speed of zero pauses the game.
func (s *Stepper) Frame(now time.Time, speed int) FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastUpdate.IsZero() {
		s.lastUpdate = now
		return FrameResult{Skipped: true}
	}
	raw := now.Sub(s.lastUpdate)
	s.lastUpdate = now

	if speed <= 0 || raw > s.cfg.SkipThreshold {
		s.accumulator = 0
		return FrameResult{Skipped: true}
	}
	delta := min(raw, s.cfg.MaxFrameTime)
	if delta < 0 {
		delta = 0
	}
	s.accumulator = math.Min(s.accumulator+float64(delta)/float64(time.Millisecond), SpeedBuffer(speed))

	res := FrameResult{DayProgress: s.DayProgress(speed)}
	limit := MaxIterations(speed)
	for s.accumulator >= FixedTimeStep && res.Ticks < limit {
		if err := s.safeTick(res.DayProgress); err != nil {
			s.log.Error("tick failed, dropping rest of frame", "err", err, "ticks", res.Ticks)
			res.Err = err
			break
		}
		s.accumulator -= FixedTimeStep
		res.Ticks++
	}
	if res.Ticks >= limit {
		s.accumulator = 0
		res.Shed = true
	}
	res.Accumulator = s.accumulator
	return res
}

func (s *Stepper) safeTick(dayProgress float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panic: %v", r)
		}
	}()
	return s.tick(dayProgress)
}

func (s *Stepper) Accumulator() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accumulator
}

// Reset forgets the last frame time, e.g. after the game was paused for a long time.
func (s *Stepper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = time.Time{}
	s.accumulator = 0
}
