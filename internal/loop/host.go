package loop

import (
	"context"
	"log/slog"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// DefaultFrameInterval approximates a 60Hz host frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Host drives a Stepper from a ticker when there is no render loop to hang it on.
type Host struct {
	Stepper  *Stepper
	Clock    Clock
	Interval time.Duration
	Speed    func() int
	OnFrame  func(FrameResult)
	Log      *slog.Logger
}

// Run calls Frame every Interval until ctx is done.
func (h Host) Run(ctx context.Context) error {
	logger := h.Log
	if logger == nil {
		logger = slog.Default()
	}
	clk := h.Clock
	if clk == nil {
		clk = RealClock{}
	}
	interval := h.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("loop started", "frame_interval", interval.String())
	h.Stepper.Frame(clk.Now(), h.Speed())
	for {
		select {
		case <-ctx.Done():
			logger.Info("loop shutdown")
			return nil
		case <-ticker.C:
			res := h.Stepper.Frame(clk.Now(), h.Speed())
			if res.Err != nil {
				continue
			}
			if h.OnFrame != nil && res.Ticks > 0 {
				h.OnFrame(res)
			}
		}
	}
}
