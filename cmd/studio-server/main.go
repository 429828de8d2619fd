package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devstudio/internal/api"
	"devstudio/internal/config"
	"devstudio/internal/db"
	"devstudio/internal/game"
	"devstudio/internal/loop"
	"devstudio/internal/scheduler"
	"devstudio/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	gameCfg := cfg.GameConfig()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := game.NewEngine(gameCfg, game.NewRand(seed), logger.With("component", "engine"))

	initial := game.NewGame(gameCfg)
	initial.Speed = cfg.StartSpeed
	mem := store.NewMemory(gameCfg, initial, logger.With("component", "store"))

	var history api.PriceHistorian
	sched := scheduler.New(logger)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		journal := store.NewJournal(pool, logger.With("component", "journal"))
		if err := journal.EnsureSchema(ctx); err != nil {
			logger.Error("schema init failed", "err", err)
			os.Exit(1)
		}
		if cfg.RestoreSnapshot {
			saved, ok, err := journal.LatestSnapshot(ctx)
			if err != nil {
				logger.Error("snapshot load failed", "err", err)
				os.Exit(1)
			}
			if ok {
				mem.Restore(saved)
				engine.ResetCarry()
				logger.Info("restored snapshot", "date", saved.Date.String(), "money", saved.Money)
			}
		}
		history = journal

		job := store.NewPersistJob(mem, journal, logger.With("component", "persist"))
		if err := sched.AddJob(cfg.PersistSchedule, job); err != nil {
			logger.Error("schedule persist failed", "err", err)
			os.Exit(1)
		}
		sched.Start()
		defer func() {
			sched.Stop()
			// One last flush so the final ticks are not lost.
			if err := sched.RunNow(job); err != nil {
				logger.Error("final persist failed", "err", err)
			}
		}()
	} else {
		logger.Warn("DATABASE_URL not set, running without persistence")
	}

	stepper := loop.NewStepper(loop.StepperConfig{GameDaysPerRealSecond: gameCfg.GameDaysPerRealSecond}, func(dp float64) error {
		_, err := mem.Advance(engine, dp)
		return err
	}, logger.With("component", "stepper"))

	host := loop.Host{
		Stepper:  stepper,
		Interval: cfg.FrameInterval,
		Speed:    mem.Speed,
		Log:      logger.With("component", "loop"),
		OnFrame: func(res loop.FrameResult) {
			if res.Shed {
				logger.Debug("frame shed backlog", "ticks", res.Ticks)
			}
		},
	}
	loopDone := make(chan error, 1)
	go func() { loopDone <- host.Run(ctx) }()

	server := api.New(logger.With("component", "api"), mem, history)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("studio server listening", "addr", cfg.Addr, "volatility", cfg.MarketVolatility, "seed", seed)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	<-loopDone
}
