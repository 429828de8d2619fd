package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cl "devstudio/internal/cli"
	"devstudio/internal/config"
	"devstudio/internal/game"
	"devstudio/internal/savegame"
	"devstudio/internal/store"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	savePath := cfg.SavePath

	root := &cobra.Command{
		Use:          "studio",
		Short:        "Run a game development studio from your terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "studio server base URL")
	root.PersistentFlags().StringVar(&savePath, "save", savePath, "local save file for offline play")

	root.AddCommand(
		newPlayCmd(&cfg, &savePath),
		newSimulateCmd(&cfg, &savePath),
		newResetCmd(&savePath),
		newStatusCmd(&apiBase, &savePath),
		newSpeedCmd(&apiBase),
		newCandidatesCmd(&apiBase),
		newHireCmd(&apiBase),
		newFireCmd(&apiBase),
		newProjectCmd(&apiBase),
		newPlatformCmd(&apiBase),
		newStocksCmd(&apiBase),
		newTradeCmd(&apiBase, "buy"),
		newTradeCmd(&apiBase, "sell"),
		newAlertCmd(&apiBase),
		newWatchCmd(&apiBase),
		newNotificationsCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func cliLogger(cfg *config.CLIConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func newPlayCmd(cfg *config.CLIConfig, savePath *string) *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play offline in an interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameCfg := cfg.GameConfig()
			st, found, err := savegame.LoadOrNew(*savePath, gameCfg)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			// The TUI owns the terminal; keep engine logs quiet.
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			s := newSession(gameCfg, st, seed, *savePath, logger)
			if found {
				s.status = "Loaded " + *savePath
			}
			return runPlay(s)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func newSimulateCmd(cfg *config.CLIConfig, savePath *string) *cobra.Command {
	var (
		days  float64
		speed int
		seed  int64
		write bool
		fresh bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Fast-forward the local studio without a UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be > 0")
			}
			if speed <= 0 || speed > store.MaxSpeed {
				return fmt.Errorf("--speed must be between 1 and %d", store.MaxSpeed)
			}
			gameCfg := cfg.GameConfig()
			st := game.NewGame(gameCfg)
			if !fresh {
				loaded, _, err := savegame.LoadOrNew(*savePath, gameCfg)
				if err != nil {
					return err
				}
				st = loaded
			}
			res, err := simulate(gameCfg, st, seed, speed, days, cliLogger(cfg))
			if err != nil {
				return err
			}
			renderSimulation(res)
			if write {
				if err := savegame.Save(*savePath, res.Final, time.Now()); err != nil {
					return err
				}
				printSuccess("Saved to " + *savePath)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&days, "days", 30, "game days to simulate")
	cmd.Flags().IntVar(&speed, "speed", 10, "game speed to simulate at")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&write, "write", false, "write the result back to the save file")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the save file and start a new studio")
	return cmd
}

func newResetCmd(savePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the local save",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := savegame.Remove(*savePath); err != nil {
				return err
			}
			printSuccess("Local save removed.")
			return nil
		},
	}
}

func newStatusCmd(apiBase, savePath *string) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the studio dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				st, err := savegame.Load(*savePath)
				if err != nil {
					return err
				}
				renderStatus(cl.StateView{State: st, NetWorth: st.NetWorth(), PortfolioValue: st.PortfolioValue()})
				return nil
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).State(ctx)
			if err != nil {
				return err
			}
			renderStatus(view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "read the local save instead of the server")
	return cmd
}

func newSpeedCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "speed <n>",
		Short: "Set game speed (0 pauses)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("speed must be a whole number")
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := newClient(apiBase).SetSpeed(ctx, n); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Speed set to %dx.", n))
			return nil
		},
	}
}

func newCandidatesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List people on the job market",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			cands, cost, err := newClient(apiBase).Candidates(ctx)
			if err != nil {
				return err
			}
			renderCandidates(cands, cost)
			return nil
		},
	}
}

func newHireCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hire [candidate-id]",
		Short: "Hire a candidate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argOrPrompt(args, "Candidate ID")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			emp, err := newClient(apiBase).Hire(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Hired %s (%s) as %s.", emp.Name, emp.ID, emp.Type))
			return nil
		},
	}
}

func newFireCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fire <employee-id>",
		Short: "Let an employee go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := newClient(apiBase).Fire(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Employee released.")
			return nil
		},
	}
}

func newProjectCmd(apiBase *string) *cobra.Command {
	project := &cobra.Command{
		Use:     "project",
		Short:   "Create, staff and start game projects",
		Aliases: []string{"projects"},
	}

	var in store.ProjectInput
	var size string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a planned project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			in.Size = game.ProjectSize(strings.ToUpper(size))
			ctx, cancel := requestContext(cmd)
			defer cancel()
			p, err := newClient(apiBase).CreateProject(ctx, in)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Created %s (%s), about %.0f days of work.", p.Name, p.ID, p.EstimatedDays))
			return nil
		},
	}
	create.Flags().StringVar(&size, "size", string(game.SizeA), "project size: A, AA or AAA")
	create.Flags().StringVar(&in.Platform, "platform", "PC", "target platform")
	create.Flags().StringVar(&in.Genre, "genre", "", "genre")

	start := &cobra.Command{
		Use:   "start <project-id>",
		Short: "Start development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := newClient(apiBase).StartProject(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Development started.")
			return nil
		},
	}

	assign := &cobra.Command{
		Use:   "assign <employee-id> <project-id>",
		Short: "Put an employee on a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := newClient(apiBase).Assign(ctx, args[0], args[1]); err != nil {
				return err
			}
			printSuccess("Assigned.")
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).State(ctx)
			if err != nil {
				return err
			}
			renderProjects(view.State)
			return nil
		},
	}

	project.AddCommand(create, start, assign, list)
	return project
}

func newPlatformCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <platform>",
		Short: "Research a new platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			cost, err := newClient(apiBase).UnlockPlatform(ctx, args[0])
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Unlocked %s for %s.", args[0], formatMoney(cost)))
			return nil
		},
	}
}

func newStocksCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "stocks",
		Short:   "Show the market",
		Aliases: []string{"market"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			stocks, events, err := newClient(apiBase).Stocks(ctx)
			if err != nil {
				return err
			}
			renderStocks(stocks, events)
			return nil
		},
	}
}

func newTradeCmd(apiBase *string, side string) *cobra.Command {
	return &cobra.Command{
		Use:   side + " <symbol> [quantity]",
		Short: strings.ToUpper(side[:1]) + side[1:] + " shares",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			var qty int64
			if len(args) == 2 {
				n, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("quantity must be a whole number")
				}
				qty = n
			} else {
				n, err := promptInt64("Shares to "+side, 1)
				if err != nil {
					return err
				}
				qty = n
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			res, err := newClient(apiBase).PlaceOrder(ctx, symbol, side, qty)
			if err != nil {
				return err
			}
			renderTrade(side, res)
			return nil
		},
	}
}

func newAlertCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "alert <symbol> <above|below> <price>",
		Short: "Get notified when a price crosses a target",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("price must be a number")
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			a, err := newClient(apiBase).AddAlert(ctx, strings.ToUpper(args[0]), target, game.AlertDirection(strings.ToLower(args[1])))
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Alert set: %s %s %s.", a.StockID, a.Direction, formatMoney(a.Target)))
			return nil
		},
	}
}

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <symbol>",
		Short: "Add a stock to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := newClient(apiBase).Watch(ctx, strings.ToUpper(args[0])); err != nil {
				return err
			}
			printSuccess("Watching " + strings.ToUpper(args[0]) + ".")
			return nil
		},
	}
}

func newNotificationsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "inbox",
		Short:   "Show recent notifications",
		Aliases: []string{"notifications"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			notes, err := newClient(apiBase).Notifications(ctx)
			if err != nil {
				return err
			}
			renderNotifications(notes)
			return nil
		},
	}
}

func argOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	return promptRequired(label)
}
