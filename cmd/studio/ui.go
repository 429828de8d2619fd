package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	cl "devstudio/internal/cli"
	"devstudio/internal/game"
	"devstudio/internal/store"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderStatus(v cl.StateView) {
	st := v.State
	accent.Printf("\n== STUDIO (%s, speed %dx) ==\n", st.Date.String(), st.Speed)
	fmt.Printf("Cash:          %s\n", colorizeMoney(st.Money))
	fmt.Printf("Net Worth:     %s\n", formatMoney(v.NetWorth))
	fmt.Printf("Portfolio:     %s\n", formatMoney(v.PortfolioValue))
	fmt.Printf("Realized P/L:  %s\n", colorizeMoney(st.Portfolio.RealizedGainLoss))
	fmt.Printf("Dividends:     %s\n", formatMoney(st.Portfolio.TotalDividends))
	fmt.Printf("Morale:        %.1f\n", st.Morale)
	fmt.Printf("Reputation:    %.1f\n", st.Reputation)
	fmt.Printf("Platforms:     %s\n", strings.Join(st.Platforms, ", "))
	if v.HireCost > 0 {
		fmt.Printf("Next Hire:     %s\n", formatMoney(v.HireCost))
	}

	fmt.Println()
	accent.Println("Team")
	if len(st.Employees) == 0 {
		printInfo("Nobody hired yet. Try `studio candidates`.")
	} else {
		fmt.Printf("%-10s %-18s %-10s %10s %-20s\n", "ID", "NAME", "ROLE", "SALARY", "PROJECT")
		for _, e := range st.Employees {
			project := "-"
			if i := st.ProjectIndex(e.AssignedProjectID); i >= 0 {
				project = st.Projects[i].Name
			}
			fmt.Printf("%-10s %-18s %-10s %10s %-20s\n",
				truncate(e.ID, 10), truncate(e.Name, 18), e.Type, formatMoney(e.Salary), truncate(project, 20))
		}
	}

	renderProjects(st)

	if len(st.Portfolio.Holdings) > 0 {
		accent.Println("Holdings")
		ids := make([]string, 0, len(st.Portfolio.Holdings))
		for id := range st.Portfolio.Holdings {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Printf("%-6s %8s %12s %12s %14s\n", "STOCK", "QTY", "AVG", "NOW", "P/L")
		for _, id := range ids {
			h := st.Portfolio.Holdings[id]
			price := 0.0
			if i := st.StockIndex(id); i >= 0 {
				price = st.Stocks[i].Price
			}
			fmt.Printf("%-6s %8d %12s %12s %14s\n",
				id, h.Quantity, formatMoney(h.AvgPrice), formatMoney(price), colorizeMoney((price-h.AvgPrice)*float64(h.Quantity)))
		}
		fmt.Println()
	}

	if len(st.Achievements) > 0 {
		accent.Println("Achievements")
		for _, a := range st.Achievements {
			fmt.Printf("  %s %s\n", success.Sprint("*"), a.Title)
		}
		fmt.Println()
	}
}

func renderProjects(st game.State) {
	fmt.Println()
	accent.Println("Projects")
	if len(st.Projects) == 0 {
		printInfo("No projects yet. Try `studio project create <name>`.")
		fmt.Println()
		return
	}
	fmt.Printf("%-10s %-20s %-4s %-8s %-12s %8s %-12s %12s\n", "ID", "NAME", "SIZE", "PLATFORM", "STATUS", "PROGRESS", "PHASE", "REVENUE")
	for _, p := range st.Projects {
		revenue := "-"
		if p.Completed {
			revenue = formatMoney(p.FinalRevenue)
		}
		fmt.Printf("%-10s %-20s %-4s %-8s %-12s %7.1f%% %-12s %12s\n",
			truncate(p.ID, 10), truncate(p.Name, 20), p.Size, truncate(p.Platform, 8), p.Status, p.Progress, p.Phase, revenue)
	}
	fmt.Println()
}

func renderCandidates(cands []game.Candidate, hireCost float64) {
	accent.Printf("\n== JOB MARKET (hire cost %s) ==\n", formatMoney(hireCost))
	if len(cands) == 0 {
		printInfo("Nobody is looking for work.")
		return
	}
	fmt.Printf("%-8s %-18s %-10s %8s %6s %10s %-24s\n", "ID", "NAME", "ROLE", "PRIMARY", "PROD", "SALARY", "TRAITS")
	for _, c := range cands {
		fmt.Printf("%-8s %-18s %-10s %8.0f %6.2f %10s %-24s\n",
			c.ID, truncate(c.Name, 18), c.Type, c.Skills[c.Type.PrimarySkill()], c.Productivity,
			formatMoney(c.Salary), truncate(strings.Join(c.Personality, ","), 24))
	}
	fmt.Println()
}

func renderStocks(stocks []game.Stock, events []game.MarketEvent) {
	accent.Println("\n== MARKET ==")
	fmt.Printf("%-6s %-22s %-10s %12s %9s %7s\n", "SYMBOL", "NAME", "SECTOR", "PRICE", "CHANGE", "YIELD")
	for _, s := range stocks {
		yield := "-"
		if s.DividendYield > 0 {
			yield = fmt.Sprintf("%.1f%%", s.DividendYield*100)
		}
		fmt.Printf("%-6s %-22s %-10s %12s %9s %7s\n",
			s.Symbol, truncate(s.Name, 22), s.Sector, formatMoney(s.Price), colorizePercent(change(s)), yield)
	}
	if len(events) > 0 {
		fmt.Println()
		accent.Println("Recent events")
		for i := len(events) - 1; i >= 0 && i >= len(events)-5; i-- {
			ev := events[i]
			fmt.Printf("  %s  %s (%s)\n", ev.On.String(), ev.Name, colorizePercent(ev.Impact*100))
		}
	}
	fmt.Println()
}

func renderTrade(side string, res store.TradeResult) {
	verb := "Bought"
	if side == "sell" {
		verb = "Sold"
	}
	printSuccess(fmt.Sprintf("%s %d %s @ %s (total %s)", verb, res.Quantity, res.StockID, formatMoney(res.Price), formatMoney(res.Notional)))
	if side == "sell" {
		fmt.Printf("Realized: %s\n", colorizeMoney(res.Realized))
	}
}

func renderNotifications(notes []game.Notification) {
	accent.Println("\n== INBOX ==")
	if len(notes) == 0 {
		printInfo("Nothing new.")
		return
	}
	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		c := neutral
		switch n.Type {
		case game.NotifySuccess:
			c = success
		case game.NotifyWarning:
			c = warn
		case game.NotifyMarket:
			c = accent
		}
		fmt.Printf("%s  %s\n", n.At.Local().Format("15:04:05"), c.Sprint(n.Message))
	}
	fmt.Println()
}

func renderSimulation(res simResult) {
	accent.Printf("\n== SIMULATION %s -> %s ==\n", res.Start.Date.String(), res.Final.Date.String())
	fmt.Printf("Frames / Ticks:  %d / %d (shed %d)\n", res.Stats.Frames, res.Stats.Ticks, res.Stats.Shed)
	fmt.Printf("Game days:       %.2f\n", res.Stats.Days)
	fmt.Printf("Cash:            %s -> %s (%s)\n", formatMoney(res.Start.Money), formatMoney(res.Final.Money), colorizeMoney(res.Final.Money-res.Start.Money))
	fmt.Printf("Net worth:       %s\n", formatMoney(res.Final.NetWorth()))
	fmt.Printf("Morale:          %.1f -> %.1f\n", res.Start.Morale, res.Final.Morale)
	fmt.Printf("Projects shipped:%d\n", res.Stats.Completions)
	fmt.Printf("Achievements:    %d\n", res.Stats.Unlocks)
	fmt.Printf("Dividends:       %s\n", formatMoney(res.Stats.Dividends))

	notes := newNotifications(res.Start, res.Final)
	if len(notes) > 10 {
		notes = notes[len(notes)-10:]
	}
	renderNotifications(notes)
}

// newNotifications returns what final has that start did not.
func newNotifications(start, final game.State) []game.Notification {
	seen := make(map[string]struct{}, len(start.Notifications))
	for _, n := range start.Notifications {
		seen[n.ID] = struct{}{}
	}
	var out []game.Notification
	for _, n := range final.Notifications {
		if _, ok := seen[n.ID]; !ok {
			out = append(out, n)
		}
	}
	return out
}

func colorizeMoney(v float64) string {
	text := formatMoney(v)
	if v > 0 {
		text = "+" + text
	}
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, comma(cents/100), cents%100)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
