package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devstudio/internal/game"
	"devstudio/internal/loop"
)

const (
	frameInterval    = loop.DefaultFrameInterval
	autosaveInterval = 30 * time.Second
)

type keyMap struct {
	Pause   key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Hire    key.Binding
	Project key.Binding
	Buy     key.Binding
	Save    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Faster, k.Slower, k.Hire, k.Project, k.Buy, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Pause:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
	Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Hire:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hire")),
	Project: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new project")),
	Buy:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "buy top stock")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "save & quit")),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6B50FF"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4D4C57")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#858392"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFB2"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E94090"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD300"))
)

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

type playModel struct {
	s     *session
	help  help.Model
	width int
	err   error
}

func newPlayModel(s *session) playModel {
	return playModel{s: s, help: help.New()}
}

func runPlay(s *session) error {
	m, err := tea.NewProgram(newPlayModel(s), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if pm, ok := m.(playModel); ok && pm.err != nil {
		return pm.err
	}
	return nil
}

func (m playModel) Init() tea.Cmd {
	return nextFrame()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case frameMsg:
		now := time.Time(msg)
		if res := m.s.frame(now); res.Err != nil {
			m.s.status = "Tick failed: " + res.Err.Error()
		}
		if m.s.savePath != "" && now.Sub(m.s.savedAt) >= autosaveInterval {
			if err := m.s.save(now); err != nil {
				m.s.status = "Autosave failed: " + err.Error()
			}
		}
		return m, nextFrame()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.s.savePath != "" {
				m.err = m.s.save(time.Now())
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.s.togglePause()
		case key.Matches(msg, keys.Faster):
			m.s.shiftSpeed(1)
		case key.Matches(msg, keys.Slower):
			m.s.shiftSpeed(-1)
		case key.Matches(msg, keys.Hire):
			m.s.hireNext()
		case key.Matches(msg, keys.Project):
			m.s.quickProject()
		case key.Matches(msg, keys.Buy):
			m.s.buyTop()
		case key.Matches(msg, keys.Save):
			if err := m.s.save(time.Now()); err != nil {
				m.s.status = "Save failed: " + err.Error()
			} else {
				m.s.status = "Saved"
			}
		}
	}
	return m, nil
}

func (m playModel) View() string {
	st := m.s.mem.Snapshot()

	speed := fmt.Sprintf("%dx", st.Speed)
	if st.Speed == 0 {
		speed = warnStyle.Render("paused")
	}
	header := titleStyle.Render("DEV STUDIO") + "  " +
		labelStyle.Render(st.Date.String()) + "  " + speed

	stats := strings.Join([]string{
		row("Cash", moneyStyle(st.Money)),
		row("Net worth", formatMoney(st.NetWorth())),
		row("Morale", moraleStyle(st.Morale)),
		row("Reputation", fmt.Sprintf("%.1f", st.Reputation)),
		row("Staff", fmt.Sprintf("%d", len(st.Employees))),
		row("Platforms", strings.Join(st.Platforms, ", ")),
	}, "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(stats),
		panelStyle.Render(viewProjects(st)),
		panelStyle.Render(viewMarket(st)),
	)

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(body + "\n")
	b.WriteString(panelStyle.Render(viewNotifications(st, 5)) + "\n")
	if m.s.status != "" {
		b.WriteString(labelStyle.Render(m.s.status) + "\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label)) + value
}

func moneyStyle(v float64) string {
	if v < 0 {
		return badStyle.Render(formatMoney(v))
	}
	return formatMoney(v)
}

func moraleStyle(v float64) string {
	text := fmt.Sprintf("%.0f", v)
	switch {
	case v >= 70:
		return goodStyle.Render(text)
	case v < 40:
		return badStyle.Render(text)
	default:
		return warnStyle.Render(text)
	}
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return goodStyle.Render(strings.Repeat("█", filled)) + labelStyle.Render(strings.Repeat("░", width-filled))
}

func viewProjects(st game.State) string {
	lines := []string{titleStyle.Render("Projects")}
	shown := 0
	for i := len(st.Projects) - 1; i >= 0 && shown < 6; i-- {
		p := st.Projects[i]
		shown++
		switch {
		case p.Completed:
			lines = append(lines, fmt.Sprintf("%-18s %s", truncate(p.Name, 18), goodStyle.Render("shipped "+formatMoney(p.FinalRevenue))))
		case p.Active():
			lines = append(lines, fmt.Sprintf("%-18s %s %3.0f%% %s", truncate(p.Name, 18), progressBar(p.Progress, 12), p.Progress, labelStyle.Render(string(p.Phase))))
		default:
			lines = append(lines, fmt.Sprintf("%-18s %s", truncate(p.Name, 18), labelStyle.Render(string(p.Status))))
		}
	}
	if shown == 0 {
		lines = append(lines, labelStyle.Render("press n to start one"))
	}
	return strings.Join(lines, "\n")
}

func viewMarket(st game.State) string {
	stocks := append([]game.Stock(nil), st.Stocks...)
	sort.Slice(stocks, func(i, j int) bool { return change(stocks[i]) > change(stocks[j]) })
	lines := []string{titleStyle.Render("Market")}
	for i, s := range stocks {
		if i >= 6 {
			break
		}
		c := change(s)
		pct := fmt.Sprintf("%+.1f%%", c)
		if c >= 0 {
			pct = goodStyle.Render(pct)
		} else {
			pct = badStyle.Render(pct)
		}
		held := ""
		if h, ok := st.Portfolio.Holdings[s.ID]; ok {
			held = labelStyle.Render(fmt.Sprintf(" x%d", h.Quantity))
		}
		lines = append(lines, fmt.Sprintf("%-5s %9s %s%s", s.Symbol, formatMoney(s.Price), pct, held))
	}
	return strings.Join(lines, "\n")
}

// change is the percent move across the recorded history.
func change(s game.Stock) float64 {
	if len(s.History) == 0 || s.History[0] == 0 {
		return 0
	}
	return (s.Price - s.History[0]) / s.History[0] * 100
}

func viewNotifications(st game.State, n int) string {
	lines := []string{titleStyle.Render("Inbox")}
	notes := st.Notifications
	if len(notes) > n {
		notes = notes[len(notes)-n:]
	}
	for i := len(notes) - 1; i >= 0; i-- {
		note := notes[i]
		msg := note.Message
		switch note.Type {
		case game.NotifySuccess:
			msg = goodStyle.Render(msg)
		case game.NotifyWarning:
			msg = warnStyle.Render(msg)
		}
		lines = append(lines, msg)
	}
	if len(notes) == 0 {
		lines = append(lines, labelStyle.Render("nothing yet"))
	}
	return strings.Join(lines, "\n")
}
