package game

import (
	"slices"
	"time"
)

type Employee struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Type              EmployeeType       `json:"type"`
	Skills            map[string]float64 `json:"skills"`
	Personality       []string           `json:"personality"`
	Salary            float64            `json:"salary"`
	Productivity      float64            `json:"productivity"`
	AssignedProjectID string             `json:"assigned_project_id,omitempty"`
	CandidateID       string             `json:"candidate_id,omitempty"`
	HiredOn           Date               `json:"hired_on"`
}

func (e Employee) Skill(name string) float64 {
	level, ok := e.Skills[name]
	if !ok {
		return defaultSkillLevel
	}
	return clamp(level, 0, 100)
}

type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Size             ProjectSize   `json:"size"`
	Platform         string        `json:"platform"`
	Genre            string        `json:"genre"`
	Phase            Phase         `json:"phase"`
	Status           ProjectStatus `json:"status"`
	Completed        bool          `json:"completed"`
	Progress         float64       `json:"progress"`
	EstimatedDays    float64       `json:"estimated_days"`
	EstimatedRevenue float64       `json:"estimated_revenue"`
	RequiredSkills   []string      `json:"required_skills"`
	StartedOn        *Date         `json:"started_on,omitempty"`
	CompletedOn      *Date         `json:"completed_on,omitempty"`
	CompletedAt      time.Time     `json:"completed_at,omitzero"`
	FinalRevenue     float64       `json:"final_revenue"`
}

func (p Project) Active() bool {
	return p.Status == StatusInProgress && !p.Completed
}

type Stock struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Sector        Sector    `json:"sector"`
	Price         float64   `json:"price"`
	Volatility    float64   `json:"volatility"`
	Trend         float64   `json:"trend"`
	DividendYield float64   `json:"dividend_yield,omitempty"`
	History       []float64 `json:"history"`
}

type Holding struct {
	Quantity        int64   `json:"quantity"`
	AvgPrice        float64 `json:"avg_price"`
	LastDividendDay int     `json:"last_dividend_day"`
}

type PriceAlert struct {
	ID          string         `json:"id"`
	StockID     string         `json:"stock_id"`
	Target      float64        `json:"target"`
	Direction   AlertDirection `json:"direction"`
	Triggered   bool           `json:"triggered"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
}

type Portfolio struct {
	Holdings         map[string]Holding `json:"holdings"`
	TotalInvested    float64            `json:"total_invested"`
	RealizedGainLoss float64            `json:"realized_gain_loss"`
	TotalDividends   float64            `json:"total_dividends"`
	Watchlist        []string           `json:"watchlist"`
	Alerts           []PriceAlert       `json:"alerts"`
}

type UnlockedAchievement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Reward     float64   `json:"reward"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

type MarketEvent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Sectors      []Sector  `json:"sectors"`
	Impact       float64   `json:"impact"`
	DurationDays int       `json:"duration_days"`
	On           Date      `json:"on"`
	At           time.Time `json:"at"`
}

func (ev MarketEvent) Affects(sector Sector) bool {
	return slices.Contains(ev.Sectors, sector)
}

type Notification struct {
	ID      string           `json:"id"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
	At      time.Time        `json:"at"`
}

// State is a read-only snapshot of everything the tick engine looks at.
type State struct {
	Date          Date                  `json:"date"`
	Speed         int                   `json:"speed"`
	Employees     []Employee            `json:"employees"`
	Projects      []Project             `json:"projects"`
	Money         float64               `json:"money"`
	Morale        float64               `json:"morale"`
	Reputation    float64               `json:"reputation"`
	Platforms     []string              `json:"platforms"`
	Achievements  []UnlockedAchievement `json:"achievements"`
	Stocks        []Stock               `json:"stocks"`
	Portfolio     Portfolio             `json:"portfolio"`
	MarketEvents  []MarketEvent         `json:"market_events"`
	Notifications []Notification        `json:"notifications"`
}

func (s State) Clone() State {
	out := s
	if s.Employees != nil {
		out.Employees = make([]Employee, len(s.Employees))
		for i, e := range s.Employees {
			e.Skills = cloneSkills(e.Skills)
			e.Personality = slices.Clone(e.Personality)
			out.Employees[i] = e
		}
	}
	if s.Projects != nil {
		out.Projects = make([]Project, len(s.Projects))
		for i, p := range s.Projects {
			p.RequiredSkills = slices.Clone(p.RequiredSkills)
			if p.StartedOn != nil {
				d := *p.StartedOn
				p.StartedOn = &d
			}
			if p.CompletedOn != nil {
				d := *p.CompletedOn
				p.CompletedOn = &d
			}
			out.Projects[i] = p
		}
	}
	out.Platforms = slices.Clone(s.Platforms)
	out.Achievements = slices.Clone(s.Achievements)
	if s.Stocks != nil {
		out.Stocks = make([]Stock, len(s.Stocks))
		for i, st := range s.Stocks {
			st.History = slices.Clone(st.History)
			out.Stocks[i] = st
		}
	}
	if s.Portfolio.Holdings != nil {
		out.Portfolio.Holdings = make(map[string]Holding, len(s.Portfolio.Holdings))
		for k, h := range s.Portfolio.Holdings {
			out.Portfolio.Holdings[k] = h
		}
	}
	out.Portfolio.Watchlist = slices.Clone(s.Portfolio.Watchlist)
	if s.Portfolio.Alerts != nil {
		out.Portfolio.Alerts = make([]PriceAlert, len(s.Portfolio.Alerts))
		for i, a := range s.Portfolio.Alerts {
			if a.TriggeredAt != nil {
				t := *a.TriggeredAt
				a.TriggeredAt = &t
			}
			out.Portfolio.Alerts[i] = a
		}
	}
	if s.MarketEvents != nil {
		out.MarketEvents = make([]MarketEvent, len(s.MarketEvents))
		for i, ev := range s.MarketEvents {
			ev.Sectors = slices.Clone(ev.Sectors)
			out.MarketEvents[i] = ev
		}
	}
	out.Notifications = slices.Clone(s.Notifications)
	return out
}

func cloneSkills(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s State) AchievementUnlocked(id string) bool {
	for _, a := range s.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s State) ProjectIndex(id string) int {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) EmployeeIndex(id string) int {
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) StockIndex(id string) int {
	for i := range s.Stocks {
		if s.Stocks[i].ID == id || s.Stocks[i].Symbol == id {
			return i
		}
	}
	return -1
}

func (s State) Team(projectID string) []Employee {
	var team []Employee
	for _, e := range s.Employees {
		if e.AssignedProjectID != "" && e.AssignedProjectID == projectID {
			team = append(team, e)
		}
	}
	return team
}

func (s State) ActiveProjectCount() int {
	n := 0
	for _, p := range s.Projects {
		if p.Active() {
			n++
		}
	}
	return n
}

func (s State) CompletedProjectCount() int {
	n := 0
	for _, p := range s.Projects {
		if p.Completed {
			n++
		}
	}
	return n
}

func (s State) PortfolioValue() float64 {
	var total float64
	for id, h := range s.Portfolio.Holdings {
		if i := s.StockIndex(id); i >= 0 {
			total += float64(h.Quantity) * s.Stocks[i].Price
		}
	}
	return total
}

func (s State) NetWorth() float64 {
	return s.Money + s.PortfolioValue()
}
