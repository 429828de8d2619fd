package game

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type ProjectUpdate struct {
	ProjectID string  `json:"project_id"`
	Progress  float64 `json:"progress"`
	Phase     Phase   `json:"phase"`
}

type ProjectCompletion struct {
	ProjectID string      `json:"project_id"`
	Name      string      `json:"name"`
	Size      ProjectSize `json:"size"`
	Revenue   float64     `json:"revenue"`
	On        Date        `json:"on"`
	At        time.Time   `json:"at"`
}

type FinanceDelta struct {
	Payroll   float64 `json:"payroll"`
	Revenue   float64 `json:"revenue"`
	Dividends float64 `json:"dividends"`
}

func (f FinanceDelta) Net() float64 {
	return f.Revenue + f.Dividends - f.Payroll
}

func (f FinanceDelta) IsZero() bool {
	return f.Payroll == 0 && f.Revenue == 0 && f.Dividends == 0
}

type StockUpdate struct {
	StockID string    `json:"stock_id"`
	Price   float64   `json:"price"`
	Trend   float64   `json:"trend"`
	History []float64 `json:"history"`
}

type DividendPayment struct {
	StockID  string  `json:"stock_id"`
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Amount   float64 `json:"amount"`
	Day      int     `json:"day"`
}

type AlertTrigger struct {
	AlertID string    `json:"alert_id"`
	StockID string    `json:"stock_id"`
	Price   float64   `json:"price"`
	At      time.Time `json:"at"`
}

// Envelope is the full set of changes one tick proposes. The store applies it in one step.
type Envelope struct {
	DayProgress    float64               `json:"day_progress"`
	Date           *Date                 `json:"date,omitempty"`
	ProjectUpdates []ProjectUpdate       `json:"project_updates,omitempty"`
	Completions    []ProjectCompletion   `json:"completions,omitempty"`
	Finance        FinanceDelta          `json:"finance"`
	Morale         *float64              `json:"morale,omitempty"`
	Unlocks        []UnlockedAchievement `json:"unlocks,omitempty"`
	StockUpdates   []StockUpdate         `json:"stock_updates,omitempty"`
	Dividends      []DividendPayment     `json:"dividends,omitempty"`
	Alerts         []AlertTrigger        `json:"alerts,omitempty"`
	MarketEvents   []MarketEvent         `json:"market_events,omitempty"`
	Notifications  []Notification        `json:"notifications,omitempty"`
}

func (e Envelope) Empty() bool {
	return e.Date == nil &&
		len(e.ProjectUpdates) == 0 &&
		len(e.Completions) == 0 &&
		e.Finance.IsZero() &&
		e.Morale == nil &&
		len(e.Unlocks) == 0 &&
		len(e.StockUpdates) == 0 &&
		len(e.Dividends) == 0 &&
		len(e.Alerts) == 0 &&
		len(e.MarketEvents) == 0 &&
		len(e.Notifications) == 0
}

func (e *Envelope) merge(o Envelope) {
	if o.Date != nil {
		d := *o.Date
		e.Date = &d
	}
	e.ProjectUpdates = append(e.ProjectUpdates, o.ProjectUpdates...)
	e.Completions = append(e.Completions, o.Completions...)
	e.Finance.Payroll += o.Finance.Payroll
	e.Finance.Revenue += o.Finance.Revenue
	e.Finance.Dividends += o.Finance.Dividends
	if o.Morale != nil {
		m := *o.Morale
		e.Morale = &m
	}
	e.Unlocks = append(e.Unlocks, o.Unlocks...)
	e.StockUpdates = append(e.StockUpdates, o.StockUpdates...)
	e.Dividends = append(e.Dividends, o.Dividends...)
	e.Alerts = append(e.Alerts, o.Alerts...)
	e.MarketEvents = append(e.MarketEvents, o.MarketEvents...)
	e.Notifications = append(e.Notifications, o.Notifications...)
}

func newNotification(message string, typ NotificationType, at time.Time) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Message: message,
		Type:    typ,
		At:      at,
	}
}

// CommandSink is the store's write side. Dispatch fires one call per change in a fixed order.
type CommandSink interface {
	UpdateTime(date Date)
	UpdateProject(update ProjectUpdate)
	CompleteProject(completion ProjectCompletion)
	UpdateFinances(delta FinanceDelta)
	UpdateMorale(value float64)
	UnlockAchievement(unlock UnlockedAchievement)
	UpdateStockPrices(updates []StockUpdate)
	ProcessDividendPayment(payment DividendPayment)
	TriggerPriceAlert(trigger AlertTrigger)
	AddMarketEvent(event MarketEvent)
	AddNotification(n Notification)
}

func Dispatch(env Envelope, sink CommandSink) {
	if env.Date != nil {
		sink.UpdateTime(*env.Date)
	}
	for _, u := range env.ProjectUpdates {
		sink.UpdateProject(u)
	}
	for _, c := range env.Completions {
		sink.CompleteProject(c)
	}
	if !env.Finance.IsZero() {
		sink.UpdateFinances(env.Finance)
	}
	if env.Morale != nil {
		sink.UpdateMorale(*env.Morale)
	}
	for _, u := range env.Unlocks {
		sink.UnlockAchievement(u)
	}
	if len(env.StockUpdates) > 0 {
		sink.UpdateStockPrices(env.StockUpdates)
	}
	for _, d := range env.Dividends {
		sink.ProcessDividendPayment(d)
	}
	for _, a := range env.Alerts {
		sink.TriggerPriceAlert(a)
	}
	for _, ev := range env.MarketEvents {
		sink.AddMarketEvent(ev)
	}
	for _, n := range env.Notifications {
		sink.AddNotification(n)
	}
}

// Apply folds env into s. Applying two disjoint envelopes one after the other is the same as
// applying their merge.
func (s *State) Apply(env Envelope) {
	Dispatch(env, stateSink{s})
}

type stateSink struct {
	st *State
}

func (a stateSink) UpdateTime(date Date) {
	a.st.Date = date
}

func (a stateSink) UpdateProject(u ProjectUpdate) {
	i := a.st.ProjectIndex(u.ProjectID)
	if i < 0 || a.st.Projects[i].Completed {
		return
	}
	p := &a.st.Projects[i]
	if u.Progress > p.Progress {
		p.Progress = clamp(u.Progress, 0, 100)
	}
	if u.Phase != "" {
		p.Phase = u.Phase
	}
}

func (a stateSink) CompleteProject(c ProjectCompletion) {
	i := a.st.ProjectIndex(c.ProjectID)
	if i < 0 || a.st.Projects[i].Completed {
		return
	}
	p := &a.st.Projects[i]
	on := c.On
	p.Completed = true
	p.Status = StatusCompleted
	p.Progress = 100
	p.Phase = PhaseRelease
	p.FinalRevenue = c.Revenue
	p.CompletedOn = &on
	p.CompletedAt = c.At
	a.st.Reputation = clamp(a.st.Reputation+c.Size.MoraleBonus()*2, 0, 100)
	for j := range a.st.Employees {
		if a.st.Employees[j].AssignedProjectID == c.ProjectID {
			a.st.Employees[j].AssignedProjectID = ""
		}
	}
}

func (a stateSink) UpdateFinances(delta FinanceDelta) {
	a.st.Money += delta.Net()
}

func (a stateSink) UpdateMorale(value float64) {
	a.st.Morale = clamp(value, MoraleMin, MoraleMax)
}

func (a stateSink) UnlockAchievement(u UnlockedAchievement) {
	if a.st.AchievementUnlocked(u.ID) {
		return
	}
	a.st.Achievements = append(a.st.Achievements, u)
	a.st.Money += u.Reward
}

func (a stateSink) UpdateStockPrices(updates []StockUpdate) {
	for _, u := range updates {
		i := a.st.StockIndex(u.StockID)
		if i < 0 {
			continue
		}
		st := &a.st.Stocks[i]
		st.Price = u.Price
		st.Trend = u.Trend
		st.History = slices.Clone(u.History)
	}
}

func (a stateSink) ProcessDividendPayment(d DividendPayment) {
	h, ok := a.st.Portfolio.Holdings[d.StockID]
	if !ok {
		return
	}
	h.LastDividendDay = d.Day
	a.st.Portfolio.Holdings[d.StockID] = h
	a.st.Portfolio.TotalDividends += d.Amount
}

func (a stateSink) TriggerPriceAlert(t AlertTrigger) {
	for i := range a.st.Portfolio.Alerts {
		al := &a.st.Portfolio.Alerts[i]
		if al.ID == t.AlertID && !al.Triggered {
			at := t.At
			al.Triggered = true
			al.TriggeredAt = &at
		}
	}
}

func (a stateSink) AddMarketEvent(ev MarketEvent) {
	a.st.MarketEvents = append(a.st.MarketEvents, ev)
	if n := len(a.st.MarketEvents); n > MaxMarketEvents {
		a.st.MarketEvents = slices.Clone(a.st.MarketEvents[n-MaxMarketEvents:])
	}
}

func (a stateSink) AddNotification(n Notification) {
	a.st.Notifications = append(a.st.Notifications, n)
	if k := len(a.st.Notifications); k > MaxNotifications {
		a.st.Notifications = slices.Clone(a.st.Notifications[k-MaxNotifications:])
	}
}
