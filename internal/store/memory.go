package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"devstudio/internal/game"
)

// LedgerEntry is one money movement. Entries from the same tick or command share a GroupID.
type LedgerEntry struct {
	ID      string    `json:"id"`
	GroupID string    `json:"group_id"`
	Kind    string    `json:"kind"`
	Amount  float64   `json:"amount"`
	Date    game.Date `json:"date"`
	At      time.Time `json:"at"`
}

type PriceSample struct {
	StockID string    `json:"stock_id"`
	Price   float64   `json:"price"`
	Date    game.Date `json:"date"`
	At      time.Time `json:"at"`
}

// Memory is the authoritative game state. Every tick envelope is applied under one lock.
type Memory struct {
	cfg game.Config
	log *slog.Logger
	now func() time.Time

	mu        sync.RWMutex
	st        game.State
	journaled bool
	ledger    []LedgerEntry
	prices    []PriceSample
	subs      map[int]chan game.Notification
	nextSub   int
}

func NewMemory(cfg game.Config, st game.State, logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	if st.Portfolio.Holdings == nil {
		st.Portfolio.Holdings = make(map[string]game.Holding)
	}
	return &Memory{
		cfg:  cfg,
		log:  logger,
		now:  time.Now,
		st:   st,
		subs: make(map[int]chan game.Notification),
	}
}

// Snapshot returns a deep copy that callers may read and modify freely.
func (m *Memory) Snapshot() game.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Clone()
}

func (m *Memory) Speed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Speed
}

// Apply commits one envelope atomically.
func (m *Memory) Apply(env game.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyLocked(env)
}

// Advance runs one engine tick against the current state and commits the result. It is the
// stepper's tick function in every host.
func (m *Memory) Advance(engine *game.Engine, dayProgress float64) (game.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	env, err := engine.Tick(m.st, dayProgress)
	if err != nil {
		return game.Envelope{}, err
	}
	m.applyLocked(env)
	return env, nil
}

func (m *Memory) applyLocked(env game.Envelope) {
	if env.Empty() {
		return
	}
	sink := &journalSink{m: m, group: uuid.NewString(), at: m.now()}
	game.Dispatch(env, sink)
	m.publishLocked(env.Notifications)
}

// Restore replaces the whole state, e.g. from a saved snapshot.
func (m *Memory) Restore(st game.State) {
	if st.Portfolio.Holdings == nil {
		st.Portfolio.Holdings = make(map[string]game.Holding)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st.Clone()
	m.log.Info("state restored", "date", st.Date.String(), "money", st.Money)
}

// EnableJournal starts buffering ledger entries and price samples for a persister. Without it
// nothing is buffered, since nothing would ever drain the buffers.
func (m *Memory) EnableJournal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journaled = true
}

// DrainLedger hands over every ledger entry recorded since the last drain.
func (m *Memory) DrainLedger() []LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.ledger
	m.ledger = nil
	return out
}

func (m *Memory) DrainPrices() []PriceSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.prices
	m.prices = nil
	return out
}

// Requeue puts entries back at the front after a failed flush.
func (m *Memory) Requeue(entries []LedgerEntry, prices []PriceSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = append(append([]LedgerEntry(nil), entries...), m.ledger...)
	m.prices = append(append([]PriceSample(nil), prices...), m.prices...)
}

// Subscribe delivers new notifications until cancel is called. Slow readers lose messages.
func (m *Memory) Subscribe(buffer int) (<-chan game.Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan game.Notification, buffer)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *Memory) publishLocked(ns []game.Notification) {
	for _, n := range ns {
		for _, ch := range m.subs {
			select {
			case ch <- n:
			default:
			}
		}
	}
}

func (m *Memory) recordLocked(group, kind string, amount float64, at time.Time) {
	if amount == 0 || !m.journaled {
		return
	}
	m.ledger = append(m.ledger, LedgerEntry{
		ID:      uuid.NewString(),
		GroupID: group,
		Kind:    kind,
		Amount:  amount,
		Date:    m.st.Date,
		At:      at,
	})
}

// journalSink applies each command to the state and books the money it moves. The store lock is
// held for its whole lifetime.
type journalSink struct {
	m     *Memory
	group string
	at    time.Time
}

var _ game.CommandSink = (*journalSink)(nil)

func (s *journalSink) UpdateTime(d game.Date) {
	s.m.st.Apply(game.Envelope{Date: &d})
}

func (s *journalSink) UpdateProject(u game.ProjectUpdate) {
	s.m.st.Apply(game.Envelope{ProjectUpdates: []game.ProjectUpdate{u}})
}

func (s *journalSink) CompleteProject(c game.ProjectCompletion) {
	s.m.st.Apply(game.Envelope{Completions: []game.ProjectCompletion{c}})
	s.m.log.Info("project shipped", "project_id", c.ProjectID, "revenue", c.Revenue)
}

func (s *journalSink) UpdateFinances(d game.FinanceDelta) {
	s.m.st.Apply(game.Envelope{Finance: d})
	s.m.recordLocked(s.group, "payroll", -d.Payroll, s.at)
	s.m.recordLocked(s.group, "revenue", d.Revenue, s.at)
	s.m.recordLocked(s.group, "dividends", d.Dividends, s.at)
}

func (s *journalSink) UpdateMorale(v float64) {
	s.m.st.Apply(game.Envelope{Morale: &v})
}

func (s *journalSink) UnlockAchievement(u game.UnlockedAchievement) {
	before := s.m.st.AchievementUnlocked(u.ID)
	s.m.st.Apply(game.Envelope{Unlocks: []game.UnlockedAchievement{u}})
	if !before {
		s.m.recordLocked(s.group, "achievement_reward", u.Reward, s.at)
	}
}

func (s *journalSink) UpdateStockPrices(updates []game.StockUpdate) {
	s.m.st.Apply(game.Envelope{StockUpdates: updates})
	if !s.m.journaled {
		return
	}
	for _, u := range updates {
		s.m.prices = append(s.m.prices, PriceSample{StockID: u.StockID, Price: u.Price, Date: s.m.st.Date, At: s.at})
	}
}

func (s *journalSink) ProcessDividendPayment(p game.DividendPayment) {
	s.m.st.Apply(game.Envelope{Dividends: []game.DividendPayment{p}})
}

func (s *journalSink) TriggerPriceAlert(t game.AlertTrigger) {
	s.m.st.Apply(game.Envelope{Alerts: []game.AlertTrigger{t}})
}

func (s *journalSink) AddMarketEvent(ev game.MarketEvent) {
	s.m.st.Apply(game.Envelope{MarketEvents: []game.MarketEvent{ev}})
	s.m.log.Info("market event", "name", ev.Name, "impact", ev.Impact)
}

func (s *journalSink) AddNotification(n game.Notification) {
	s.m.st.Apply(game.Envelope{Notifications: []game.Notification{n}})
}
