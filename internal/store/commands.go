package store

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"devstudio/internal/game"
)

const (
	CandidatePoolSize = 24
	MaxSpeed          = 100
)

var baseRevenue = map[game.ProjectSize]float64{
	game.SizeA:   25_000,
	game.SizeAA:  80_000,
	game.SizeAAA: 240_000,
}

type ProjectInput struct {
	Name     string           `json:"name"`
	Size     game.ProjectSize `json:"size"`
	Platform string           `json:"platform"`
	Genre    string           `json:"genre"`
}

type TradeResult struct {
	StockID  string  `json:"stock_id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Notional float64 `json:"notional"`
	Realized float64 `json:"realized,omitempty"`
}

// Candidates lists the job market minus anyone already hired.
func (m *Memory) Candidates() []game.Candidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hired := make(map[string]bool, len(m.st.Employees))
	for _, e := range m.st.Employees {
		hired[e.CandidateID] = true
	}
	out := make([]game.Candidate, 0, CandidatePoolSize)
	for _, c := range game.Candidates(CandidatePoolSize) {
		if !hired[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func (m *Memory) HireCost() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.HireCost(len(m.st.Employees))
}

func (m *Memory) Hire(candidateID string) (game.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cand *game.Candidate
	for _, c := range game.Candidates(CandidatePoolSize) {
		if c.ID == candidateID {
			cand = &c
			break
		}
	}
	if cand == nil {
		return game.Employee{}, game.ErrCandidateNotFound
	}
	for _, e := range m.st.Employees {
		if e.CandidateID == candidateID {
			return game.Employee{}, game.ErrCandidateNotFound
		}
	}
	cost := m.cfg.HireCost(len(m.st.Employees))
	if m.st.Money < cost {
		return game.Employee{}, fmt.Errorf("hire %s: %w", cand.Name, game.ErrInsufficientFunds)
	}

	emp := cand.Employee(uuid.NewString(), m.st.Date)
	m.st.Employees = append(m.st.Employees, emp)
	m.spendLocked("employee_hire", cost)
	m.notifyLocked(fmt.Sprintf("Hired %s (%s)", emp.Name, emp.Type), game.NotifyInfo)
	return emp, nil
}

func (m *Memory) Fire(employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.EmployeeIndex(employeeID)
	if i < 0 {
		return game.ErrEmployeeNotFound
	}
	name := m.st.Employees[i].Name
	m.st.Employees = slices.Delete(m.st.Employees, i, i+1)
	m.notifyLocked(fmt.Sprintf("%s left the studio", name), game.NotifyWarning)
	return nil
}

func (m *Memory) CreateProject(in ProjectInput) (game.Project, error) {
	name := strings.TrimSpace(in.Name)
	if err := game.ValidateName(name); err != nil {
		return game.Project{}, err
	}
	if !in.Size.Valid() {
		return game.Project{}, game.ErrInvalidSize
	}
	if in.Genre == "" || !slices.Contains(game.Genres, in.Genre) {
		in.Genre = game.Genres[0]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.st.Platforms, in.Platform) {
		return game.Project{}, fmt.Errorf("%s: %w", in.Platform, game.ErrPlatformLocked)
	}
	cost := m.cfg.ProjectCost(len(m.st.Projects))
	if m.st.Money < cost {
		return game.Project{}, fmt.Errorf("create project: %w", game.ErrInsufficientFunds)
	}

	p := game.Project{
		ID:               uuid.NewString(),
		Name:             name,
		Size:             in.Size,
		Platform:         in.Platform,
		Genre:            in.Genre,
		Phase:            game.PhaseConcept,
		Status:           game.StatusPlanned,
		EstimatedDays:    m.cfg.EstimatedDays(in.Size),
		EstimatedRevenue: baseRevenue[in.Size],
		RequiredSkills:   game.RequiredSkillsFor(in.Genre),
	}
	m.st.Projects = append(m.st.Projects, p)
	m.spendLocked("project_create", cost)
	return p, nil
}

func (m *Memory) StartProject(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.ProjectIndex(projectID)
	if i < 0 {
		return game.ErrProjectNotFound
	}
	p := &m.st.Projects[i]
	if p.Completed {
		return game.ErrProjectCompleted
	}
	if p.Status == game.StatusInProgress {
		return nil
	}
	d := m.st.Date
	p.Status = game.StatusInProgress
	p.StartedOn = &d
	m.notifyLocked(fmt.Sprintf("Development of %s has started", p.Name), game.NotifyInfo)
	return nil
}

// AssignEmployee points an employee at a project. An empty projectID unassigns.
func (m *Memory) AssignEmployee(employeeID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.EmployeeIndex(employeeID)
	if i < 0 {
		return game.ErrEmployeeNotFound
	}
	if projectID != "" {
		j := m.st.ProjectIndex(projectID)
		if j < 0 {
			return game.ErrProjectNotFound
		}
		if m.st.Projects[j].Completed {
			return game.ErrProjectCompleted
		}
	}
	m.st.Employees[i].AssignedProjectID = projectID
	return nil
}

func (m *Memory) BuyStock(stockID string, qty int64) (TradeResult, error) {
	if qty <= 0 {
		return TradeResult{}, game.ErrInvalidQuantity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.StockIndex(stockID)
	if i < 0 {
		return TradeResult{}, game.ErrStockNotFound
	}
	s := m.st.Stocks[i]
	notional := s.Price * float64(qty)
	if m.st.Money < notional {
		return TradeResult{}, fmt.Errorf("buy %d %s: %w", qty, s.Symbol, game.ErrInsufficientFunds)
	}

	h, ok := m.st.Portfolio.Holdings[s.ID]
	if !ok {
		h = game.Holding{LastDividendDay: m.st.Date.Ordinal(m.cfg)}
	}
	newQty := h.Quantity + qty
	h.AvgPrice = (h.AvgPrice*float64(h.Quantity) + notional) / float64(newQty)
	h.Quantity = newQty
	m.st.Portfolio.Holdings[s.ID] = h
	m.st.Portfolio.TotalInvested += notional
	m.spendLocked("stock_buy", notional)
	return TradeResult{StockID: s.ID, Quantity: qty, Price: s.Price, Notional: notional}, nil
}

func (m *Memory) SellStock(stockID string, qty int64) (TradeResult, error) {
	if qty <= 0 {
		return TradeResult{}, game.ErrInvalidQuantity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.StockIndex(stockID)
	if i < 0 {
		return TradeResult{}, game.ErrStockNotFound
	}
	s := m.st.Stocks[i]
	h, ok := m.st.Portfolio.Holdings[s.ID]
	if !ok || h.Quantity < qty {
		return TradeResult{}, game.ErrInsufficientShares
	}

	proceeds := s.Price * float64(qty)
	realized := (s.Price - h.AvgPrice) * float64(qty)
	h.Quantity -= qty
	if h.Quantity == 0 {
		delete(m.st.Portfolio.Holdings, s.ID)
	} else {
		m.st.Portfolio.Holdings[s.ID] = h
	}
	m.st.Portfolio.TotalInvested = math.Max(0, m.st.Portfolio.TotalInvested-h.AvgPrice*float64(qty))
	m.st.Portfolio.RealizedGainLoss += realized
	m.st.Money += proceeds
	m.recordLocked(uuid.NewString(), "stock_sell", proceeds, m.now())
	return TradeResult{StockID: s.ID, Quantity: qty, Price: s.Price, Notional: proceeds, Realized: realized}, nil
}

func (m *Memory) AddPriceAlert(stockID string, target float64, dir game.AlertDirection) (game.PriceAlert, error) {
	if !dir.Valid() || target <= 0 || math.IsNaN(target) {
		return game.PriceAlert{}, game.ErrInvalidAlert
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.StockIndex(stockID)
	if i < 0 {
		return game.PriceAlert{}, game.ErrStockNotFound
	}
	a := game.PriceAlert{
		ID:        uuid.NewString(),
		StockID:   m.st.Stocks[i].ID,
		Target:    target,
		Direction: dir,
	}
	m.st.Portfolio.Alerts = append(m.st.Portfolio.Alerts, a)
	return a, nil
}

func (m *Memory) Watch(stockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.StockIndex(stockID)
	if i < 0 {
		return game.ErrStockNotFound
	}
	id := m.st.Stocks[i].ID
	if !slices.Contains(m.st.Portfolio.Watchlist, id) {
		m.st.Portfolio.Watchlist = append(m.st.Portfolio.Watchlist, id)
	}
	return nil
}

func (m *Memory) Unwatch(stockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.st.StockIndex(stockID)
	if i < 0 {
		return game.ErrStockNotFound
	}
	id := m.st.Stocks[i].ID
	m.st.Portfolio.Watchlist = slices.DeleteFunc(m.st.Portfolio.Watchlist, func(s string) bool { return s == id })
	return nil
}

// SetSpeed changes the game speed. Zero pauses.
func (m *Memory) SetSpeed(speed int) error {
	if speed < 0 || speed > MaxSpeed {
		return fmt.Errorf("%w (max %d)", game.ErrInvalidSpeed, MaxSpeed)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Speed = speed
	return nil
}

func (m *Memory) UnlockPlatform(platform string) (float64, error) {
	if !slices.Contains(game.AllPlatforms, platform) {
		return 0, game.ErrUnknownPlatform
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.st.Platforms, platform) {
		return 0, game.ErrPlatformUnlocked
	}
	cost := m.cfg.ResearchCost(len(m.st.Platforms))
	if m.st.Money < cost {
		return 0, fmt.Errorf("research %s: %w", platform, game.ErrInsufficientFunds)
	}
	m.st.Platforms = append(m.st.Platforms, platform)
	m.spendLocked("platform_research", cost)
	m.notifyLocked(fmt.Sprintf("%s platform unlocked", platform), game.NotifySuccess)
	return cost, nil
}

func (m *Memory) spendLocked(kind string, amount float64) {
	m.st.Money -= amount
	m.recordLocked(uuid.NewString(), kind, -amount, m.now())
}

func (m *Memory) notifyLocked(message string, typ game.NotificationType) {
	n := game.Notification{ID: uuid.NewString(), Message: message, Type: typ, At: m.now()}
	m.st.Apply(game.Envelope{Notifications: []game.Notification{n}})
	m.publishLocked([]game.Notification{n})
}
