package game

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

const (
	minTrend = 0.95
	maxTrend = 1.05

	trendUp   = 1.001
	trendDown = 0.999

	dividendIntervalDays = 90
	minDividend          = 0.01

	gamingRevenueWindowDays = 90
	gamingRevenueTarget     = 50_000
)

// VolatilityScale maps a market mode name onto a multiplier for per-stock volatility.
func VolatilityScale(mode string) float64 {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "calm":
		return 0.6
	case "wild":
		return 1.6
	default:
		return 1.0
	}
}

type eventTemplate struct {
	Name         string
	Description  string
	Sectors      []Sector
	Impact       float64
	DurationDays int
}

var marketEventCatalog = []eventTemplate{
	{"Console Launch", "A new console generation hits shelves.", []Sector{SectorGaming, SectorHardware}, 0.08, 30},
	{"Chip Shortage", "Supply chains stall and silicon gets scarce.", []Sector{SectorHardware, SectorTech}, -0.10, 60},
	{"Streaming Boom", "Viewers flock to game streaming.", []Sector{SectorMedia, SectorGaming}, 0.06, 45},
	{"Regulatory Crackdown", "Regulators target digital assets.", []Sector{SectorCrypto}, -0.15, 30},
	{"Crypto Rally", "Speculators pile into tokens.", []Sector{SectorCrypto}, 0.18, 14},
	{"Tech Earnings Beat", "Big tech posts record quarterly earnings.", []Sector{SectorTech}, 0.07, 7},
	{"Loot Box Scandal", "Monetization practices make headlines.", []Sector{SectorGaming, SectorMedia}, -0.07, 21},
	{"Rate Hike", "The central bank raises interest rates.", []Sector{SectorTech, SectorHardware, SectorCrypto, SectorMedia, SectorGaming}, -0.04, 90},
}

// market is the working copy the market step mutates while it builds its envelope part.
type market struct {
	cfg   Config
	rng   Rand
	st    State
	dirty map[string]bool
	now   time.Time
	env   Envelope
}

// StepMarket runs the stock market for one tick: price walk, dividends, price alerts and market
// events, in that order.
func StepMarket(cfg Config, st State, dayProgress float64, rng Rand, now time.Time) Envelope {
	m := &market{
		cfg:   cfg,
		rng:   rng,
		st:    st.Clone(),
		dirty: make(map[string]bool),
		now:   now,
	}
	if rng.Float64() < dayProgress*24 {
		m.walk()
	}
	m.payDividends()
	m.checkAlerts()
	if rng.Float64() < dayProgress*0.1 {
		m.fireEvent()
	}
	m.flushPrices()
	return m.env
}

func (m *market) walk() {
	scale := m.cfg.VolatilityScale
	if scale <= 0 {
		scale = 1
	}
	for i := range m.st.Stocks {
		s := &m.st.Stocks[i]
		change := (signedUnit(m.rng.Float64()) + (s.Trend-1)*0.5) * s.Volatility * scale
		next := math.Max(MinStockPrice, s.Price*(1+change))
		if next > s.Price {
			s.Trend *= trendUp
		} else if next < s.Price {
			s.Trend *= trendDown
		}
		s.Trend = clamp(s.Trend, minTrend, maxTrend)
		s.Price = next
		m.dirty[s.ID] = true
	}
	// Sector influence reads post-walk trends, crypto in particular.
	influence := m.sectorInfluence()
	for i := range m.st.Stocks {
		s := &m.st.Stocks[i]
		s.Price = roundPrice(math.Max(MinStockPrice, s.Price*(1+influence[s.Sector])))
	}
}

func (m *market) sectorInfluence() map[Sector]float64 {
	st := m.st
	out := make(map[Sector]float64, len(Sectors))

	if mean := m.recentRevenue(); mean > gamingRevenueTarget {
		out[SectorGaming] = 0.002
	} else {
		out[SectorGaming] = -0.001
	}

	headcount := float64(len(st.Employees))
	platforms := float64(len(st.Platforms))
	out[SectorTech] = 0.001*math.Min(1, headcount/10) + 0.001*math.Min(1, platforms/5) - 0.0005

	aaa := 0
	for _, p := range st.Projects {
		if p.Completed && p.Size == SizeAAA {
			aaa++
		}
	}
	out[SectorHardware] = math.Min(0.004, 0.0005*platforms+0.001*float64(aaa)) - 0.001

	out[SectorMedia] = (clamp(st.Reputation, 0, 100)/100 - 0.5) * 0.004

	var techTrends []float64
	for _, s := range st.Stocks {
		if s.Sector == SectorTech {
			techTrends = append(techTrends, s.Trend)
		}
	}
	avgTech := 1.0
	if len(techTrends) > 0 {
		avgTech = stat.Mean(techTrends, nil)
	}
	out[SectorCrypto] = (avgTech-1)*0.5 + uniform(m.rng, -0.005, 0.005)
	return out
}

// recentRevenue is the mean revenue of titles shipped in the last 90 game days.
func (m *market) recentRevenue() float64 {
	today := m.st.Date.Ordinal(m.cfg)
	var revenues []float64
	for _, p := range m.st.Projects {
		if !p.Completed || p.CompletedOn == nil {
			continue
		}
		if today-p.CompletedOn.Ordinal(m.cfg) <= gamingRevenueWindowDays {
			revenues = append(revenues, p.FinalRevenue)
		}
	}
	if len(revenues) == 0 {
		return 0
	}
	return stat.Mean(revenues, nil)
}

func (m *market) payDividends() {
	today := m.st.Date.Ordinal(m.cfg)
	ids := make([]string, 0, len(m.st.Portfolio.Holdings))
	for id := range m.st.Portfolio.Holdings {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		h := m.st.Portfolio.Holdings[id]
		i := m.st.StockIndex(id)
		if i < 0 || h.Quantity <= 0 {
			continue
		}
		s := m.st.Stocks[i]
		if s.DividendYield <= 0 || today-h.LastDividendDay < dividendIntervalDays {
			continue
		}
		amount := float64(h.Quantity) * s.Price * (s.DividendYield / 4)
		if amount <= minDividend {
			continue
		}
		m.env.Dividends = append(m.env.Dividends, DividendPayment{
			StockID:  id,
			Symbol:   s.Symbol,
			Quantity: h.Quantity,
			Amount:   amount,
			Day:      today,
		})
		m.env.Finance.Dividends += amount
		m.notify(fmt.Sprintf("Dividend from %s: $%.2f", s.Symbol, amount), NotifyMarket)
	}
}

func (m *market) checkAlerts() {
	for _, a := range m.st.Portfolio.Alerts {
		if a.Triggered {
			continue
		}
		i := m.st.StockIndex(a.StockID)
		if i < 0 {
			continue
		}
		s := m.st.Stocks[i]
		hit := (a.Direction == AlertAbove && s.Price >= a.Target) ||
			(a.Direction == AlertBelow && s.Price <= a.Target)
		if !hit {
			continue
		}
		m.env.Alerts = append(m.env.Alerts, AlertTrigger{
			AlertID: a.ID,
			StockID: a.StockID,
			Price:   s.Price,
			At:      m.now,
		})
		m.notify(fmt.Sprintf("%s is %s $%.2f (now $%.2f)", s.Symbol, a.Direction, a.Target, s.Price), NotifyMarket)
	}
}

func (m *market) fireEvent() {
	t := marketEventCatalog[pick(m.rng, len(marketEventCatalog))]
	ev := MarketEvent{
		ID:           uuid.NewString(),
		Name:         t.Name,
		Description:  t.Description,
		Sectors:      slices.Clone(t.Sectors),
		Impact:       t.Impact,
		DurationDays: t.DurationDays,
		On:           m.st.Date,
		At:           m.now,
	}
	for i := range m.st.Stocks {
		s := &m.st.Stocks[i]
		if !ev.Affects(s.Sector) {
			continue
		}
		s.Price = roundPrice(math.Max(MinStockPrice, s.Price*(1+ev.Impact)))
		m.dirty[s.ID] = true
	}
	m.env.MarketEvents = append(m.env.MarketEvents, ev)
	m.notify(fmt.Sprintf("%s: %s (%+.0f%%)", ev.Name, ev.Description, ev.Impact*100), NotifyMarket)
}

func (m *market) flushPrices() {
	for _, s := range m.st.Stocks {
		if !m.dirty[s.ID] {
			continue
		}
		m.env.StockUpdates = append(m.env.StockUpdates, StockUpdate{
			StockID: s.ID,
			Price:   s.Price,
			Trend:   s.Trend,
			History: appendHistory(s.History, s.Price),
		})
	}
}

func (m *market) notify(message string, typ NotificationType) {
	m.env.Notifications = append(m.env.Notifications, newNotification(message, typ, m.now))
}

// appendHistory appends price and keeps only the newest PriceHistorySize samples, oldest first.
func appendHistory(history []float64, price float64) []float64 {
	out := append(slices.Clone(history), price)
	if len(out) > PriceHistorySize {
		out = out[len(out)-PriceHistorySize:]
	}
	return out
}

func roundPrice(p float64) float64 {
	return math.Max(MinStockPrice, math.Round(p*100)/100)
}
