package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFloor(t *testing.T) {
	st := NewGame(DefaultConfig())
	st.Stocks = []Stock{{ID: "JUNK", Symbol: "JUNK", Sector: SectorCrypto, Price: 1.2, Volatility: 5, Trend: 0.95}}

	env := StepMarket(DefaultConfig(), st, 1, fixed(0), testNow)
	require.Len(t, env.StockUpdates, 1)
	assert.Equal(t, MinStockPrice, env.StockUpdates[0].Price)

	rng := NewRand(42)
	for i := 0; i < 2_000; i++ {
		st.Apply(StepMarket(DefaultConfig(), st, 0.5, rng, testNow))
		require.GreaterOrEqual(t, st.Stocks[0].Price, MinStockPrice)
		require.GreaterOrEqual(t, st.Stocks[0].Trend, minTrend)
		require.LessOrEqual(t, st.Stocks[0].Trend, maxTrend)
	}
}

func TestPriceHistoryBound(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)
	rng := NewRand(7)

	var seen []float64
	for i := 0; i < 120; i++ {
		env := StepMarket(cfg, st, 1, rng, testNow)
		st.Apply(env)
		if i := st.StockIndex("PIXL"); i >= 0 {
			seen = append(seen, st.Stocks[i].Price)
		}
		for _, s := range st.Stocks {
			require.LessOrEqual(t, len(s.History), PriceHistorySize)
		}
	}
	pixl := st.Stocks[st.StockIndex("PIXL")]
	require.Len(t, pixl.History, PriceHistorySize)
	assert.Equal(t, seen[len(seen)-PriceHistorySize:], pixl.History, "newest prices, oldest first")
}

func TestAppendHistoryDoesNotAlias(t *testing.T) {
	base := make([]float64, PriceHistorySize, PriceHistorySize+5)
	out := appendHistory(base, 9)
	assert.Len(t, out, PriceHistorySize)
	assert.Equal(t, 9.0, out[len(out)-1])
	assert.Zero(t, base[0])
}

func TestDividendsQuarterly(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)
	today := st.Date.Ordinal(cfg)
	st.Portfolio.Holdings["CBLT"] = Holding{Quantity: 100, AvgPrice: 120, LastDividendDay: today - 90}
	st.Portfolio.Holdings["VCTR"] = Holding{Quantity: 10, AvgPrice: 150, LastDividendDay: today - 400}

	env := StepMarket(cfg, st, 0, fixed(0.5), testNow)
	require.Len(t, env.Dividends, 1, "VCTR pays no dividend")
	d := env.Dividends[0]
	assert.Equal(t, "CBLT", d.StockID)
	assert.InDelta(t, 100*130.0*0.02/4, d.Amount, 1e-9)
	assert.InDelta(t, d.Amount, env.Finance.Dividends, 1e-9)

	money := st.Money
	st.Apply(env)
	assert.InDelta(t, money+d.Amount, st.Money, 1e-9)
	assert.Equal(t, today, st.Portfolio.Holdings["CBLT"].LastDividendDay)

	assert.Empty(t, StepMarket(cfg, st, 0, fixed(0.5), testNow).Dividends)
}

func TestDividendSkippedWhenTiny(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)
	st.Stocks = []Stock{{ID: "PENNY", Symbol: "PENNY", Price: 1, DividendYield: 0.01, Trend: 1}}
	st.Portfolio.Holdings["PENNY"] = Holding{Quantity: 1}
	assert.Empty(t, StepMarket(cfg, st, 0, fixed(0.5), testNow).Dividends)
}

func TestPriceAlertsTriggerOnce(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)
	st.Portfolio.Alerts = []PriceAlert{
		{ID: "a1", StockID: "CBLT", Target: 100, Direction: AlertAbove},
		{ID: "a2", StockID: "CBLT", Target: 100, Direction: AlertBelow},
		{ID: "a3", StockID: "GONE", Target: 1, Direction: AlertAbove},
	}

	env := StepMarket(cfg, st, 0, fixed(0.5), testNow)
	require.Len(t, env.Alerts, 1)
	assert.Equal(t, "a1", env.Alerts[0].AlertID)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, NotifyMarket, env.Notifications[0].Type)

	st.Apply(env)
	assert.True(t, st.Portfolio.Alerts[0].Triggered)
	assert.NotNil(t, st.Portfolio.Alerts[0].TriggeredAt)
	assert.Empty(t, StepMarket(cfg, st, 0, fixed(0.5), testNow).Alerts)
}

func TestMarketEventHitsAffectedSectorsOnly(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)
	m := &market{cfg: cfg, rng: fixed(0), st: st.Clone(), dirty: map[string]bool{}, now: testNow}
	m.fireEvent()
	m.flushPrices()

	require.Len(t, m.env.MarketEvents, 1)
	ev := m.env.MarketEvents[0]
	assert.Equal(t, "Console Launch", ev.Name)
	assert.Equal(t, st.Date, ev.On)

	updated := map[string]StockUpdate{}
	for _, u := range m.env.StockUpdates {
		updated[u.StockID] = u
	}
	assert.InDelta(t, 45.36, updated["PIXL"].Price, 1e-9)
	assert.Contains(t, updated, "SLCN")
	assert.NotContains(t, updated, "NIMB")
	assert.NotContains(t, updated, "BYTC")
}

func TestSectorInfluence(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)
	st.Reputation = 100
	m := &market{cfg: cfg, rng: fixed(0.5), st: st}

	inf := m.sectorInfluence()
	assert.InDelta(t, -0.001, inf[SectorGaming], 1e-12)
	assert.InDelta(t, 0.002, inf[SectorMedia], 1e-12)
	assert.InDelta(t, 0.0, inf[SectorCrypto], 1e-12, "flat tech trend and centred noise")

	done := Date{Day: 1, Month: 1, Year: 2000}
	m.st.Projects = []Project{{Completed: true, CompletedOn: &done, FinalRevenue: 80_000, Size: SizeAAA}}
	inf = m.sectorInfluence()
	assert.InDelta(t, 0.002, inf[SectorGaming], 1e-12)
	assert.InDelta(t, 0.0005*2+0.001-0.001, inf[SectorHardware], 1e-12)
}

func TestVolatilityScale(t *testing.T) {
	assert.Equal(t, 0.6, VolatilityScale("calm"))
	assert.Equal(t, 1.6, VolatilityScale(" WILD "))
	assert.Equal(t, 1.0, VolatilityScale(""))
}

func TestMarketGatesScaleWithDayProgress(t *testing.T) {
	cfg := DefaultConfig()
	st := NewGame(cfg)

	tests := []struct {
		name        string
		draw        float64
		dayProgress float64
		walks       bool
		event       bool
	}{
		{name: "quiet frame", draw: 0.5, dayProgress: 0.01},
		{name: "walk without event", draw: 0.1, dayProgress: 0.01, walks: true},
		{name: "walk gate is strict", draw: 0.75, dayProgress: 1.0 / 32},
		{name: "just under walk gate", draw: math.Nextafter(0.75, 0), dayProgress: 1.0 / 32, walks: true},
		{name: "event under its gate", draw: 0.02, dayProgress: 0.25, walks: true, event: true},
		{name: "event over its gate", draw: 0.03, dayProgress: 0.25, walks: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := StepMarket(cfg, st, tt.dayProgress, fixed(tt.draw), testNow)
			if tt.walks {
				assert.Len(t, env.StockUpdates, len(st.Stocks))
			} else {
				assert.Empty(t, env.StockUpdates)
			}
			if tt.event {
				assert.Len(t, env.MarketEvents, 1)
			} else {
				assert.Empty(t, env.MarketEvents)
			}
		})
	}
}

func TestSignedUnit(t *testing.T) {
	assert.Equal(t, -1.0, signedUnit(0))
	assert.Equal(t, 0.0, signedUnit(0.5))
	assert.InDelta(t, 0.9, signedUnit(0.95), 1e-12)
}
