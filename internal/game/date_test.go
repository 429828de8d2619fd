package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateNewGameDate(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		in       Date
		progress float64
		want     Date
		rest     float64
	}{
		{"year rollover", Date{30, 12, 1999}, 1, Date{1, 1, 2000}, 0},
		{"month rollover", Date{30, 1, 2000}, 1, Date{1, 2, 2000}, 0},
		{"sub-day", Date{5, 3, 2000}, 0.4, Date{5, 3, 2000}, 0.4},
		{"several months", Date{15, 11, 2000}, 75.5, Date{30, 1, 2001}, 0.5},
		{"zero", Date{5, 3, 2000}, 0, Date{5, 3, 2000}, 0},
		{"negative", Date{5, 3, 2000}, -3, Date{5, 3, 2000}, 0},
		{"nan", Date{5, 3, 2000}, math.NaN(), Date{5, 3, 2000}, 0},
		{"denormalized input", Date{31, 12, 2000}, 0, Date{1, 1, 2001}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, rest := CalculateNewGameDate(cfg, tc.in, tc.progress)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, tc.rest, rest, 1e-9)
		})
	}
}

func TestDateOrdinal(t *testing.T) {
	cfg := DefaultConfig()
	a := Date{Day: 30, Month: 12, Year: 1999}
	b, _ := CalculateNewGameDate(cfg, a, 1)
	assert.Equal(t, 1, b.Ordinal(cfg)-a.Ordinal(cfg))

	c, _ := CalculateNewGameDate(cfg, a, 90)
	assert.Equal(t, 90, c.Ordinal(cfg)-a.Ordinal(cfg))
	assert.Equal(t, "2000-03-30", c.String())
}
