package game

import (
	"fmt"
	"math"
)

type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Ordinal counts whole game days since day 1 of month 1 of year 0.
func (d Date) Ordinal(cfg Config) int {
	dpm, mpy := cfg.daysPerMonth(), cfg.monthsPerYear()
	return (d.Year*mpy+(d.Month-1))*dpm + (d.Day - 1)
}

// CalculateNewGameDate advances d by dayProgress days and returns the new date together with the
// fractional day left over. Month and year roll over as often as needed.
func CalculateNewGameDate(cfg Config, d Date, dayProgress float64) (Date, float64) {
	dpm, mpy := cfg.daysPerMonth(), cfg.monthsPerYear()
	d = normalizeDate(d, dpm, mpy)
	if dayProgress <= 0 || math.IsNaN(dayProgress) || math.IsInf(dayProgress, 0) {
		return d, 0
	}

	totalDays := float64(d.Day) + dayProgress
	whole := math.Floor(totalDays)
	remainder := totalDays - whole

	next := d
	next.Day = int(whole)
	for next.Day > dpm {
		next.Day -= dpm
		next.Month++
		if next.Month > mpy {
			next.Month = 1
			next.Year++
		}
	}
	return next, remainder
}

func normalizeDate(d Date, dpm, mpy int) Date {
	if d.Month < 1 {
		d.Month = 1
	}
	for d.Month > mpy {
		d.Month -= mpy
		d.Year++
	}
	if d.Day < 1 {
		d.Day = 1
	}
	for d.Day > dpm {
		d.Day -= dpm
		d.Month++
		if d.Month > mpy {
			d.Month = 1
			d.Year++
		}
	}
	return d
}
