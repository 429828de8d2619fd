package game

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

const (
	MoraleMin = 0.0
	MoraleMax = 100.0

	MinStockPrice    = 1.00
	PriceHistorySize = 30

	defaultSkillLevel    = 50.0
	defaultEstimatedDays = 60.0
	defaultProductivity  = 1.0

	MaxNotifications = 50
	MaxMarketEvents  = 20
)

var (
	ErrInvalidDayProgress = errors.New("day progress must be a finite non-negative number")
	ErrInvalidSpeed       = errors.New("game speed must be >= 0")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectNotActive   = errors.New("project is not in progress")
	ErrStockNotFound      = errors.New("stock not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrPlatformUnlocked   = errors.New("platform already unlocked")
	ErrUnknownPlatform    = errors.New("unknown platform")
	ErrPlatformLocked     = errors.New("platform not unlocked yet")
	ErrInvalidSize        = errors.New("project size must be A, AA or AAA")
	ErrProjectCompleted   = errors.New("project already completed")
	ErrInvalidAlert       = errors.New("alert direction must be above or below and target > 0")
	ErrInvalidName        = errors.New("name must be 1-64 characters")
)

type EmployeeType string

const (
	Developer     EmployeeType = "Developer"
	Designer      EmployeeType = "Designer"
	Marketer      EmployeeType = "Marketer"
	Artist        EmployeeType = "Artist"
	SoundDesigner EmployeeType = "Sound Designer"
	Producer      EmployeeType = "Producer"
)

var EmployeeTypes = []EmployeeType{Developer, Designer, Marketer, Artist, SoundDesigner, Producer}

func (t EmployeeType) Valid() bool {
	switch t {
	case Developer, Designer, Marketer, Artist, SoundDesigner, Producer:
		return true
	}
	return false
}

// PrimarySkill is the skill a freshly generated employee of this type is strongest in.
func (t EmployeeType) PrimarySkill() string {
	switch t {
	case Developer:
		return SkillProgramming
	case Designer:
		return SkillDesign
	case Marketer:
		return SkillMarketing
	case Artist:
		return SkillArt
	case SoundDesigner:
		return SkillSound
	case Producer:
		return SkillManagement
	}
	return SkillProgramming
}

const (
	SkillProgramming = "programming"
	SkillDesign      = "design"
	SkillMarketing   = "marketing"
	SkillArt         = "art"
	SkillSound       = "sound"
	SkillManagement  = "management"
)

type Phase string

const (
	PhaseConcept       Phase = "Concept"
	PhasePreProduction Phase = "Pre-production"
	PhaseProduction    Phase = "Production"
	PhaseAlpha         Phase = "Alpha"
	PhaseBeta          Phase = "Beta"
	PhaseRelease       Phase = "Release"
)

var Phases = []Phase{PhaseConcept, PhasePreProduction, PhaseProduction, PhaseAlpha, PhaseBeta, PhaseRelease}

// SkillMultiplier scales how much of an employee's skill match counts in this phase.
func (p Phase) SkillMultiplier() float64 {
	switch p {
	case PhaseConcept:
		return 0.5
	case PhasePreProduction:
		return 0.8
	case PhaseProduction:
		return 1.0
	case PhaseAlpha:
		return 1.2
	case PhaseBeta:
		return 1.5
	case PhaseRelease:
		return 1.0
	}
	return 1.0
}

// WorkloadImpact is the stress weight a project in this phase puts on the team.
func (p Phase) WorkloadImpact() float64 {
	switch p {
	case PhaseConcept:
		return 0.2
	case PhasePreProduction:
		return 0.5
	case PhaseProduction:
		return 1.0
	case PhaseAlpha:
		return 1.5
	case PhaseBeta:
		return 2.0
	case PhaseRelease:
		return 0.5
	}
	return 1.0
}

func PhaseForProgress(progress float64) Phase {
	switch {
	case progress >= 100:
		return PhaseRelease
	case progress >= 80:
		return PhaseBeta
	case progress >= 60:
		return PhaseAlpha
	case progress >= 25:
		return PhaseProduction
	case progress >= 10:
		return PhasePreProduction
	default:
		return PhaseConcept
	}
}

type ProjectSize string

const (
	SizeA   ProjectSize = "A"
	SizeAA  ProjectSize = "AA"
	SizeAAA ProjectSize = "AAA"
)

var ProjectSizes = []ProjectSize{SizeA, SizeAA, SizeAAA}

func (s ProjectSize) Valid() bool {
	switch s {
	case SizeA, SizeAA, SizeAAA:
		return true
	}
	return false
}

func (s ProjectSize) RevenueMultiplier() float64 {
	switch s {
	case SizeA:
		return 1.0
	case SizeAA:
		return 2.0
	case SizeAAA:
		return 3.0
	}
	return 1.0
}

// MoraleBonus weights a shipped title's morale boost.
func (s ProjectSize) MoraleBonus() float64 {
	switch s {
	case SizeAAA:
		return 1.5
	case SizeAA:
		return 1.0
	case SizeA:
		return 0.5
	}
	return 1.0
}

type ProjectStatus string

const (
	StatusPlanned    ProjectStatus = "planned"
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
)

type Sector string

const (
	SectorGaming   Sector = "gaming"
	SectorTech     Sector = "tech"
	SectorHardware Sector = "hardware"
	SectorMedia    Sector = "media"
	SectorCrypto   Sector = "crypto"
)

var Sectors = []Sector{SectorGaming, SectorTech, SectorHardware, SectorMedia, SectorCrypto}

type AlertDirection string

const (
	AlertAbove AlertDirection = "above"
	AlertBelow AlertDirection = "below"
)

func (d AlertDirection) Valid() bool {
	return d == AlertAbove || d == AlertBelow
}

type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyMarket  NotificationType = "market"
)

const (
	TraitInnovative    = "Innovative"
	TraitPerfectionist = "Perfectionist"
	TraitCollaborative = "Collaborative"
	TraitCreative      = "Creative"
	TraitAnalytical    = "Analytical"
	TraitLeader        = "Leader"
	TraitWorkaholic    = "Workaholic"
	TraitRelaxed       = "Relaxed"
	TraitIntrovert     = "Introvert"
	TraitExtrovert     = "Extrovert"
)

var genreMultipliers = map[string]float64{
	"Action":     1.2,
	"RPG":        1.3,
	"Strategy":   1.0,
	"Puzzle":     0.8,
	"Simulation": 1.1,
	"Adventure":  1.0,
	"Sports":     1.1,
	"Horror":     0.9,
}

var platformMultipliers = map[string]float64{
	"PC":      1.0,
	"Console": 1.2,
	"Mobile":  0.8,
	"Web":     0.6,
	"VR":      0.7,
}

func GenreMultiplier(genre string) float64 {
	if m, ok := genreMultipliers[genre]; ok {
		return m
	}
	return 1.0
}

func PlatformMultiplier(platform string) float64 {
	if m, ok := platformMultipliers[platform]; ok {
		return m
	}
	return 1.0
}

// Config carries the simulation constants the engine and the command layer consume.
type Config struct {
	DaysPerMonth          int
	MonthsPerYear         int
	GameDaysPerRealSecond float64
	VolatilityScale       float64

	BaseEmployeeCost   float64
	EmployeeCostGrowth float64
	BaseProjectCost    float64
	ProjectCostGrowth  float64
	BaseResearchCost   float64
	ResearchCostGrowth float64

	BaseDevelopmentPoints   map[ProjectSize]float64
	DevelopmentPointsPerDay float64
}

func DefaultConfig() Config {
	return Config{
		DaysPerMonth:          30,
		MonthsPerYear:         12,
		GameDaysPerRealSecond: 1.0,
		VolatilityScale:       1.0,

		BaseEmployeeCost:   2_000,
		EmployeeCostGrowth: 1.15,
		BaseProjectCost:    5_000,
		ProjectCostGrowth:  1.25,
		BaseResearchCost:   20_000,
		ResearchCostGrowth: 1.6,

		BaseDevelopmentPoints: map[ProjectSize]float64{
			SizeA:   300,
			SizeAA:  900,
			SizeAAA: 2_400,
		},
		DevelopmentPointsPerDay: 10,
	}
}

func (c Config) daysPerMonth() int {
	if c.DaysPerMonth <= 0 {
		return 30
	}
	return c.DaysPerMonth
}

func (c Config) monthsPerYear() int {
	if c.MonthsPerYear <= 0 {
		return 12
	}
	return c.MonthsPerYear
}

func (c Config) HireCost(headcount int) float64 {
	return math.Round(c.BaseEmployeeCost * math.Pow(c.EmployeeCostGrowth, float64(headcount)))
}

func (c Config) ProjectCost(projectCount int) float64 {
	return math.Round(c.BaseProjectCost * math.Pow(c.ProjectCostGrowth, float64(projectCount)))
}

func (c Config) ResearchCost(unlocked int) float64 {
	return math.Round(c.BaseResearchCost * math.Pow(c.ResearchCostGrowth, float64(unlocked)))
}

func (c Config) EstimatedDays(size ProjectSize) float64 {
	points, ok := c.BaseDevelopmentPoints[size]
	if !ok || c.DevelopmentPointsPerDay <= 0 {
		return defaultEstimatedDays
	}
	return math.Ceil(points / c.DevelopmentPointsPerDay)
}

// ApplyMoraleBounds adds delta to morale and clamps the result to [MoraleMin, MoraleMax].
func ApplyMoraleBounds(morale, delta float64) float64 {
	next := morale + delta
	if math.IsNaN(next) {
		return clamp(morale, MoraleMin, MoraleMax)
	}
	return clamp(next, MoraleMin, MoraleMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var nameRE = regexp.MustCompile(`^[\pL\pN][\pL\pN '&:!\-.]*$`)

func ValidateName(name string) error {
	clean := strings.TrimSpace(name)
	if clean == "" || len(clean) > 64 || !nameRE.MatchString(clean) {
		return ErrInvalidName
	}
	return nil
}
