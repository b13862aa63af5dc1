// Package simulation resolves a single knockout match, either by a quick
// random score draw or minute by minute with extra time and penalties.
package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/Dosada05/nations-cup/models"
)

// Rand is the random source consumed by the simulator; *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewSeededRand returns a deterministic source for reproducible runs.
func NewSeededRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

type Weighting string

const (
	WeightingStrength Weighting = "strength"
	WeightingUniform  Weighting = "uniform"
)

type Config struct {
	GoalProbability          float64
	ExtraTimeGoalProbability float64
	PenaltySuccess           float64
	ShootoutRounds           int
	// SuddenDeathCap bounds the rounds played after ShootoutRounds; a coin
	// toss decides a shootout still level at the cap.
	SuddenDeathCap int
	Weighting      Weighting
}

func DefaultConfig() Config {
	return Config{
		GoalProbability:          0.04,
		ExtraTimeGoalProbability: 0.06,
		PenaltySuccess:           0.70,
		ShootoutRounds:           5,
		SuddenDeathCap:           20,
		Weighting:                WeightingStrength,
	}
}

func (c Config) Validate() error {
	for name, p := range map[string]float64{
		"goal probability":            c.GoalProbability,
		"extra time goal probability": c.ExtraTimeGoalProbability,
		"penalty success":             c.PenaltySuccess,
	} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConfig, name, p)
		}
	}
	if c.ShootoutRounds < 1 {
		return fmt.Errorf("%w: shootout rounds must be positive, got %d", ErrInvalidConfig, c.ShootoutRounds)
	}
	if c.SuddenDeathCap < 0 {
		return fmt.Errorf("%w: sudden death cap must not be negative, got %d", ErrInvalidConfig, c.SuddenDeathCap)
	}
	switch c.Weighting {
	case WeightingStrength, WeightingUniform:
	default:
		return fmt.Errorf("%w: unknown weighting %q", ErrInvalidConfig, c.Weighting)
	}
	return nil
}

// Side is one team entering a match.
type Side struct {
	Name     string
	Strength float64
	Roster   []models.Player
}

// Simulator is safe for concurrent use. Every run holds the lock for its
// whole sequence of draws so a seeded source gives reproducible results
// for a given call order.
type Simulator struct {
	mu  sync.Mutex
	rng Rand
	cfg Config
}

func New(rng Rand, cfg Config) (*Simulator, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{rng: rng, cfg: cfg}, nil
}

func (s *Simulator) Config() Config {
	return s.cfg
}

// Simulate dispatches on the resolution method.
func (s *Simulator) Simulate(method models.ResolutionMethod, a, b Side) (*models.MatchResult, error) {
	switch method {
	case models.MethodQuick:
		return s.Quick(a, b)
	case models.MethodDetailed:
		return s.Detailed(a, b)
	}
	return nil, fmt.Errorf("%w: unknown resolution method %q", ErrSimulation, method)
}

func validateSides(a, b Side) error {
	for _, side := range []Side{a, b} {
		if strings.TrimSpace(side.Name) == "" {
			return fmt.Errorf("%w: team name is required", ErrSimulation)
		}
		if math.IsNaN(side.Strength) || math.IsInf(side.Strength, 0) || side.Strength < 0 {
			return fmt.Errorf("%w: invalid strength %v for %s", ErrSimulation, side.Strength, side.Name)
		}
	}
	if a.Name == b.Name {
		return fmt.Errorf("%w: %s cannot play itself", ErrSimulation, a.Name)
	}
	return nil
}

// scorer draws an outfield player, or a shirt-number placeholder when the
// side has no outfield players on record.
func (s *Simulator) scorer(side Side) string {
	outfield := make([]string, 0, len(side.Roster))
	for _, p := range side.Roster {
		if p.NaturalPosition != models.PositionGoalkeeper {
			outfield = append(outfield, p.Name)
		}
	}
	if len(outfield) == 0 {
		return fmt.Sprintf("%s #%d", side.Name, 2+s.rng.Intn(models.SquadSize-1))
	}
	return outfield[s.rng.Intn(len(outfield))]
}

// pickSide returns true when side A scores the next goal.
func (s *Simulator) pickSide(a, b Side) bool {
	pA := 0.5
	if s.cfg.Weighting == WeightingStrength {
		if total := a.Strength + b.Strength; total > 0 {
			pA = a.Strength / total
		}
	}
	return s.rng.Float64() < pA
}
