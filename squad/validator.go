// Package squad validates candidate rosters and derives team strength from them.
package squad

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/nations-cup/models"
)

var ErrInvalidSquad = errors.New("invalid squad")

var ErrUnknownPolicy = errors.New("unknown squad quota policy")

type ViolationKind string

const (
	ViolationSquadSize         ViolationKind = "squad_size"
	ViolationPositionShortfall ViolationKind = "position_shortfall"
	ViolationPositionQuota     ViolationKind = "position_quota"
	ViolationPlayer            ViolationKind = "player"
	ViolationRating            ViolationKind = "rating"
	ViolationCaptain           ViolationKind = "captain"
)

// Violation describes one broken squad constraint. Player is the 1-based
// roster index for player-level violations and zero otherwise.
type Violation struct {
	Kind     ViolationKind   `json:"kind"`
	Player   int             `json:"player,omitempty"`
	Position models.Position `json:"position,omitempty"`
	Expected int             `json:"expected"`
	Actual   int             `json:"actual"`
	Message  string          `json:"message"`
}

type InvalidSquadError struct {
	Violations []Violation
}

func (e *InvalidSquadError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSquad, strings.Join(msgs, "; "))
}

func (e *InvalidSquadError) Unwrap() error {
	return ErrInvalidSquad
}

// Has reports whether a violation of the given kind was recorded.
func (e *InvalidSquadError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// QuotaPolicy is a named position-count policy. With Exact set every
// position count must equal its quota, otherwise quotas are minimums.
type QuotaPolicy struct {
	Name   string
	Exact  bool
	Quotas map[models.Position]int
}

var (
	MinimumPolicy = QuotaPolicy{
		Name: "minimum",
		Quotas: map[models.Position]int{
			models.PositionGoalkeeper: 2,
			models.PositionDefender:   6,
			models.PositionMidfielder: 6,
			models.PositionAttacker:   3,
		},
	}
	FixedPolicy = QuotaPolicy{
		Name:  "fixed",
		Exact: true,
		Quotas: map[models.Position]int{
			models.PositionGoalkeeper: 3,
			models.PositionDefender:   7,
			models.PositionMidfielder: 8,
			models.PositionAttacker:   5,
		},
	}
)

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (QuotaPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MinimumPolicy.Name:
		return MinimumPolicy, nil
	case FixedPolicy.Name:
		return FixedPolicy, nil
	}
	return QuotaPolicy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

type Validator struct {
	policy QuotaPolicy
}

func NewValidator(policy QuotaPolicy) *Validator {
	return &Validator{policy: policy}
}

func (v *Validator) Policy() QuotaPolicy {
	return v.policy
}

// Validate checks roster size, position quotas and per-player data. It
// returns *InvalidSquadError listing every violation, or nil.
func (v *Validator) Validate(roster []models.Player) error {
	var violations []Violation

	if len(roster) != models.SquadSize {
		violations = append(violations, Violation{
			Kind:     ViolationSquadSize,
			Expected: models.SquadSize,
			Actual:   len(roster),
			Message:  fmt.Sprintf("squad must have exactly %d players, got %d", models.SquadSize, len(roster)),
		})
	}

	counts := make(map[models.Position]int, len(models.Positions))
	captains := 0
	for i, p := range roster {
		violations = append(violations, validatePlayer(i+1, p)...)
		if p.NaturalPosition.Valid() {
			counts[p.NaturalPosition]++
		}
		if p.IsCaptain {
			captains++
		}
	}

	for _, pos := range models.Positions {
		quota := v.policy.Quotas[pos]
		got := counts[pos]
		switch {
		case v.policy.Exact && got != quota:
			violations = append(violations, Violation{
				Kind:     ViolationPositionQuota,
				Position: pos,
				Expected: quota,
				Actual:   got,
				Message:  fmt.Sprintf("%s: exactly %d required by %s policy, got %d", pos, quota, v.policy.Name, got),
			})
		case !v.policy.Exact && got < quota:
			violations = append(violations, Violation{
				Kind:     ViolationPositionShortfall,
				Position: pos,
				Expected: quota,
				Actual:   got,
				Message:  fmt.Sprintf("%s: at least %d required by %s policy, got %d", pos, quota, v.policy.Name, got),
			})
		}
	}

	if captains > 1 {
		violations = append(violations, Violation{
			Kind:     ViolationCaptain,
			Expected: 1,
			Actual:   captains,
			Message:  fmt.Sprintf("squad must have one captain, got %d", captains),
		})
	}

	if len(violations) > 0 {
		return &InvalidSquadError{Violations: violations}
	}
	return nil
}

func validatePlayer(idx int, p models.Player) []Violation {
	var out []Violation
	if strings.TrimSpace(p.Name) == "" {
		out = append(out, Violation{Kind: ViolationPlayer, Player: idx, Message: fmt.Sprintf("player %d: name is required", idx)})
	}
	if !p.NaturalPosition.Valid() {
		out = append(out, Violation{Kind: ViolationPlayer, Player: idx, Message: fmt.Sprintf("player %d: unknown natural position %q", idx, p.NaturalPosition)})
		return out
	}
	for _, pos := range models.Positions {
		r, ok := p.Ratings[pos]
		if !ok {
			out = append(out, Violation{Kind: ViolationRating, Player: idx, Position: pos, Message: fmt.Sprintf("player %d: missing %s rating", idx, pos)})
			continue
		}
		lo, hi := models.MinRating, models.OffPositionRatingMax
		if pos == p.NaturalPosition {
			lo, hi = models.NaturalRatingMin, models.MaxRating
		}
		if r < lo || r > hi {
			out = append(out, Violation{
				Kind:     ViolationRating,
				Player:   idx,
				Position: pos,
				Actual:   r,
				Message:  fmt.Sprintf("player %d: %s rating %d outside [%d,%d]", idx, pos, r, lo, hi),
			})
		}
	}
	return out
}

// EnsureCaptain returns a copy of roster with a captain appointed when none
// is flagged: the player with the highest natural rating, first on ties.
func EnsureCaptain(roster []models.Player) []models.Player {
	out := make([]models.Player, len(roster))
	copy(out, roster)
	best := -1
	for i, p := range out {
		if p.IsCaptain {
			return out
		}
		if best < 0 || p.NaturalRating() > out[best].NaturalRating() {
			best = i
		}
	}
	if best >= 0 {
		out[best].IsCaptain = true
	}
	return out
}
