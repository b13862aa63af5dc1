// Package brackets holds the pure knockout bracket rules for an eight-team
// tournament and the websocket hub that streams bracket changes.
package brackets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/nations-cup/models"
)

var (
	ErrBracketSize     = errors.New("bracket needs exactly eight distinct teams")
	ErrStageIncomplete = errors.New("stage has unfinished matches")
	ErrUnknownStage    = errors.New("stage has no successor matches")
	ErrNoWinner        = errors.New("match has no winner")
)

// BracketMatch is a match to be created: Slot is 1-based inside Stage.
type BracketMatch struct {
	UID   string
	Stage models.Stage
	Slot  int
	TeamA string
	TeamB string
}

// Shuffler is satisfied by *rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// SingleEliminationGenerator is safe for concurrent use.
type SingleEliminationGenerator struct {
	mu  sync.Mutex
	rng Shuffler
}

func NewSingleEliminationGenerator(rng Shuffler) BracketGenerator {
	return &SingleEliminationGenerator{rng: rng}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return SeedQuarterfinals(g.rng, params.Countries)
}

func roundOf(stage models.Stage) int {
	switch stage {
	case models.StageQuarterfinal:
		return 1
	case models.StageSemifinal:
		return 2
	case models.StageFinal:
		return 3
	}
	return 0
}

func matchUID(stage models.Stage, slot int) string {
	return fmt.Sprintf("R%dM%d", roundOf(stage), slot)
}

// SeedQuarterfinals shuffles the eight countries and pairs neighbours into
// four quarterfinals. The input slice is not modified.
func SeedQuarterfinals(rng Shuffler, countries []string) ([]*BracketMatch, error) {
	if len(countries) != models.BracketSize {
		return nil, fmt.Errorf("%w: got %d", ErrBracketSize, len(countries))
	}
	seen := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w: empty country", ErrBracketSize)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: %s appears twice", ErrBracketSize, c)
		}
		seen[c] = struct{}{}
	}

	shuffled := make([]string, len(countries))
	copy(shuffled, countries)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return pair(models.StageQuarterfinal, shuffled), nil
}

// PairWinners builds the matches of the stage after stage from its completed
// matches. Winners are taken in completion order (slot breaks ties) and
// paired first with second, third with fourth.
func PairWinners(stage models.Stage, completed []*models.Match) ([]*BracketMatch, error) {
	next, ok := nextMatchStage(stage)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	if len(completed) != stage.MatchCount() {
		return nil, fmt.Errorf("%w: %s has %d of %d matches", ErrStageIncomplete, stage, len(completed), stage.MatchCount())
	}

	ordered := make([]*models.Match, len(completed))
	copy(ordered, completed)
	for _, m := range ordered {
		if m.Stage != stage || m.Status != models.MatchCompleted || m.CompletedAt == nil {
			return nil, fmt.Errorf("%w: %s slot %d", ErrStageIncomplete, m.Stage, m.Slot)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := *ordered[i].CompletedAt, *ordered[j].CompletedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ordered[i].Slot < ordered[j].Slot
	})

	winners := make([]string, 0, len(ordered))
	for _, m := range ordered {
		w, err := Winner(m)
		if err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return pair(next, winners), nil
}

func pair(stage models.Stage, teams []string) []*BracketMatch {
	out := make([]*BracketMatch, 0, len(teams)/2)
	for i := 0; i+1 < len(teams); i += 2 {
		slot := i/2 + 1
		out = append(out, &BracketMatch{
			UID:   matchUID(stage, slot),
			Stage: stage,
			Slot:  slot,
			TeamA: teams[i],
			TeamB: teams[i+1],
		})
	}
	return out
}

func nextMatchStage(stage models.Stage) (models.Stage, bool) {
	switch stage {
	case models.StageQuarterfinal:
		return models.StageSemifinal, true
	case models.StageSemifinal:
		return models.StageFinal, true
	}
	return "", false
}

// NextStage returns the tournament stage that follows s.
func NextStage(s models.TournamentStage) (models.TournamentStage, bool) {
	switch s {
	case models.TournamentNotStarted:
		return models.TournamentQuarterfinal, true
	case models.TournamentQuarterfinal:
		return models.TournamentSemifinal, true
	case models.TournamentSemifinal:
		return models.TournamentFinal, true
	case models.TournamentFinal:
		return models.TournamentCompleted, true
	}
	return "", false
}

// Winner returns the winner of a completed match: the higher score, or the
// shootout winner when the score is level.
func Winner(m *models.Match) (string, error) {
	if m.Status != models.MatchCompleted || m.TeamA == nil || m.TeamB == nil {
		return "", fmt.Errorf("%w: %s slot %d is not completed", ErrNoWinner, m.Stage, m.Slot)
	}
	w, ok := m.Result().Winner()
	if !ok {
		return "", fmt.Errorf("%w: %s slot %d is level without a shootout", ErrNoWinner, m.Stage, m.Slot)
	}
	return w, nil
}
