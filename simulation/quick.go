package simulation

import (
	"sort"

	"github.com/Dosada05/nations-cup/models"
)

const (
	quickMaxGoals  = 3
	regulationMins = 90
)

// Quick draws each score uniformly from 0..3 and places one goal event per
// goal in the first 90 minutes. Strength is ignored. A level result keeps
// its score and is decided by a recorded penalty shootout.
func (s *Simulator) Quick(a, b Side) (*models.MatchResult, error) {
	if err := validateSides(a, b); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &models.MatchResult{
		TeamA:  a.Name,
		TeamB:  b.Name,
		Method: models.MethodQuick,
		ScoreA: s.rng.Intn(quickMaxGoals + 1),
		ScoreB: s.rng.Intn(quickMaxGoals + 1),
		Goals:  []models.GoalEvent{},
	}

	for _, side := range []struct {
		side  Side
		goals int
	}{{a, res.ScoreA}, {b, res.ScoreB}} {
		for i := 0; i < side.goals; i++ {
			res.Goals = append(res.Goals, models.GoalEvent{
				Team:   side.side.Name,
				Minute: 1 + s.rng.Intn(regulationMins),
				Scorer: s.scorer(side.side),
				Period: models.PeriodRegulation,
			})
		}
	}
	sort.SliceStable(res.Goals, func(i, j int) bool {
		return res.Goals[i].Minute < res.Goals[j].Minute
	})

	if res.ScoreA == res.ScoreB {
		res.Shootout = s.shootout(a, b)
	}
	res.Commentary = []string{quickSummary(res)}
	return res, nil
}
