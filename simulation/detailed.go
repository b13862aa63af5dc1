package simulation

import "github.com/Dosada05/nations-cup/models"

const (
	halfTimeMinute  = 45
	extraTimeEndMin = 120
)

// Detailed plays 90 minutes with a fixed per-minute goal chance, the scoring
// side picked by relative strength. A level game goes to extra time
// (minutes 91-120) and then to penalties; the shootout winner is credited
// one goal so the final score is never level.
func (s *Simulator) Detailed(a, b Side) (*models.MatchResult, error) {
	if err := validateSides(a, b); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &models.MatchResult{
		TeamA:  a.Name,
		TeamB:  b.Name,
		Method: models.MethodDetailed,
		Goals:  []models.GoalEvent{},
	}
	c := newCommentary(res)
	c.kickoff()

	s.playMinutes(res, c, a, b, 1, regulationMins, s.cfg.GoalProbability, models.PeriodRegulation)
	c.fullTime()

	if res.ScoreA == res.ScoreB {
		res.ExtraTime = true
		c.extraTime()
		s.playMinutes(res, c, a, b, regulationMins+1, extraTimeEndMin, s.cfg.ExtraTimeGoalProbability, models.PeriodExtraTime)
		c.extraTimeEnd()
	}

	if res.ScoreA == res.ScoreB {
		so := s.shootout(a, b)
		res.Shootout = so
		c.shootout(so)

		winner, scorer := a, lastScorer(so, a.Name)
		if so.Winner == b.Name {
			winner, scorer = b, lastScorer(so, b.Name)
		}
		if scorer == "" {
			scorer = penaltyTakers(winner)[0]
		}
		s.addGoal(res, c, winner.Name == a.Name, models.GoalEvent{
			Team:   winner.Name,
			Minute: extraTimeEndMin,
			Scorer: scorer,
			Period: models.PeriodShootout,
		})
	}

	c.finalWhistle()
	res.Commentary = c.lines
	return res, nil
}

func (s *Simulator) playMinutes(res *models.MatchResult, c *commentary, a, b Side, from, to int, p float64, period models.GoalPeriod) {
	for minute := from; minute <= to; minute++ {
		if s.rng.Float64() < p {
			side := b
			forA := s.pickSide(a, b)
			if forA {
				side = a
			}
			s.addGoal(res, c, forA, models.GoalEvent{
				Team:   side.Name,
				Minute: minute,
				Scorer: s.scorer(side),
				Period: period,
			})
		}
		if minute == halfTimeMinute {
			c.halfTime()
		}
	}
}

func (s *Simulator) addGoal(res *models.MatchResult, c *commentary, forA bool, g models.GoalEvent) {
	if forA {
		res.ScoreA++
	} else {
		res.ScoreB++
	}
	res.Goals = append(res.Goals, g)
	c.goal(g)
}

func lastScorer(so *models.ShootoutResult, team string) string {
	for i := len(so.Kicks) - 1; i >= 0; i-- {
		if k := so.Kicks[i]; k.Team == team && k.Scored {
			return k.Taker
		}
	}
	return ""
}
