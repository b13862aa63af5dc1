package simulation

import (
	"fmt"

	"github.com/Dosada05/nations-cup/models"
)

// commentary accumulates lines in match order for a detailed run.
type commentary struct {
	res   *models.MatchResult
	lines []string
}

func newCommentary(res *models.MatchResult) *commentary {
	return &commentary{res: res}
}

func (c *commentary) score() string {
	return fmt.Sprintf("%s %d-%d %s", c.res.TeamA, c.res.ScoreA, c.res.ScoreB, c.res.TeamB)
}

func (c *commentary) add(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *commentary) kickoff() {
	c.add("Kick-off! %s take on %s.", c.res.TeamA, c.res.TeamB)
}

func (c *commentary) goal(g models.GoalEvent) {
	if g.Period == models.PeriodShootout {
		c.add("%d' %s go through on penalties, %s with the decisive kick. %s", g.Minute, g.Team, g.Scorer, c.score())
		return
	}
	c.add("%d' GOAL! %s scores for %s. %s", g.Minute, g.Scorer, g.Team, c.score())
}

func (c *commentary) halfTime() {
	c.add("Half-time: %s.", c.score())
}

func (c *commentary) fullTime() {
	c.add("Full-time: %s.", c.score())
}

func (c *commentary) extraTime() {
	c.add("Level after 90 minutes, we go to extra time.")
}

func (c *commentary) extraTimeEnd() {
	c.add("End of extra time: %s.", c.score())
}

func (c *commentary) shootout(so *models.ShootoutResult) {
	c.add("Penalty shootout!")
	for _, k := range so.Kicks {
		verb := "misses"
		if k.Scored {
			verb = "scores"
		}
		c.add("Penalty round %d: %s %s for %s.", k.Round, k.Taker, verb, k.Team)
	}
	if so.CoinToss {
		c.add("Still level at %d-%d after sudden death, %s win the coin toss.", so.ScoreA, so.ScoreB, so.Winner)
		return
	}
	c.add("%s win the shootout %d-%d.", so.Winner, so.ScoreA, so.ScoreB)
}

func (c *commentary) finalWhistle() {
	winner, _ := c.res.Winner()
	c.add("Final whistle! %s win, %s.", winner, c.score())
}

// quickSummary is the single commentary line of a quick result.
func quickSummary(res *models.MatchResult) string {
	line := fmt.Sprintf("Quick result: %s %d-%d %s.", res.TeamA, res.ScoreA, res.ScoreB, res.TeamB)
	if so := res.Shootout; so != nil {
		line += fmt.Sprintf(" %s win %d-%d on penalties.", so.Winner, so.ScoreA, so.ScoreB)
		if so.CoinToss {
			line = fmt.Sprintf("Quick result: %s %d-%d %s. %s go through on a coin toss.", res.TeamA, res.ScoreA, res.ScoreB, res.TeamB, so.Winner)
		}
	}
	return line
}
