package simulation

import (
	"fmt"
	"sort"

	"github.com/Dosada05/nations-cup/models"
)

const placeholderTakers = 11

// shootout alternates kicks, A first. All regulation rounds are taken even
// when the result is already decided. Caller holds s.mu.
func (s *Simulator) shootout(a, b Side) *models.ShootoutResult {
	so := &models.ShootoutResult{Kicks: []models.PenaltyKick{}}
	takersA, takersB := penaltyTakers(a), penaltyTakers(b)

	kick := func(round int, side Side, takers []string) bool {
		scored := s.rng.Float64() < s.cfg.PenaltySuccess
		so.Kicks = append(so.Kicks, models.PenaltyKick{
			Round:  round,
			Team:   side.Name,
			Taker:  takers[(round-1)%len(takers)],
			Scored: scored,
		})
		return scored
	}

	round := 1
	for ; round <= s.cfg.ShootoutRounds; round++ {
		if kick(round, a, takersA) {
			so.ScoreA++
		}
		if kick(round, b, takersB) {
			so.ScoreB++
		}
	}
	for ; so.ScoreA == so.ScoreB && round <= s.cfg.ShootoutRounds+s.cfg.SuddenDeathCap; round++ {
		if kick(round, a, takersA) {
			so.ScoreA++
		}
		if kick(round, b, takersB) {
			so.ScoreB++
		}
	}

	switch {
	case so.ScoreA > so.ScoreB:
		so.Winner = a.Name
	case so.ScoreB > so.ScoreA:
		so.Winner = b.Name
	default:
		so.CoinToss = true
		so.Winner = a.Name
		if s.rng.Intn(2) == 1 {
			so.Winner = b.Name
		}
	}
	return so
}

// penaltyTakers orders the squad by attacking rating, best first.
func penaltyTakers(side Side) []string {
	if len(side.Roster) == 0 {
		out := make([]string, placeholderTakers)
		for i := range out {
			out[i] = fmt.Sprintf("%s #%d", side.Name, i+1)
		}
		return out
	}
	players := make([]models.Player, len(side.Roster))
	copy(players, side.Roster)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Ratings[models.PositionAttacker] > players[j].Ratings[models.PositionAttacker]
	})
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}
