package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// StandingsRecorder keeps the display counters of both teams up to date.
// A level score decided on penalties counts as a draw for both sides.
type StandingsRecorder struct {
	teamRepo repositories.TeamRepository
}

func NewStandingsRecorder(teamRepo repositories.TeamRepository) *StandingsRecorder {
	return &StandingsRecorder{teamRepo: teamRepo}
}

func recordDelta(scored, conceded int) models.TeamRecord {
	d := models.TeamRecord{Played: 1, GoalsFor: scored, GoalsAgainst: conceded}
	switch {
	case scored > conceded:
		d.Wins, d.Points = 1, pointsWin
	case scored < conceded:
		d.Losses = 1
	default:
		d.Draws, d.Points = 1, pointsDraw
	}
	return d
}

func (r *StandingsRecorder) OnMatchCompleted(ctx context.Context, event MatchCompletedEvent) error {
	m := event.Match
	errA := r.teamRepo.ApplyRecord(ctx, event.TournamentID, event.TeamA.Country, recordDelta(m.ScoreA, m.ScoreB))
	errB := r.teamRepo.ApplyRecord(ctx, event.TournamentID, event.TeamB.Country, recordDelta(m.ScoreB, m.ScoreA))
	if err := errors.Join(errA, errB); err != nil {
		return fmt.Errorf("failed to record standings for match %s: %w", m.ID, err)
	}
	return nil
}
