package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/nations-cup/brackets"
	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StageTransition describes one committed move of the tournament stage.
type StageTransition struct {
	TournamentID uuid.UUID              `json:"tournament_id"`
	From         models.TournamentStage `json:"from"`
	To           models.TournamentStage `json:"to"`
	Matches      []*models.Match        `json:"matches,omitempty"`
	Champion     *string                `json:"champion,omitempty"`
}

type BracketRound struct {
	Stage   models.Stage    `json:"stage"`
	Matches []*models.Match `json:"matches"`
}

type BracketView struct {
	Tournament *models.Tournament     `json:"tournament"`
	Stage      models.TournamentStage `json:"stage"`
	Champion   *string                `json:"champion,omitempty"`
	Rounds     []BracketRound         `json:"rounds"`
}

type BracketService interface {
	// Seed creates the quarterfinals once eight teams are registered.
	Seed(ctx context.Context, tournamentID uuid.UUID) (*StageTransition, error)
	// Advance moves the tournament past stage once all its matches are
	// completed. A nil transition means there was nothing to do.
	Advance(ctx context.Context, tournamentID uuid.UUID, stage models.Stage) (*StageTransition, error)
	// AdvanceCurrent runs Seed or Advance for whatever stage the tournament is at.
	AdvanceCurrent(ctx context.Context, tournamentID uuid.UUID) (*StageTransition, error)
	GetBracket(ctx context.Context, tournamentID uuid.UUID) (*BracketView, error)
}

type bracketService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	generator      brackets.BracketGenerator
	listeners      []StageListener
	logger         *slog.Logger
}

func NewBracketService(
	repos repositories.Repositories,
	generator brackets.BracketGenerator,
	logger *slog.Logger,
	listeners ...StageListener,
) BracketService {
	return &bracketService{
		tournamentRepo: repos.Tournaments,
		teamRepo:       repos.Teams,
		matchRepo:      repos.Matches,
		generator:      generator,
		listeners:      listeners,
		logger:         logger,
	}
}

func toMatches(tournamentID uuid.UUID, planned []*brackets.BracketMatch) []*models.Match {
	out := make([]*models.Match, 0, len(planned))
	for _, bm := range planned {
		teamA, teamB := bm.TeamA, bm.TeamB
		out = append(out, &models.Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Stage:        bm.Stage,
			Slot:         bm.Slot,
			TeamA:        &teamA,
			TeamB:        &teamB,
			Status:       models.MatchScheduled,
		})
	}
	return out
}

func (s *bracketService) Seed(ctx context.Context, tournamentID uuid.UUID) (*StageTransition, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.Stage != models.TournamentNotStarted {
		return nil, nil
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for seeding: %w", err)
	}
	if len(teams) != models.BracketSize {
		return nil, fmt.Errorf("%w: %d of %d registered", ErrBracketNotReady, len(teams), models.BracketSize)
	}
	countries := make([]string, 0, len(teams))
	for _, team := range teams {
		countries = append(countries, team.Country)
	}

	planned, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{Countries: countries})
	if err != nil {
		return nil, fmt.Errorf("failed to generate quarterfinals with %s: %w", s.generator.GetName(), err)
	}

	return s.commit(ctx, repositories.AdvanceStageParams{
		TournamentID: tournamentID,
		From:         models.TournamentNotStarted,
		To:           models.TournamentQuarterfinal,
		Matches:      toMatches(tournamentID, planned),
	})
}

func (s *bracketService) Advance(ctx context.Context, tournamentID uuid.UUID, stage models.Stage) (*StageTransition, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.Stage != stage.TournamentStage() {
		return nil, nil
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, &stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s matches: %w", stage, err)
	}
	if len(matches) < stage.MatchCount() {
		return nil, nil
	}
	for _, m := range matches {
		if m.Status != models.MatchCompleted {
			return nil, nil
		}
	}

	next, _ := brackets.NextStage(t.Stage)
	params := repositories.AdvanceStageParams{
		TournamentID: tournamentID,
		From:         t.Stage,
		To:           next,
	}
	if stage == models.StageFinal {
		champion, err := brackets.Winner(matches[0])
		if err != nil {
			return nil, err
		}
		params.Champion = &champion
	} else {
		planned, err := brackets.PairWinners(stage, matches)
		if err != nil {
			return nil, err
		}
		params.Matches = toMatches(tournamentID, planned)
	}
	return s.commit(ctx, params)
}

// commit applies the stage change; losing the race to another caller is a no-op.
func (s *bracketService) commit(ctx context.Context, params repositories.AdvanceStageParams) (*StageTransition, error) {
	if err := s.tournamentRepo.AdvanceStage(ctx, params); err != nil {
		if errors.Is(err, repositories.ErrStageConflict) {
			s.logger.Debug("stage already advanced", slog.String("tournament_id", params.TournamentID.String()), slog.String("from", string(params.From)))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to advance tournament from %s: %w", params.From, handleRepositoryError(err))
	}

	transition := &StageTransition{
		TournamentID: params.TournamentID,
		From:         params.From,
		To:           params.To,
		Matches:      params.Matches,
		Champion:     params.Champion,
	}
	attrs := []any{
		slog.String("tournament_id", params.TournamentID.String()),
		slog.String("from", string(params.From)),
		slog.String("to", string(params.To)),
	}
	if params.Champion != nil {
		attrs = append(attrs, slog.String("champion", *params.Champion))
	}
	s.logger.Info("tournament stage advanced", attrs...)

	dispatch(ctx, s.logger, s.listeners, func(ctx context.Context, l StageListener) error {
		return l.OnStageAdvanced(ctx, *transition)
	})
	return transition, nil
}

func (s *bracketService) AdvanceCurrent(ctx context.Context, tournamentID uuid.UUID) (*StageTransition, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.Stage == models.TournamentNotStarted {
		return s.Seed(ctx, tournamentID)
	}
	stage, ok := t.Stage.MatchStage()
	if !ok {
		return nil, nil
	}
	return s.Advance(ctx, tournamentID, stage)
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID uuid.UUID) (*BracketView, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		list, err := s.matchRepo.ListByTournament(gCtx, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		matches = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &BracketView{
		Tournament: tournament,
		Stage:      tournament.Stage,
		Champion:   tournament.Champion,
	}
	for _, stage := range []models.Stage{models.StageQuarterfinal, models.StageSemifinal, models.StageFinal} {
		round := BracketRound{Stage: stage, Matches: []*models.Match{}}
		for _, m := range matches {
			if m.Stage == stage {
				round.Matches = append(round.Matches, m)
			}
		}
		view.Rounds = append(view.Rounds, round)
	}
	return view, nil
}
