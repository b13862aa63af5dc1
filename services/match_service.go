package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
	"github.com/Dosada05/nations-cup/simulation"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrAdvancePending accompanies a stored result whose bracket advancement
// failed; POST /tournaments/{id}/advance retries it.
var ErrAdvancePending = errors.New("match completed but bracket advancement failed")

type MatchService interface {
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	// ResolveMatch simulates a scheduled match, stores the result and
	// advances the bracket. When only the advancement fails it returns the
	// stored result together with an error wrapping ErrAdvancePending.
	ResolveMatch(ctx context.Context, matchID uuid.UUID, method models.ResolutionMethod) (*models.MatchResult, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	bracket   BracketService
	simulator *simulation.Simulator
	listeners []MatchCompletedListener
	logger    *slog.Logger
	now       func() time.Time
}

func NewMatchService(
	repos repositories.Repositories,
	bracket BracketService,
	simulator *simulation.Simulator,
	logger *slog.Logger,
	listeners ...MatchCompletedListener,
) MatchService {
	return &matchService{
		matchRepo: repos.Matches,
		teamRepo:  repos.Teams,
		bracket:   bracket,
		simulator: simulator,
		listeners: listeners,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *matchService) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return m, nil
}

func (s *matchService) loadTeams(ctx context.Context, m *models.Match) (*models.Team, *models.Team, error) {
	var teamA, teamB *models.Team
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.teamRepo.GetByCountry(gCtx, m.TournamentID, *m.TeamA)
		teamA = t
		return err
	})
	g.Go(func() error {
		t, err := s.teamRepo.GetByCountry(gCtx, m.TournamentID, *m.TeamB)
		teamB = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, handleRepositoryError(err)
	}
	return teamA, teamB, nil
}

func side(t *models.Team) simulation.Side {
	return simulation.Side{Name: t.Country, Strength: t.Strength, Roster: t.Roster}
}

func (s *matchService) ResolveMatch(ctx context.Context, matchID uuid.UUID, method models.ResolutionMethod) (*models.MatchResult, error) {
	if !method.Valid() {
		return nil, ErrInvalidResolutionMethod
	}

	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if m.Status == models.MatchCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if m.TeamA == nil || m.TeamB == nil {
		return nil, ErrMatchNotReady
	}

	teamA, teamB, err := s.loadTeams(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for match %s: %w", matchID, err)
	}

	result, err := s.simulator.Simulate(method, side(teamA), side(teamB))
	if err != nil {
		return nil, fmt.Errorf("failed to simulate match %s: %w", matchID, err)
	}
	winner, ok := result.Winner()
	if !ok {
		return nil, fmt.Errorf("%w: match %s produced no winner", simulation.ErrSimulation, matchID)
	}

	completed, err := s.matchRepo.Complete(ctx, matchID, result, winner, s.now())
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("match completed",
		slog.String("match_id", matchID.String()),
		slog.String("stage", string(completed.Stage)),
		slog.String("method", string(method)),
		slog.String("score", fmt.Sprintf("%s %d-%d %s", result.TeamA, result.ScoreA, result.ScoreB, result.TeamB)),
		slog.String("winner", winner),
	)

	transition, advErr := s.bracket.Advance(ctx, completed.TournamentID, completed.Stage)

	event := MatchCompletedEvent{
		TournamentID: completed.TournamentID,
		Match:        completed,
		TeamA:        EventTeam{Country: teamA.Country, Representative: teamA.Representative},
		TeamB:        EventTeam{Country: teamB.Country, Representative: teamB.Representative},
		Winner:       winner,
		Transition:   transition,
		OccurredAt:   derefTime(completed.CompletedAt),
	}
	dispatch(ctx, s.logger, s.listeners, func(ctx context.Context, l MatchCompletedListener) error {
		return l.OnMatchCompleted(ctx, event)
	})

	if advErr != nil {
		s.logger.Error("bracket advancement failed", slog.String("match_id", matchID.String()), slog.Any("error", advErr))
		return result, fmt.Errorf("%w: %w", ErrAdvancePending, advErr)
	}
	return result, nil
}
