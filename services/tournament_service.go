package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
	"github.com/google/uuid"
)

const maxTournamentNameLength = 100

type TournamentService interface {
	Create(ctx context.Context, name string) (*models.Tournament, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, logger: logger}
}

func (s *tournamentService) Create(ctx context.Context, name string) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if utf8.RuneCountInString(name) > maxTournamentNameLength {
		return nil, fmt.Errorf("%w: tournament name must be at most %d characters", ErrValidationFailed, maxTournamentNameLength)
	}

	tournament := &models.Tournament{Name: name, Stage: models.TournamentNotStarted}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.Info("tournament created", slog.String("tournament_id", tournament.ID.String()), slog.String("name", name))
	return tournament, nil
}

func (s *tournamentService) Get(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	list, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return list, nil
}
