package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
	"github.com/Dosada05/nations-cup/squad"
	"github.com/google/uuid"
)

type RegisterTeamInput struct {
	Country        string                `json:"country"`
	Manager        string                `json:"manager"`
	Representative models.Representative `json:"representative"`
	Roster         []models.Player       `json:"roster"`
}

type TeamService interface {
	RegisterTeam(ctx context.Context, tournamentID uuid.UUID, input RegisterTeamInput) (*models.Team, error)
	GetTeam(ctx context.Context, tournamentID uuid.UUID, country string) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error)
	// Standings orders teams by points, goal difference, goals scored, country.
	Standings(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error)
}

type teamService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	bracket        BracketService
	validator      *squad.Validator
	logger         *slog.Logger
}

func NewTeamService(
	repos repositories.Repositories,
	bracket BracketService,
	validator *squad.Validator,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		tournamentRepo: repos.Tournaments,
		teamRepo:       repos.Teams,
		bracket:        bracket,
		validator:      validator,
		logger:         logger,
	}
}

func validateRegistration(input *RegisterTeamInput) error {
	input.Country = strings.TrimSpace(input.Country)
	input.Manager = strings.TrimSpace(input.Manager)
	input.Representative.Name = strings.TrimSpace(input.Representative.Name)
	input.Representative.Email = strings.TrimSpace(input.Representative.Email)

	var problems []string
	if input.Country == "" {
		problems = append(problems, "country is required")
	}
	if input.Manager == "" {
		problems = append(problems, "manager is required")
	}
	if input.Representative.Name == "" {
		problems = append(problems, "representative name is required")
	}
	if _, err := mail.ParseAddress(input.Representative.Email); err != nil {
		problems = append(problems, "representative email is invalid")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

func (s *teamService) RegisterTeam(ctx context.Context, tournamentID uuid.UUID, input RegisterTeamInput) (*models.Team, error) {
	if err := validateRegistration(&input); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Roster); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	roster := squad.EnsureCaptain(input.Roster)
	team := &models.Team{
		TournamentID:   tournamentID,
		Country:        input.Country,
		Manager:        input.Manager,
		Representative: input.Representative,
		Strength:       squad.TeamStrength(roster),
		Roster:         roster,
	}

	registered, err := s.teamRepo.Register(ctx, team, models.BracketSize)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("team registered",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("country", team.Country),
		slog.Float64("strength", team.Strength),
		slog.Int("registered", registered),
	)

	if registered == models.BracketSize {
		// регистрация уже зафиксирована; при ошибке посев повторяется через /advance
		if _, err := s.bracket.Seed(ctx, tournamentID); err != nil {
			s.logger.Error("bracket seeding failed", slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		}
	}
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, tournamentID uuid.UUID, country string) (*models.Team, error) {
	team, err := s.teamRepo.GetByCountry(ctx, tournamentID, country)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) Standings(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error) {
	teams, err := s.ListTeams(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	SortStandings(teams)
	return teams, nil
}

func SortStandings(teams []*models.Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i].Record, teams[j].Record
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return teams[i].Country < teams[j].Country
	})
}
