package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/nations-cup/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	ErrTeamCountryConflict = errors.New("country already registered in tournament")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrRegistrationClosed  = errors.New("tournament registration is closed")
	// ErrStageConflict means the tournament was no longer at the expected stage.
	ErrStageConflict = errors.New("tournament stage changed concurrently")
	// ErrMatchNotScheduled means the match was already completed.
	ErrMatchNotScheduled = errors.New("match is not scheduled")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	// AdvanceStage moves the tournament from one stage to the next, inserting
	// next-stage matches and the champion, atomically. It fails with
	// ErrStageConflict when the stage is no longer from.
	AdvanceStage(ctx context.Context, params AdvanceStageParams) error
}

type AdvanceStageParams struct {
	TournamentID uuid.UUID
	From         models.TournamentStage
	To           models.TournamentStage
	Matches      []*models.Match
	Champion     *string
}

type TeamRepository interface {
	// Register inserts the team while the tournament is locked, enforcing
	// the stage and capacity. It returns the number of registered teams.
	Register(ctx context.Context, team *models.Team, capacity int) (int, error)
	GetByCountry(ctx context.Context, tournamentID uuid.UUID, country string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error)
	// ApplyRecord adds delta to the team's display counters.
	ApplyRecord(ctx context.Context, tournamentID uuid.UUID, country string, delta models.TeamRecord) error
}

type MatchRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID, stage *models.Stage) ([]*models.Match, error)
	// Complete stores the result of a scheduled match. A match that is
	// already completed yields ErrMatchNotScheduled and is left untouched.
	Complete(ctx context.Context, id uuid.UUID, result *models.MatchResult, winner string, completedAt time.Time) (*models.Match, error)
}

// Repositories groups the stores the services depend on.
type Repositories struct {
	Tournaments TournamentRepository
	Teams       TeamRepository
	Matches     MatchRepository
}

func NewPostgresRepositories(db *sql.DB, logger *slog.Logger) Repositories {
	return Repositories{
		Tournaments: NewPostgresTournamentRepository(db, logger),
		Teams:       NewPostgresTeamRepository(db, logger),
		Matches:     NewPostgresMatchRepository(db),
	}
}
