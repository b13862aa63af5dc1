package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/nations-cup/models"
	"github.com/google/uuid"
)

type postgresTeamRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresTeamRepository(db *sql.DB, logger *slog.Logger) TeamRepository {
	return &postgresTeamRepository{db: db, logger: logger}
}

const teamColumns = `tournament_id, country, manager, representative_name, representative_email, strength, roster,
	played, wins, draws, losses, goals_for, goals_against, points, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	t := &models.Team{}
	var roster []byte
	err := row.Scan(
		&t.TournamentID,
		&t.Country,
		&t.Manager,
		&t.Representative.Name,
		&t.Representative.Email,
		&t.Strength,
		&roster,
		&t.Record.Played,
		&t.Record.Wins,
		&t.Record.Draws,
		&t.Record.Losses,
		&t.Record.GoalsFor,
		&t.Record.GoalsAgainst,
		&t.Record.Points,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(roster, &t.Roster); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) Register(ctx context.Context, team *models.Team, capacity int) (int, error) {
	var registered int
	err := withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		var stage models.TournamentStage
		err := tx.QueryRowContext(ctx, `SELECT stage FROM tournaments WHERE id = $1 FOR UPDATE`, team.TournamentID).Scan(&stage)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTournamentNotFound
			}
			return err
		}
		if stage != models.TournamentNotStarted {
			return ErrRegistrationClosed
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE tournament_id = $1`, team.TournamentID).Scan(&count); err != nil {
			return err
		}
		if count >= capacity {
			return ErrTournamentFull
		}

		roster, err := marshalJSON(team.Roster)
		if err != nil {
			return err
		}
		query := `
			INSERT INTO teams (tournament_id, country, manager, representative_name, representative_email, strength, roster)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at`
		err = tx.QueryRowContext(ctx, query,
			team.TournamentID,
			team.Country,
			team.Manager,
			team.Representative.Name,
			team.Representative.Email,
			team.Strength,
			roster,
		).Scan(&team.CreatedAt)
		if err != nil {
			return r.handleTeamError(err)
		}
		registered = count + 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return registered, nil
}

func (r *postgresTeamRepository) GetByCountry(ctx context.Context, tournamentID uuid.UUID, country string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 AND country = $2`

	t, err := scanTeam(r.db.QueryRowContext(ctx, query, tournamentID, country))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 ORDER BY created_at ASC, country ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) ApplyRecord(ctx context.Context, tournamentID uuid.UUID, country string, d models.TeamRecord) error {
	query := `
		UPDATE teams
		SET played = played + $1, wins = wins + $2, draws = draws + $3, losses = losses + $4,
		    goals_for = goals_for + $5, goals_against = goals_against + $6, points = points + $7
		WHERE tournament_id = $8 AND country = $9`

	result, err := r.db.ExecContext(ctx, query,
		d.Played, d.Wins, d.Draws, d.Losses, d.GoalsFor, d.GoalsAgainst, d.Points,
		tournamentID, country,
	)
	if err != nil {
		return fmt.Errorf("failed to update team record: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	switch pqCode(err) {
	case pqUniqueViolation:
		return ErrTeamCountryConflict
	case pqForeignKeyViolation:
		return ErrTournamentNotFound
	}
	return fmt.Errorf("failed to insert team: %w", err)
}
