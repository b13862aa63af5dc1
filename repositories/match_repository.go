package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/nations-cup/models"
	"github.com/google/uuid"
)

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, stage, slot, team_a, team_b, status, score_a, score_b,
	goals, commentary, method, extra_time, shootout, winner, created_at, completed_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var (
		teamA, teamB, method, winner sql.NullString
		goals, commentary, shootout  []byte
		completedAt                  sql.NullTime
	)
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Stage,
		&m.Slot,
		&teamA,
		&teamB,
		&m.Status,
		&m.ScoreA,
		&m.ScoreB,
		&goals,
		&commentary,
		&method,
		&m.ExtraTime,
		&shootout,
		&winner,
		&m.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if teamA.Valid {
		m.TeamA = &teamA.String
	}
	if teamB.Valid {
		m.TeamB = &teamB.String
	}
	if winner.Valid {
		m.Winner = &winner.String
	}
	if method.Valid {
		rm := models.ResolutionMethod(method.String)
		m.Method = &rm
	}
	if completedAt.Valid {
		m.CompletedAt = &completedAt.Time
	}
	if err := unmarshalJSON(goals, &m.Goals); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(commentary, &m.Commentary); err != nil {
		return nil, err
	}
	if len(shootout) > 0 && string(shootout) != "null" {
		m.Shootout = &models.ShootoutResult{}
		if err := unmarshalJSON(shootout, m.Shootout); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// insertMatch creates a scheduled match; exec is the surrounding transaction.
func insertMatch(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Status = models.MatchScheduled
	query := `
		INSERT INTO matches (id, tournament_id, stage, slot, team_a, team_b, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query, m.ID, m.TournamentID, m.Stage, m.Slot, m.TeamA, m.TeamB, m.Status).
		Scan(&m.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ErrStageConflict
		}
		return fmt.Errorf("failed to insert %s match %d: %w", m.Stage, m.Slot, err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID, stage *models.Stage) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if stage != nil {
		query += ` AND stage = $2`
		args = append(args, *stage)
	}
	query += ` ORDER BY CASE stage WHEN 'quarterfinal' THEN 1 WHEN 'semifinal' THEN 2 ELSE 3 END, slot`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Complete(ctx context.Context, id uuid.UUID, result *models.MatchResult, winner string, completedAt time.Time) (*models.Match, error) {
	goals, err := marshalJSON(result.Goals)
	if err != nil {
		return nil, err
	}
	commentary, err := marshalJSON(result.Commentary)
	if err != nil {
		return nil, err
	}
	var shootout interface{}
	if result.Shootout != nil {
		doc, mErr := marshalJSON(result.Shootout)
		if mErr != nil {
			return nil, mErr
		}
		shootout = doc
	}

	query := `
		UPDATE matches
		SET status = $1, score_a = $2, score_b = $3, goals = $4, commentary = $5, method = $6,
		    extra_time = $7, shootout = $8, winner = $9, completed_at = $10
		WHERE id = $11 AND status = $12
		RETURNING ` + matchColumns

	m, err := scanMatch(r.db.QueryRowContext(ctx, query,
		models.MatchCompleted,
		result.ScoreA,
		result.ScoreB,
		goals,
		commentary,
		result.Method,
		result.ExtraTime,
		shootout,
		winner,
		completedAt,
		id,
		models.MatchScheduled,
	))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to complete match: %w", err)
	}

	var exists bool
	if qErr := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, id).Scan(&exists); qErr != nil {
		return nil, qErr
	}
	if !exists {
		return nil, ErrMatchNotFound
	}
	return nil, ErrMatchNotScheduled
}
