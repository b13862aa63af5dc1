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

type postgresTournamentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresTournamentRepository(db *sql.DB, logger *slog.Logger) TournamentRepository {
	return &postgresTournamentRepository{db: db, logger: logger}
}

const tournamentColumns = `id, name, stage, champion, created_at, updated_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	var champion sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.Stage, &champion, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if champion.Valid {
		t.Champion = &champion.String
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.ID == uuid.Nil {
		tournament.ID = uuid.New()
	}
	if tournament.Stage == "" {
		tournament.Stage = models.TournamentNotStarted
	}
	query := `
		INSERT INTO tournaments (id, name, stage)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, tournament.ID, tournament.Name, tournament.Stage).
		Scan(&tournament.CreatedAt, &tournament.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) AdvanceStage(ctx context.Context, params AdvanceStageParams) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		query := `
			UPDATE tournaments
			SET stage = $1, champion = COALESCE($2, champion), updated_at = now()
			WHERE id = $3 AND stage = $4`

		result, err := tx.ExecContext(ctx, query, params.To, params.Champion, params.TournamentID, params.From)
		if err != nil {
			return fmt.Errorf("failed to update tournament stage: %w", err)
		}
		if err := checkAffectedRows(result, ErrStageConflict); err != nil {
			if !errors.Is(err, ErrStageConflict) {
				return err
			}
			var exists bool
			if qErr := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, params.TournamentID).Scan(&exists); qErr != nil {
				return qErr
			}
			if !exists {
				return ErrTournamentNotFound
			}
			return ErrStageConflict
		}

		for _, m := range params.Matches {
			if err := insertMatch(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}
