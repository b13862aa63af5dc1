package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStage представляет стадии турнира, соответствующие ENUM в БД.
type TournamentStage string

const (
	TournamentNotStarted   TournamentStage = "not_started"
	TournamentQuarterfinal TournamentStage = "quarterfinal"
	TournamentSemifinal    TournamentStage = "semifinal"
	TournamentFinal        TournamentStage = "final"
	TournamentCompleted    TournamentStage = "completed"
)

// BracketSize is the number of teams needed to seed the quarterfinals.
const BracketSize = 8

type Tournament struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Stage     TournamentStage `json:"stage" db:"stage"`
	Champion  *string         `json:"champion,omitempty" db:"champion"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// MatchStage maps a live tournament stage onto the stage of its matches.
func (s TournamentStage) MatchStage() (Stage, bool) {
	switch s {
	case TournamentQuarterfinal:
		return StageQuarterfinal, true
	case TournamentSemifinal:
		return StageSemifinal, true
	case TournamentFinal:
		return StageFinal, true
	}
	return "", false
}
