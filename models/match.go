package models

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageQuarterfinal Stage = "quarterfinal"
	StageSemifinal    Stage = "semifinal"
	StageFinal        Stage = "final"
)

// MatchCount returns how many matches a stage holds.
func (s Stage) MatchCount() int {
	switch s {
	case StageQuarterfinal:
		return 4
	case StageSemifinal:
		return 2
	case StageFinal:
		return 1
	}
	return 0
}

// TournamentStage returns the tournament stage during which matches of s are played.
func (s Stage) TournamentStage() TournamentStage {
	switch s {
	case StageQuarterfinal:
		return TournamentQuarterfinal
	case StageSemifinal:
		return TournamentSemifinal
	case StageFinal:
		return TournamentFinal
	}
	return ""
}

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
)

type ResolutionMethod string

const (
	MethodQuick    ResolutionMethod = "quick"
	MethodDetailed ResolutionMethod = "detailed"
)

func (m ResolutionMethod) Valid() bool {
	return m == MethodQuick || m == MethodDetailed
}

type GoalPeriod string

const (
	PeriodRegulation GoalPeriod = "regulation"
	PeriodExtraTime  GoalPeriod = "extra_time"
	PeriodShootout   GoalPeriod = "shootout"
)

type GoalEvent struct {
	Team   string     `json:"team"`
	Minute int        `json:"minute"`
	Scorer string     `json:"scorer"`
	Period GoalPeriod `json:"period"`
}

type PenaltyKick struct {
	Round  int    `json:"round"`
	Team   string `json:"team"`
	Taker  string `json:"taker"`
	Scored bool   `json:"scored"`
}

type ShootoutResult struct {
	ScoreA int           `json:"score_a"`
	ScoreB int           `json:"score_b"`
	Kicks  []PenaltyKick `json:"kicks"`
	Winner string        `json:"winner"`
	// CoinToss is set when the sudden-death cap was reached without a decision.
	CoinToss bool `json:"coin_toss,omitempty"`
}

// MatchResult is the outcome of one simulation run.
type MatchResult struct {
	TeamA      string           `json:"team_a"`
	TeamB      string           `json:"team_b"`
	ScoreA     int              `json:"score_a"`
	ScoreB     int              `json:"score_b"`
	Goals      []GoalEvent      `json:"goals"`
	Commentary []string         `json:"commentary"`
	Method     ResolutionMethod `json:"method"`
	ExtraTime  bool             `json:"extra_time"`
	Shootout   *ShootoutResult  `json:"shootout,omitempty"`
}

// Winner returns the winning country. A level score is decided by the
// recorded shootout; ok is false when the result is level and undecided.
func (r *MatchResult) Winner() (winner string, ok bool) {
	switch {
	case r.ScoreA > r.ScoreB:
		return r.TeamA, true
	case r.ScoreB > r.ScoreA:
		return r.TeamB, true
	case r.Shootout != nil && r.Shootout.Winner != "":
		return r.Shootout.Winner, true
	}
	return "", false
}

type Match struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	TournamentID uuid.UUID         `json:"tournament_id" db:"tournament_id"`
	Stage        Stage             `json:"stage" db:"stage"`
	Slot         int               `json:"slot" db:"slot"`
	TeamA        *string           `json:"team_a,omitempty" db:"team_a"`
	TeamB        *string           `json:"team_b,omitempty" db:"team_b"`
	Status       MatchStatus       `json:"status" db:"status"`
	ScoreA       int               `json:"score_a" db:"score_a"`
	ScoreB       int               `json:"score_b" db:"score_b"`
	Goals        []GoalEvent       `json:"goals" db:"goals"`
	Commentary   []string          `json:"commentary" db:"commentary"`
	Method       *ResolutionMethod `json:"method,omitempty" db:"method"`
	ExtraTime    bool              `json:"extra_time" db:"extra_time"`
	Shootout     *ShootoutResult   `json:"shootout,omitempty" db:"shootout"`
	Winner       *string           `json:"winner,omitempty" db:"winner"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
}

// Result rebuilds the MatchResult of a completed match.
func (m *Match) Result() *MatchResult {
	r := &MatchResult{
		ScoreA:     m.ScoreA,
		ScoreB:     m.ScoreB,
		Goals:      m.Goals,
		Commentary: m.Commentary,
		ExtraTime:  m.ExtraTime,
		Shootout:   m.Shootout,
	}
	if m.TeamA != nil {
		r.TeamA = *m.TeamA
	}
	if m.TeamB != nil {
		r.TeamB = *m.TeamB
	}
	if m.Method != nil {
		r.Method = *m.Method
	}
	return r
}
