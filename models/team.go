package models

import (
	"time"

	"github.com/google/uuid"
)

const SquadSize = 23

type Representative struct {
	Name  string `json:"name" db:"representative_name"`
	Email string `json:"email" db:"representative_email"`
}

// Team — сборная, зарегистрированная на турнир. Ключ: (TournamentID, Country).
type Team struct {
	TournamentID   uuid.UUID      `json:"tournament_id" db:"tournament_id"`
	Country        string         `json:"country" db:"country"`
	Manager        string         `json:"manager" db:"manager"`
	Representative Representative `json:"representative"`
	Strength       float64        `json:"strength" db:"strength"`
	Roster         []Player       `json:"roster,omitempty" db:"roster"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`

	// Счетчики только для отображения, ядро турнира их не читает.
	Record TeamRecord `json:"record"`
}

type TeamRecord struct {
	Played       int `json:"played" db:"played"`
	Wins         int `json:"wins" db:"wins"`
	Draws        int `json:"draws" db:"draws"`
	Losses       int `json:"losses" db:"losses"`
	GoalsFor     int `json:"goals_for" db:"goals_for"`
	GoalsAgainst int `json:"goals_against" db:"goals_against"`
	Points       int `json:"points" db:"points"`
}

func (r TeamRecord) GoalDifference() int {
	return r.GoalsFor - r.GoalsAgainst
}

// Captain returns the squad captain, or nil if none is flagged.
func (t *Team) Captain() *Player {
	for i := range t.Roster {
		if t.Roster[i].IsCaptain {
			return &t.Roster[i]
		}
	}
	return nil
}
