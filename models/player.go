package models

// Position представляет игровую позицию футболиста.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DF"
	PositionMidfielder Position = "MD"
	PositionAttacker   Position = "AT"
)

// Positions lists every position in squad order.
var Positions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker}

func (p Position) Valid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker:
		return true
	}
	return false
}

const (
	MinRating            = 0
	MaxRating            = 100
	NaturalRatingMin     = 50 // natural position ratings come from [50,100]
	OffPositionRatingMax = 50 // other positions come from [0,50]
)

type Player struct {
	Name            string           `json:"name" db:"name"`
	NaturalPosition Position         `json:"natural_position" db:"natural_position"`
	Ratings         map[Position]int `json:"ratings" db:"ratings"`
	IsCaptain       bool             `json:"is_captain" db:"is_captain"`
}

// NaturalRating returns the rating at the player's natural position.
func (p Player) NaturalRating() int {
	return p.Ratings[p.NaturalPosition]
}
