package squad

import "github.com/Dosada05/nations-cup/models"

// DefaultStrength is returned for an empty roster.
const DefaultStrength = 75.0

// TeamStrength is the mean natural-position rating over the roster.
func TeamStrength(roster []models.Player) float64 {
	if len(roster) == 0 {
		return DefaultStrength
	}
	total := 0
	for _, p := range roster {
		total += p.NaturalRating()
	}
	return float64(total) / float64(len(roster))
}
