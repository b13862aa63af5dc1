package squad

import (
	"fmt"

	"github.com/Dosada05/nations-cup/models"
)

// Intn is the random source used for roster generation; *rand.Rand satisfies it.
type Intn interface {
	Intn(n int) int
}

// Layout is the number of players generated per natural position.
type Layout map[models.Position]int

// DefaultLayout is the 3/8/8/4 squad shape used for demo federations.
var DefaultLayout = Layout{
	models.PositionGoalkeeper: 3,
	models.PositionDefender:   8,
	models.PositionMidfielder: 8,
	models.PositionAttacker:   4,
}

// LayoutFor returns a layout that satisfies the policy.
func LayoutFor(policy QuotaPolicy) Layout {
	if policy.Exact {
		l := make(Layout, len(policy.Quotas))
		for pos, n := range policy.Quotas {
			l[pos] = n
		}
		return l
	}
	return DefaultLayout
}

func (l Layout) Size() int {
	n := 0
	for _, c := range l {
		n += c
	}
	return n
}

var (
	firstNames = []string{"Mohamed", "Youssef", "Ahmed", "Kofi", "Kwame", "Adebayo", "Tendai", "Ibrahim", "Abdul", "Chinedu", "Samuel", "Joseph"}
	lastNames  = []string{"Diallo", "Traore", "Mensah", "Okafor", "Kamara", "Sow", "Keita", "Ndiaye", "Conte", "Appiah", "Sarr", "Cisse"}
)

// GenerateRoster builds a random squad following layout. Natural ratings are
// drawn from [50,100], the other three from [0,50]. The first player is captain.
func GenerateRoster(rng Intn, layout Layout) ([]models.Player, error) {
	if layout.Size() != models.SquadSize {
		return nil, fmt.Errorf("layout describes %d players, squad needs %d", layout.Size(), models.SquadSize)
	}

	roster := make([]models.Player, 0, models.SquadSize)
	for _, pos := range models.Positions {
		for i := 0; i < layout[pos]; i++ {
			roster = append(roster, models.Player{
				Name:            RandomName(rng),
				NaturalPosition: pos,
				Ratings:         randomRatings(rng, pos),
				IsCaptain:       len(roster) == 0,
			})
		}
	}
	return roster, nil
}

// RandomName returns a "First Last" name.
func RandomName(rng Intn) string {
	return firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
}

func randomRatings(rng Intn, natural models.Position) map[models.Position]int {
	ratings := make(map[models.Position]int, len(models.Positions))
	for _, pos := range models.Positions {
		if pos == natural {
			ratings[pos] = models.NaturalRatingMin + rng.Intn(models.MaxRating-models.NaturalRatingMin+1)
		} else {
			ratings[pos] = rng.Intn(models.OffPositionRatingMax + 1)
		}
	}
	return ratings
}
