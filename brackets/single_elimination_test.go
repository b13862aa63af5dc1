package brackets

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/Dosada05/nations-cup/models"
)

var eight = []string{"Nigeria", "Ghana", "Senegal", "Egypt", "Morocco", "Cameroon", "Algeria", "Tunisia"}

func TestSeedQuarterfinals(t *testing.T) {
	input := append([]string(nil), eight...)
	matches, err := SeedQuarterfinals(rand.New(rand.NewSource(42)), input)
	if err != nil {
		t.Fatalf("SeedQuarterfinals() error: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(matches))
	}

	var seen []string
	for i, m := range matches {
		if m.Stage != models.StageQuarterfinal || m.Slot != i+1 {
			t.Errorf("match %d: stage %s slot %d", i, m.Stage, m.Slot)
		}
		if m.TeamA == m.TeamB {
			t.Errorf("match %d pairs %s with itself", i, m.TeamA)
		}
		seen = append(seen, m.TeamA, m.TeamB)
	}
	sort.Strings(seen)
	want := append([]string(nil), eight...)
	sort.Strings(want)
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("teams %v, want each of %v exactly once", seen, want)
		}
	}
	for i := range input {
		if input[i] != eight[i] {
			t.Fatalf("input slice was reordered")
		}
	}
}

func TestSeedQuarterfinalsIsSeeded(t *testing.T) {
	a, _ := SeedQuarterfinals(rand.New(rand.NewSource(7)), eight)
	b, _ := SeedQuarterfinals(rand.New(rand.NewSource(7)), eight)
	for i := range a {
		if *a[i] != *b[i] {
			t.Fatalf("same seed produced different brackets: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestSeedQuarterfinalsRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := map[string][]string{
		"seven":     eight[:7],
		"duplicate": append(append([]string(nil), eight[:7]...), "Nigeria"),
		"empty":     append(append([]string(nil), eight[:7]...), ""),
	}
	for name, countries := range cases {
		if _, err := SeedQuarterfinals(rng, countries); !errors.Is(err, ErrBracketSize) {
			t.Errorf("%s: err = %v, want ErrBracketSize", name, err)
		}
	}
}

func completed(stage models.Stage, slot int, a, b string, sa, sb int, at time.Time) *models.Match {
	return &models.Match{
		Stage:       stage,
		Slot:        slot,
		TeamA:       &a,
		TeamB:       &b,
		Status:      models.MatchCompleted,
		ScoreA:      sa,
		ScoreB:      sb,
		CompletedAt: &at,
	}
}

func TestPairWinnersUsesCompletionOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	qf := []*models.Match{
		completed(models.StageQuarterfinal, 1, "Nigeria", "Ghana", 2, 0, base.Add(3*time.Minute)),
		completed(models.StageQuarterfinal, 2, "Senegal", "Egypt", 0, 1, base.Add(1*time.Minute)),
		completed(models.StageQuarterfinal, 3, "Morocco", "Cameroon", 3, 1, base.Add(4*time.Minute)),
		completed(models.StageQuarterfinal, 4, "Algeria", "Tunisia", 0, 2, base.Add(2*time.Minute)),
	}

	sf, err := PairWinners(models.StageQuarterfinal, qf)
	if err != nil {
		t.Fatalf("PairWinners() error: %v", err)
	}
	want := []BracketMatch{
		{UID: "R2M1", Stage: models.StageSemifinal, Slot: 1, TeamA: "Egypt", TeamB: "Tunisia"},
		{UID: "R2M2", Stage: models.StageSemifinal, Slot: 2, TeamA: "Nigeria", TeamB: "Morocco"},
	}
	if len(sf) != len(want) {
		t.Fatalf("got %d semifinals, want %d", len(sf), len(want))
	}
	for i := range want {
		if *sf[i] != want[i] {
			t.Errorf("semifinal %d = %+v, want %+v", i, *sf[i], want[i])
		}
	}
}

func TestPairWinnersSameTimestampFallsBackToSlot(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sf := []*models.Match{
		completed(models.StageSemifinal, 2, "Egypt", "Tunisia", 1, 0, at),
		completed(models.StageSemifinal, 1, "Nigeria", "Morocco", 0, 1, at),
	}
	final, err := PairWinners(models.StageSemifinal, sf)
	if err != nil {
		t.Fatal(err)
	}
	if len(final) != 1 || final[0].TeamA != "Morocco" || final[0].TeamB != "Egypt" || final[0].Stage != models.StageFinal {
		t.Fatalf("final = %+v", final[0])
	}
}

func TestPairWinnersErrors(t *testing.T) {
	at := time.Now()
	qf := []*models.Match{
		completed(models.StageQuarterfinal, 1, "Nigeria", "Ghana", 2, 0, at),
		completed(models.StageQuarterfinal, 2, "Senegal", "Egypt", 0, 1, at),
		completed(models.StageQuarterfinal, 3, "Morocco", "Cameroon", 3, 1, at),
	}
	if _, err := PairWinners(models.StageQuarterfinal, qf); !errors.Is(err, ErrStageIncomplete) {
		t.Errorf("three matches: err = %v, want ErrStageIncomplete", err)
	}

	pending := completed(models.StageQuarterfinal, 4, "Algeria", "Tunisia", 0, 0, at)
	pending.Status = models.MatchScheduled
	if _, err := PairWinners(models.StageQuarterfinal, append(qf, pending)); !errors.Is(err, ErrStageIncomplete) {
		t.Errorf("scheduled match: err = %v, want ErrStageIncomplete", err)
	}

	level := completed(models.StageQuarterfinal, 4, "Algeria", "Tunisia", 1, 1, at)
	if _, err := PairWinners(models.StageQuarterfinal, append(qf, level)); !errors.Is(err, ErrNoWinner) {
		t.Errorf("level match: err = %v, want ErrNoWinner", err)
	}

	final := []*models.Match{completed(models.StageFinal, 1, "Egypt", "Morocco", 1, 0, at)}
	if _, err := PairWinners(models.StageFinal, final); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("final: err = %v, want ErrUnknownStage", err)
	}
}

func TestWinner(t *testing.T) {
	at := time.Now()
	tests := []struct {
		name  string
		match *models.Match
		want  string
	}{
		{"team a higher", completed(models.StageFinal, 1, "Egypt", "Ghana", 2, 1, at), "Egypt"},
		{"team b higher", completed(models.StageFinal, 1, "Egypt", "Ghana", 0, 1, at), "Ghana"},
		{"level decided on penalties", func() *models.Match {
			m := completed(models.StageFinal, 1, "Egypt", "Ghana", 1, 1, at)
			m.Shootout = &models.ShootoutResult{ScoreA: 3, ScoreB: 4, Winner: "Ghana"}
			return m
		}(), "Ghana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Winner(tt.match)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Winner() = %s, want %s", got, tt.want)
			}
		})
	}

	scheduled := completed(models.StageFinal, 1, "Egypt", "Ghana", 0, 0, at)
	scheduled.Status = models.MatchScheduled
	if _, err := Winner(scheduled); !errors.Is(err, ErrNoWinner) {
		t.Errorf("scheduled: err = %v, want ErrNoWinner", err)
	}
}

func TestNextStage(t *testing.T) {
	chain := []models.TournamentStage{
		models.TournamentNotStarted,
		models.TournamentQuarterfinal,
		models.TournamentSemifinal,
		models.TournamentFinal,
		models.TournamentCompleted,
	}
	for i := 0; i+1 < len(chain); i++ {
		got, ok := NextStage(chain[i])
		if !ok || got != chain[i+1] {
			t.Errorf("NextStage(%s) = %s, %v; want %s", chain[i], got, ok, chain[i+1])
		}
	}
	if _, ok := NextStage(models.TournamentCompleted); ok {
		t.Errorf("completed tournament has a next stage")
	}
}

func TestGeneratorHonoursContext(t *testing.T) {
	g := NewSingleEliminationGenerator(rand.New(rand.NewSource(1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.GenerateBracket(ctx, GenerateBracketParams{Countries: eight}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	matches, err := g.GenerateBracket(context.Background(), GenerateBracketParams{Countries: eight})
	if err != nil || len(matches) != 4 {
		t.Fatalf("GenerateBracket() = %d matches, %v", len(matches), err)
	}
}
