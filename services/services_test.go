package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/nations-cup/brackets"
	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
	"github.com/Dosada05/nations-cup/simulation"
	"github.com/Dosada05/nations-cup/squad"
	"github.com/google/uuid"
)

var countries = []string{"Nigeria", "Ghana", "Senegal", "Egypt", "Morocco", "Cameroon", "Algeria", "Tunisia"}

type recordingListener struct {
	mu     sync.Mutex
	events []MatchCompletedEvent
	stages []StageTransition
	err    error
}

func (l *recordingListener) OnMatchCompleted(ctx context.Context, e MatchCompletedEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return l.err
}

func (l *recordingListener) OnStageAdvanced(ctx context.Context, tr StageTransition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stages = append(l.stages, tr)
	return l.err
}

type testEnv struct {
	repos       repositories.Repositories
	tournaments TournamentService
	teams       TeamService
	bracket     BracketService
	matches     MatchService
	listener    *recordingListener
	rng         *rand.Rand
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, seed int64, extra ...MatchCompletedListener) *testEnv {
	t.Helper()
	logger := discardLogger()
	repos := repositories.NewMemoryRepositories()
	listener := &recordingListener{}

	sim, err := simulation.New(rand.New(rand.NewSource(seed)), simulation.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	bracket := NewBracketService(repos, brackets.NewSingleEliminationGenerator(rand.New(rand.NewSource(seed))), logger, listener)
	listeners := append([]MatchCompletedListener{listener, NewStandingsRecorder(repos.Teams)}, extra...)

	return &testEnv{
		repos:       repos,
		tournaments: NewTournamentService(repos.Tournaments, logger),
		teams:       NewTeamService(repos, bracket, squad.NewValidator(squad.MinimumPolicy), logger),
		bracket:     bracket,
		matches:     NewMatchService(repos, bracket, sim, logger, listeners...),
		listener:    listener,
		rng:         rand.New(rand.NewSource(seed + 1)),
	}
}

func (e *testEnv) input(t *testing.T, country string) RegisterTeamInput {
	t.Helper()
	roster, err := squad.GenerateRoster(e.rng, squad.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	return RegisterTeamInput{
		Country:        country,
		Manager:        "Manager of " + country,
		Representative: models.Representative{Name: "Rep " + country, Email: "rep@" + country + ".example"},
		Roster:         roster,
	}
}

func (e *testEnv) fullTournament(t *testing.T) *models.Tournament {
	t.Helper()
	ctx := context.Background()
	tour, err := e.tournaments.Create(ctx, "Nations Cup")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range countries {
		if _, err := e.teams.RegisterTeam(ctx, tour.ID, e.input(t, c)); err != nil {
			t.Fatalf("RegisterTeam(%s) error: %v", c, err)
		}
	}
	return tour
}

func (e *testEnv) stageMatches(t *testing.T, id uuid.UUID, stage models.Stage) []*models.Match {
	t.Helper()
	list, err := e.repos.Matches.ListByTournament(context.Background(), id, &stage)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func TestEighthRegistrationSeedsQuarterfinals(t *testing.T) {
	env := newTestEnv(t, 1)
	tour := env.fullTournament(t)

	got, err := env.tournaments.Get(context.Background(), tour.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stage != models.TournamentQuarterfinal {
		t.Fatalf("stage = %s, want quarterfinal", got.Stage)
	}

	qf := env.stageMatches(t, tour.ID, models.StageQuarterfinal)
	if len(qf) != 4 {
		t.Fatalf("%d quarterfinals, want 4", len(qf))
	}
	seen := map[string]bool{}
	for _, m := range qf {
		if m.Status != models.MatchScheduled || m.TeamA == nil || m.TeamB == nil {
			t.Fatalf("bad quarterfinal %+v", m)
		}
		seen[*m.TeamA], seen[*m.TeamB] = true, true
	}
	if len(seen) != 8 {
		t.Errorf("%d distinct teams in quarterfinals, want 8", len(seen))
	}
	if len(env.listener.stages) != 1 || env.listener.stages[0].To != models.TournamentQuarterfinal {
		t.Errorf("stage listener got %+v", env.listener.stages)
	}

	_, err = env.teams.RegisterTeam(context.Background(), tour.ID, env.input(t, "Mali"))
	if !errors.Is(err, ErrRegistrationClosed) || !errors.Is(err, ErrConflict) {
		t.Errorf("9th registration: err = %v, want ErrRegistrationClosed", err)
	}
}

func TestTournamentRunsToChampion(t *testing.T) {
	for _, method := range []models.ResolutionMethod{models.MethodQuick, models.MethodDetailed} {
		t.Run(string(method), func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, 7)
			tour := env.fullTournament(t)

			var lastWinner string
			for _, stage := range []models.Stage{models.StageQuarterfinal, models.StageSemifinal, models.StageFinal} {
				matches := env.stageMatches(t, tour.ID, stage)
				if len(matches) != stage.MatchCount() {
					t.Fatalf("%s has %d matches, want %d", stage, len(matches), stage.MatchCount())
				}
				for _, m := range matches {
					res, err := env.matches.ResolveMatch(ctx, m.ID, method)
					if err != nil {
						t.Fatalf("ResolveMatch(%s slot %d) error: %v", stage, m.Slot, err)
					}
					w, ok := res.Winner()
					if !ok {
						t.Fatalf("no winner for %s slot %d", stage, m.Slot)
					}
					lastWinner = w
				}
			}

			got, err := env.tournaments.Get(ctx, tour.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Stage != models.TournamentCompleted {
				t.Fatalf("stage = %s, want completed", got.Stage)
			}
			if got.Champion == nil || *got.Champion != lastWinner {
				t.Fatalf("champion = %v, want final winner %s", got.Champion, lastWinner)
			}

			view, err := env.bracket.GetBracket(ctx, tour.ID)
			if err != nil {
				t.Fatal(err)
			}
			total := 0
			for _, r := range view.Rounds {
				total += len(r.Matches)
				for _, m := range r.Matches {
					if m.Status != models.MatchCompleted || m.Winner == nil {
						t.Errorf("%s slot %d not completed", m.Stage, m.Slot)
					}
				}
			}
			if total != 7 {
				t.Errorf("bracket holds %d matches, want 7", total)
			}

			standings, err := env.teams.Standings(ctx, tour.ID)
			if err != nil {
				t.Fatal(err)
			}
			played := 0
			for _, team := range standings {
				played += team.Record.Played
			}
			if played != 14 {
				t.Errorf("standings count %d appearances, want 14", played)
			}
			if len(env.listener.events) != 7 {
				t.Errorf("%d match events, want 7", len(env.listener.events))
			}
			if len(env.listener.stages) != 4 {
				t.Errorf("%d stage transitions, want 4", len(env.listener.stages))
			}
		})
	}
}

func TestSemifinalsFollowCompletionOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 3)
	tour := env.fullTournament(t)

	clock := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	env.matches.(*matchService).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	qf := env.stageMatches(t, tour.ID, models.StageQuarterfinal)
	order := []int{3, 0, 2, 1}
	var winners []string
	for _, i := range order {
		res, err := env.matches.ResolveMatch(ctx, qf[i].ID, models.MethodQuick)
		if err != nil {
			t.Fatal(err)
		}
		w, _ := res.Winner()
		winners = append(winners, w)
	}

	sf := env.stageMatches(t, tour.ID, models.StageSemifinal)
	if len(sf) != 2 {
		t.Fatalf("%d semifinals, want 2", len(sf))
	}
	if *sf[0].TeamA != winners[0] || *sf[0].TeamB != winners[1] || *sf[1].TeamA != winners[2] || *sf[1].TeamB != winners[3] {
		t.Errorf("semifinals %s-%s, %s-%s; winners in completion order %v",
			*sf[0].TeamA, *sf[0].TeamB, *sf[1].TeamA, *sf[1].TeamB, winners)
	}
}

func TestResolveMatchErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 11)
	tour := env.fullTournament(t)
	m := env.stageMatches(t, tour.ID, models.StageQuarterfinal)[0]

	if _, err := env.matches.ResolveMatch(ctx, m.ID, "penalties"); !errors.Is(err, ErrInvalidResolutionMethod) {
		t.Errorf("invalid method: err = %v", err)
	}
	if _, err := env.matches.ResolveMatch(ctx, uuid.New(), models.MethodQuick); !errors.Is(err, ErrMatchNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown match: err = %v", err)
	}

	first, err := env.matches.ResolveMatch(ctx, m.ID, models.MethodDetailed)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.matches.ResolveMatch(ctx, m.ID, models.MethodQuick); !errors.Is(err, ErrMatchAlreadyCompleted) {
		t.Errorf("second resolution: err = %v, want ErrMatchAlreadyCompleted", err)
	}
	stored, _ := env.matches.GetMatch(ctx, m.ID)
	if stored.ScoreA != first.ScoreA || stored.ScoreB != first.ScoreB || *stored.Method != models.MethodDetailed {
		t.Errorf("stored result changed after second resolution: %+v", stored)
	}
}

func TestConcurrentResolutionOfOneMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 5)
	tour := env.fullTournament(t)
	m := env.stageMatches(t, tour.ID, models.StageQuarterfinal)[0]

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, conflicts := 0, 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.matches.ResolveMatch(ctx, m.ID, models.MethodQuick)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrMatchAlreadyCompleted):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conflicts != 11 {
		t.Errorf("%d successes and %d conflicts, want 1 and 11", ok, conflicts)
	}
	if len(env.listener.events) != 1 {
		t.Errorf("%d events published, want 1", len(env.listener.events))
	}
}

func TestConcurrentQuarterfinalsAdvanceOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 9)
	tour := env.fullTournament(t)

	var wg sync.WaitGroup
	for _, m := range env.stageMatches(t, tour.ID, models.StageQuarterfinal) {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := env.matches.ResolveMatch(ctx, id, models.MethodDetailed); err != nil {
				t.Errorf("ResolveMatch: %v", err)
			}
		}(m.ID)
	}
	wg.Wait()

	if sf := env.stageMatches(t, tour.ID, models.StageSemifinal); len(sf) != 2 {
		t.Fatalf("%d semifinals, want exactly 2", len(sf))
	}
	got, _ := env.tournaments.Get(ctx, tour.ID)
	if got.Stage != models.TournamentSemifinal {
		t.Errorf("stage = %s, want semifinal", got.Stage)
	}
	transitions := 0
	for _, e := range env.listener.events {
		if e.Transition != nil {
			transitions++
		}
	}
	if transitions != 1 {
		t.Errorf("%d events carry a transition, want 1", transitions)
	}
}

func TestEventCarriesRepresentativesAndTransition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 13)
	tour := env.fullTournament(t)

	for _, m := range env.stageMatches(t, tour.ID, models.StageQuarterfinal) {
		if _, err := env.matches.ResolveMatch(ctx, m.ID, models.MethodQuick); err != nil {
			t.Fatal(err)
		}
	}
	events := env.listener.events
	if len(events) != 4 {
		t.Fatalf("%d events, want 4", len(events))
	}
	for i, e := range events {
		if e.TeamA.Representative.Email != "rep@"+e.TeamA.Country+".example" || e.TeamB.Representative.Name != "Rep "+e.TeamB.Country {
			t.Errorf("event %d representatives = %+v / %+v", i, e.TeamA, e.TeamB)
		}
		if (e.Transition != nil) != (i == 3) {
			t.Errorf("event %d transition = %+v", i, e.Transition)
		}
	}
	if tr := events[3].Transition; tr.From != models.TournamentQuarterfinal || tr.To != models.TournamentSemifinal || len(tr.Matches) != 2 {
		t.Errorf("transition = %+v", tr)
	}
}

func TestListenerFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	failing := &recordingListener{err: errors.New("notifier down")}
	env := newTestEnv(t, 17, failing)
	tour := env.fullTournament(t)
	m := env.stageMatches(t, tour.ID, models.StageQuarterfinal)[0]

	if _, err := env.matches.ResolveMatch(ctx, m.ID, models.MethodQuick); err != nil {
		t.Fatalf("listener failure surfaced: %v", err)
	}
	stored, _ := env.matches.GetMatch(ctx, m.ID)
	if stored.Status != models.MatchCompleted {
		t.Errorf("match status = %s after listener failure", stored.Status)
	}
	if len(failing.events) != 1 {
		t.Errorf("failing listener called %d times", len(failing.events))
	}
}

func TestRegisterTeamValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 19)
	tour, _ := env.tournaments.Create(ctx, "Cup")

	short := env.input(t, "Nigeria")
	short.Roster = short.Roster[:22]
	_, err := env.teams.RegisterTeam(ctx, tour.ID, short)
	var invalid *squad.InvalidSquadError
	if !errors.Is(err, ErrValidationFailed) || !errors.As(err, &invalid) || !invalid.Has(squad.ViolationSquadSize) {
		t.Errorf("22-player squad: err = %v", err)
	}

	noEmail := env.input(t, "Nigeria")
	noEmail.Representative.Email = "not-an-address"
	if _, err := env.teams.RegisterTeam(ctx, tour.ID, noEmail); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("bad email: err = %v", err)
	}

	if _, err := env.teams.RegisterTeam(ctx, tour.ID, env.input(t, "Nigeria")); err != nil {
		t.Fatal(err)
	}
	if _, err := env.teams.RegisterTeam(ctx, tour.ID, env.input(t, "Nigeria")); !errors.Is(err, ErrCountryConflict) {
		t.Errorf("duplicate country: err = %v", err)
	}
	if _, err := env.teams.RegisterTeam(ctx, uuid.New(), env.input(t, "Ghana")); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("unknown tournament: err = %v", err)
	}
	if teams, _ := env.teams.ListTeams(ctx, tour.ID); len(teams) != 1 {
		t.Errorf("%d teams stored, want 1", len(teams))
	}
}

func TestRegisterTeamAppointsCaptainAndStrength(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 23)
	tour, _ := env.tournaments.Create(ctx, "Cup")

	in := env.input(t, "Ghana")
	for i := range in.Roster {
		in.Roster[i].IsCaptain = false
	}
	team, err := env.teams.RegisterTeam(ctx, tour.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if team.Captain() == nil {
		t.Fatal("no captain appointed")
	}
	if team.Strength != squad.TeamStrength(in.Roster) {
		t.Errorf("strength = %v, want %v", team.Strength, squad.TeamStrength(in.Roster))
	}
	stored, _ := env.teams.GetTeam(ctx, tour.ID, "Ghana")
	if stored.Captain() == nil || stored.Captain().Name != team.Captain().Name {
		t.Errorf("stored captain differs")
	}
}

type failingSeeder struct {
	BracketService
	fail bool
}

func (f *failingSeeder) Seed(ctx context.Context, id uuid.UUID) (*StageTransition, error) {
	if f.fail {
		return nil, errors.New("seeding unavailable")
	}
	return f.BracketService.Seed(ctx, id)
}

func TestSeedFailureIsRecoveredByAdvance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 29)
	seeder := &failingSeeder{BracketService: env.bracket, fail: true}
	env.teams = NewTeamService(env.repos, seeder, squad.NewValidator(squad.MinimumPolicy), discardLogger())

	tour := env.fullTournament(t)
	got, _ := env.tournaments.Get(ctx, tour.ID)
	if got.Stage != models.TournamentNotStarted {
		t.Fatalf("stage = %s, want not_started after failed seeding", got.Stage)
	}
	if _, err := env.teams.RegisterTeam(ctx, tour.ID, env.input(t, "Mali")); !errors.Is(err, ErrTournamentFull) {
		t.Errorf("9th registration: err = %v, want ErrTournamentFull", err)
	}

	tr, err := env.bracket.AdvanceCurrent(ctx, tour.ID)
	if err != nil || tr == nil || tr.To != models.TournamentQuarterfinal {
		t.Fatalf("AdvanceCurrent() = %+v, %v", tr, err)
	}
	again, err := env.bracket.AdvanceCurrent(ctx, tour.ID)
	if err != nil || again != nil {
		t.Errorf("repeated AdvanceCurrent() = %+v, %v; want no-op", again, err)
	}
}

type failingAdvancer struct {
	BracketService
}

func (f *failingAdvancer) Advance(ctx context.Context, id uuid.UUID, stage models.Stage) (*StageTransition, error) {
	return nil, errors.New("database unavailable")
}

func TestAdvanceFailureAfterCommit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 31)
	tour := env.fullTournament(t)

	sim, _ := simulation.New(rand.New(rand.NewSource(1)), simulation.DefaultConfig())
	broken := NewMatchService(env.repos, &failingAdvancer{env.bracket}, sim, discardLogger())

	qf := env.stageMatches(t, tour.ID, models.StageQuarterfinal)
	for i, m := range qf {
		svc := env.matches
		if i == len(qf)-1 {
			svc = broken
		}
		res, err := svc.ResolveMatch(ctx, m.ID, models.MethodQuick)
		if i == len(qf)-1 {
			if !errors.Is(err, ErrAdvancePending) || res == nil {
				t.Fatalf("last quarterfinal: res=%v err=%v, want result with ErrAdvancePending", res, err)
			}
		} else if err != nil {
			t.Fatal(err)
		}
	}

	got, _ := env.tournaments.Get(ctx, tour.ID)
	if got.Stage != models.TournamentQuarterfinal {
		t.Fatalf("stage = %s, want quarterfinal before retry", got.Stage)
	}
	tr, err := env.bracket.AdvanceCurrent(ctx, tour.ID)
	if err != nil || tr == nil || tr.To != models.TournamentSemifinal {
		t.Fatalf("retry = %+v, %v", tr, err)
	}
}

func TestAdvanceIsNoOpWhileStageIncomplete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 37)
	tour := env.fullTournament(t)
	qf := env.stageMatches(t, tour.ID, models.StageQuarterfinal)
	if _, err := env.matches.ResolveMatch(ctx, qf[0].ID, models.MethodQuick); err != nil {
		t.Fatal(err)
	}

	for _, stage := range []models.Stage{models.StageQuarterfinal, models.StageSemifinal} {
		tr, err := env.bracket.Advance(ctx, tour.ID, stage)
		if err != nil || tr != nil {
			t.Errorf("Advance(%s) = %+v, %v; want no-op", stage, tr, err)
		}
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	env := newTestEnv(t, 41)
	if _, err := env.tournaments.Create(context.Background(), "   "); !errors.Is(err, ErrTournamentNameRequired) {
		t.Errorf("blank name: err = %v", err)
	}
	long := fmt.Sprintf("%0101d", 0)
	if _, err := env.tournaments.Create(context.Background(), long); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("long name: err = %v", err)
	}
	if _, err := env.tournaments.Get(context.Background(), uuid.New()); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("unknown tournament: err = %v", err)
	}
}

func TestSortStandings(t *testing.T) {
	teams := []*models.Team{
		{Country: "Egypt", Record: models.TeamRecord{Points: 3, GoalsFor: 2, GoalsAgainst: 1}},
		{Country: "Ghana", Record: models.TeamRecord{Points: 6, GoalsFor: 3, GoalsAgainst: 2}},
		{Country: "Benin", Record: models.TeamRecord{Points: 3, GoalsFor: 4, GoalsAgainst: 3}},
		{Country: "Angola", Record: models.TeamRecord{Points: 3, GoalsFor: 2, GoalsAgainst: 1}},
		{Country: "Chad", Record: models.TeamRecord{Points: 3, GoalsFor: 3, GoalsAgainst: 0}},
	}
	SortStandings(teams)
	want := []string{"Ghana", "Chad", "Benin", "Angola", "Egypt"}
	for i, c := range want {
		if teams[i].Country != c {
			t.Fatalf("position %d = %s, want %s", i+1, teams[i].Country, c)
		}
	}
}

func TestRecordDelta(t *testing.T) {
	if d := recordDelta(2, 1); d.Wins != 1 || d.Points != 3 || d.Played != 1 {
		t.Errorf("win delta = %+v", d)
	}
	if d := recordDelta(0, 3); d.Losses != 1 || d.Points != 0 || d.GoalsAgainst != 3 {
		t.Errorf("loss delta = %+v", d)
	}
	if d := recordDelta(1, 1); d.Draws != 1 || d.Points != 1 {
		t.Errorf("draw delta = %+v", d)
	}
}
