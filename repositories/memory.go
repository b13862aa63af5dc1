package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/nations-cup/models"
	"github.com/google/uuid"
)

// memoryStore keeps every aggregate behind one mutex, so the compound
// operations (Register, AdvanceStage, Complete) are atomic.
type memoryStore struct {
	mu          sync.Mutex
	tournaments map[uuid.UUID]*models.Tournament
	teams       map[uuid.UUID][]*models.Team
	matches     map[uuid.UUID]*models.Match
	now         func() time.Time
}

// NewMemoryRepositories returns process-local stores sharing one state.
func NewMemoryRepositories() Repositories {
	s := &memoryStore{
		tournaments: make(map[uuid.UUID]*models.Tournament),
		teams:       make(map[uuid.UUID][]*models.Team),
		matches:     make(map[uuid.UUID]*models.Match),
		now:         time.Now,
	}
	return Repositories{
		Tournaments: &memoryTournamentRepository{s},
		Teams:       &memoryTeamRepository{s},
		Matches:     &memoryMatchRepository{s},
	}
}

func copyTournament(t *models.Tournament) *models.Tournament {
	c := *t
	if t.Champion != nil {
		champion := *t.Champion
		c.Champion = &champion
	}
	return &c
}

func copyTeam(t *models.Team) *models.Team {
	c := *t
	c.Roster = append([]models.Player(nil), t.Roster...)
	return &c
}

func copyMatch(m *models.Match) *models.Match {
	c := *m
	c.Goals = append([]models.GoalEvent(nil), m.Goals...)
	c.Commentary = append([]string(nil), m.Commentary...)
	return &c
}

type memoryTournamentRepository struct {
	s *memoryStore
}

func (r *memoryTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if tournament.ID == uuid.Nil {
		tournament.ID = uuid.New()
	}
	if tournament.Stage == "" {
		tournament.Stage = models.TournamentNotStarted
	}
	now := r.s.now()
	tournament.CreatedAt, tournament.UpdatedAt = now, now
	r.s.tournaments[tournament.ID] = copyTournament(tournament)
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return copyTournament(t), nil
}

func (r *memoryTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*models.Tournament, 0, len(r.s.tournaments))
	for _, t := range r.s.tournaments {
		out = append(out, copyTournament(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *memoryTournamentRepository) AdvanceStage(ctx context.Context, params AdvanceStageParams) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tournaments[params.TournamentID]
	if !ok {
		return ErrTournamentNotFound
	}
	if t.Stage != params.From {
		return ErrStageConflict
	}
	for _, m := range params.Matches {
		for _, existing := range r.s.matches {
			if existing.TournamentID == m.TournamentID && existing.Stage == m.Stage && existing.Slot == m.Slot {
				return ErrStageConflict
			}
		}
	}

	now := r.s.now()
	for _, m := range params.Matches {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.Status = models.MatchScheduled
		m.CreatedAt = now
		r.s.matches[m.ID] = copyMatch(m)
	}
	t.Stage = params.To
	if params.Champion != nil {
		champion := *params.Champion
		t.Champion = &champion
	}
	t.UpdatedAt = now
	return nil
}

type memoryTeamRepository struct {
	s *memoryStore
}

func (r *memoryTeamRepository) Register(ctx context.Context, team *models.Team, capacity int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tournaments[team.TournamentID]
	if !ok {
		return 0, ErrTournamentNotFound
	}
	if t.Stage != models.TournamentNotStarted {
		return 0, ErrRegistrationClosed
	}
	teams := r.s.teams[team.TournamentID]
	if len(teams) >= capacity {
		return 0, ErrTournamentFull
	}
	for _, existing := range teams {
		if existing.Country == team.Country {
			return 0, ErrTeamCountryConflict
		}
	}

	team.CreatedAt = r.s.now()
	r.s.teams[team.TournamentID] = append(teams, copyTeam(team))
	return len(teams) + 1, nil
}

func (r *memoryTeamRepository) GetByCountry(ctx context.Context, tournamentID uuid.UUID, country string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.teams[tournamentID] {
		if t.Country == country {
			return copyTeam(t), nil
		}
	}
	return nil, ErrTeamNotFound
}

func (r *memoryTeamRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	teams := r.s.teams[tournamentID]
	out := make([]*models.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, copyTeam(t))
	}
	return out, nil
}

func (r *memoryTeamRepository) ApplyRecord(ctx context.Context, tournamentID uuid.UUID, country string, d models.TeamRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.teams[tournamentID] {
		if t.Country == country {
			t.Record.Played += d.Played
			t.Record.Wins += d.Wins
			t.Record.Draws += d.Draws
			t.Record.Losses += d.Losses
			t.Record.GoalsFor += d.GoalsFor
			t.Record.GoalsAgainst += d.GoalsAgainst
			t.Record.Points += d.Points
			return nil
		}
	}
	return ErrTeamNotFound
}

type memoryMatchRepository struct {
	s *memoryStore
}

func (r *memoryMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func stageOrder(s models.Stage) int {
	switch s {
	case models.StageQuarterfinal:
		return 1
	case models.StageSemifinal:
		return 2
	}
	return 3
}

func (r *memoryMatchRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID, stage *models.Stage) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID != tournamentID || (stage != nil && m.Stage != *stage) {
			continue
		}
		out = append(out, copyMatch(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return stageOrder(out[i].Stage) < stageOrder(out[j].Stage)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (r *memoryMatchRepository) Complete(ctx context.Context, id uuid.UUID, result *models.MatchResult, winner string, completedAt time.Time) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.Status != models.MatchScheduled {
		return nil, ErrMatchNotScheduled
	}

	method := result.Method
	m.Status = models.MatchCompleted
	m.ScoreA, m.ScoreB = result.ScoreA, result.ScoreB
	m.Goals = append([]models.GoalEvent(nil), result.Goals...)
	m.Commentary = append([]string(nil), result.Commentary...)
	m.Method = &method
	m.ExtraTime = result.ExtraTime
	m.Shootout = result.Shootout
	m.Winner = &winner
	m.CompletedAt = &completedAt
	return copyMatch(m), nil
}
