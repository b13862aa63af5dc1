package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/nations-cup/brackets"
	"github.com/Dosada05/nations-cup/handlers"
	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/repositories"
	"github.com/Dosada05/nations-cup/services"
	"github.com/Dosada05/nations-cup/simulation"
	"github.com/Dosada05/nations-cup/squad"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type testServer struct {
	*httptest.Server
	hub *brackets.Hub
	rng *rand.Rand
}

func newTestServer(t *testing.T, seed int64) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	hub := brackets.NewHub(logger)
	go hub.Run(ctx)

	repos := repositories.NewMemoryRepositories()
	sim, err := simulation.New(rand.New(rand.NewSource(seed)), simulation.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	live := services.NewLiveBroadcaster(hub)
	bracketService := services.NewBracketService(repos, brackets.NewSingleEliminationGenerator(rand.New(rand.NewSource(seed))), logger, live)
	tournamentService := services.NewTournamentService(repos.Tournaments, logger)
	teamService := services.NewTeamService(repos, bracketService, squad.NewValidator(squad.MinimumPolicy), logger)
	matchService := services.NewMatchService(repos, bracketService, sim, logger, services.NewStandingsRecorder(repos.Teams), live)

	router := chi.NewRouter()
	SetupRoutes(router, Options{Logger: logger, AllowedOrigins: []string{"*"}},
		handlers.NewTournamentHandler(tournamentService, bracketService),
		handlers.NewTeamHandler(teamService),
		handlers.NewMatchHandler(matchService),
		handlers.NewWebSocketHandler(hub, tournamentService, nil, logger),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{Server: srv, hub: hub, rng: rand.New(rand.NewSource(seed + 1))}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	env := map[string]json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: response is not a JSON object: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, raw json.RawMessage, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func (s *testServer) teamInput(t *testing.T, country string) services.RegisterTeamInput {
	t.Helper()
	roster, err := squad.GenerateRoster(s.rng, squad.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	return services.RegisterTeamInput{
		Country:        country,
		Manager:        "Coach " + country,
		Representative: models.Representative{Name: "Rep " + country, Email: "fa@" + strings.ToLower(country) + ".example"},
		Roster:         roster,
	}
}

func (s *testServer) createTournament(t *testing.T) *models.Tournament {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/v1/tournaments", map[string]string{"name": "Nations Cup"})
	if status != http.StatusCreated {
		t.Fatalf("create tournament status = %d", status)
	}
	var tour models.Tournament
	decode(t, env["tournament"], &tour)
	return &tour
}

var countries = []string{"Kenya", "Uganda", "Zambia", "Angola", "Mali", "Benin", "Gabon", "Togo"}

func (s *testServer) registerAll(t *testing.T, id string) {
	t.Helper()
	for _, c := range countries {
		status, env := s.do(t, http.MethodPost, "/api/v1/tournaments/"+id+"/teams", s.teamInput(t, c))
		if status != http.StatusCreated {
			t.Fatalf("register %s: status %d, body %s", c, status, env["error"])
		}
	}
}

func (s *testServer) bracket(t *testing.T, id string) services.BracketView {
	t.Helper()
	status, env := s.do(t, http.MethodGet, "/api/v1/tournaments/"+id+"/bracket", nil)
	if status != http.StatusOK {
		t.Fatalf("bracket status = %d", status)
	}
	var view services.BracketView
	decode(t, env["bracket"], &view)
	return view
}

func TestFullTournamentOverHTTP(t *testing.T) {
	s := newTestServer(t, 2)
	tour := s.createTournament(t)
	id := tour.ID.String()
	s.registerAll(t, id)

	status, env := s.do(t, http.MethodPost, "/api/v1/tournaments/"+id+"/teams", s.teamInput(t, "Chad"))
	if status != http.StatusConflict {
		t.Errorf("9th registration status = %d, body %s", status, env["error"])
	}

	for round, stage := range []models.Stage{models.StageQuarterfinal, models.StageSemifinal, models.StageFinal} {
		view := s.bracket(t, id)
		matches := view.Rounds[round].Matches
		if len(matches) != stage.MatchCount() {
			t.Fatalf("%s round has %d matches", stage, len(matches))
		}
		for _, m := range matches {
			status, env := s.do(t, http.MethodPost, "/api/v1/matches/"+m.ID.String()+"/resolve", map[string]string{"method": "detailed"})
			if status != http.StatusOK {
				t.Fatalf("resolve %s: status %d, body %s", m.ID, status, env["error"])
			}
			var winner string
			decode(t, env["winner"], &winner)
			if winner != *m.TeamA && winner != *m.TeamB {
				t.Errorf("winner %q did not play in match %s", winner, m.ID)
			}
		}
	}

	status, env = s.do(t, http.MethodGet, "/api/v1/tournaments/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("get tournament status = %d", status)
	}
	var final models.Tournament
	decode(t, env["tournament"], &final)
	if final.Stage != models.TournamentCompleted || final.Champion == nil {
		t.Fatalf("tournament = %+v, want completed with champion", final)
	}

	status, env = s.do(t, http.MethodGet, "/api/v1/tournaments/"+id+"/standings", nil)
	if status != http.StatusOK {
		t.Fatalf("standings status = %d", status)
	}
	var standings []struct {
		Position int    `json:"position"`
		Country  string `json:"country"`
		Played   int    `json:"played"`
	}
	decode(t, env["standings"], &standings)
	if len(standings) != 8 || standings[0].Position != 1 {
		t.Errorf("standings = %+v", standings)
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/tournaments/"+id+"/advance", nil)
	if status != http.StatusOK || string(env["advanced"]) != "false" {
		t.Errorf("advance after completion: status %d, advanced %s", status, env["advanced"])
	}
}

func TestResolveErrors(t *testing.T) {
	s := newTestServer(t, 4)
	tour := s.createTournament(t)
	id := tour.ID.String()
	s.registerAll(t, id)
	m := s.bracket(t, id).Rounds[0].Matches[0]
	path := "/api/v1/matches/" + m.ID.String() + "/resolve"

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"unknown method", path, map[string]string{"method": "coin_flip"}, http.StatusBadRequest},
		{"unknown field", path, map[string]string{"mode": "quick"}, http.StatusBadRequest},
		{"bad id", "/api/v1/matches/not-a-uuid/resolve", map[string]string{"method": "quick"}, http.StatusBadRequest},
		{"unknown match", "/api/v1/matches/00000000-0000-4000-8000-000000000000/resolve", map[string]string{"method": "quick"}, http.StatusNotFound},
		{"first resolution", path, map[string]string{"method": "quick"}, http.StatusOK},
		{"second resolution", path, map[string]string{"method": "quick"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, http.MethodPost, tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %s)", status, tt.status, env["error"])
			}
		})
	}
}

func TestRegisterInvalidSquadListsViolations(t *testing.T) {
	s := newTestServer(t, 6)
	tour := s.createTournament(t)

	in := s.teamInput(t, "Kenya")
	in.Roster = in.Roster[:20]
	status, env := s.do(t, http.MethodPost, "/api/v1/tournaments/"+tour.ID.String()+"/teams", in)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	var violations []squad.Violation
	decode(t, env["violations"], &violations)
	found := false
	for _, v := range violations {
		if v.Kind == squad.ViolationSquadSize && v.Actual == 20 {
			found = true
		}
	}
	if !found {
		t.Errorf("violations = %+v, want squad_size with actual 20", violations)
	}

	status, _ = s.do(t, http.MethodPost, "/api/v1/tournaments/"+tour.ID.String()+"/teams", s.teamInput(t, "Kenya"))
	if status != http.StatusCreated {
		t.Fatalf("valid registration status = %d", status)
	}
	status, _ = s.do(t, http.MethodPost, "/api/v1/tournaments/"+tour.ID.String()+"/teams", s.teamInput(t, "Kenya"))
	if status != http.StatusConflict {
		t.Errorf("duplicate country status = %d, want 409", status)
	}
	status, env = s.do(t, http.MethodGet, "/api/v1/tournaments/"+tour.ID.String()+"/teams/Kenya", nil)
	if status != http.StatusOK {
		t.Errorf("get team status = %d", status)
	}
	var team models.Team
	decode(t, env["team"], &team)
	if team.Captain() == nil || len(team.Roster) != models.SquadSize {
		t.Errorf("team = %+v", team)
	}
}

func TestNotFoundAndValidation(t *testing.T) {
	s := newTestServer(t, 8)
	unknown := "/api/v1/tournaments/00000000-0000-4000-8000-000000000001"

	tests := []struct {
		method string
		path   string
		body   interface{}
		status int
	}{
		{http.MethodGet, unknown, nil, http.StatusNotFound},
		{http.MethodGet, unknown + "/bracket", nil, http.StatusNotFound},
		{http.MethodGet, unknown + "/teams", nil, http.StatusNotFound},
		{http.MethodPost, unknown + "/advance", nil, http.StatusNotFound},
		{http.MethodGet, "/api/v1/tournaments/42", nil, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/tournaments", map[string]string{"name": "  "}, http.StatusUnprocessableEntity},
		{http.MethodGet, "/health", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, env := s.do(t, tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %v)", status, tt.status, env)
			}
		})
	}
}

func TestAdvanceBeforeBracketIsFull(t *testing.T) {
	s := newTestServer(t, 10)
	tour := s.createTournament(t)
	s.do(t, http.MethodPost, "/api/v1/tournaments/"+tour.ID.String()+"/teams", s.teamInput(t, "Togo"))

	status, env := s.do(t, http.MethodPost, "/api/v1/tournaments/"+tour.ID.String()+"/advance", nil)
	if status != http.StatusConflict {
		t.Errorf("status = %d, want 409 (body %v)", status, env)
	}
}

func TestSwaggerDocument(t *testing.T) {
	s := newTestServer(t, 12)
	resp, err := http.Get(s.URL + "/swagger/doc.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var doc struct {
		Swagger string                 `json:"swagger"`
		Paths   map[string]interface{} `json:"paths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Swagger != "2.0" || doc.Paths["/matches/{matchID}/resolve"] == nil {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestWebSocketReceivesMatchCompleted(t *testing.T) {
	s := newTestServer(t, 14)
	tour := s.createTournament(t)
	id := tour.ID.String()
	s.registerAll(t, id)

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/tournaments/" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	room := brackets.RoomID(id)
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount(room) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never joined the room")
		}
		time.Sleep(10 * time.Millisecond)
	}

	m := s.bracket(t, id).Rounds[0].Matches[0]
	if status, _ := s.do(t, http.MethodPost, "/api/v1/matches/"+m.ID.String()+"/resolve", map[string]string{"method": "quick"}); status != http.StatusOK {
		t.Fatalf("resolve status = %d", status)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Type    string       `json:"type"`
		Payload models.Match `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != brackets.MessageMatchCompleted || msg.Payload.ID != m.ID || msg.Payload.Status != models.MatchCompleted {
		t.Errorf("message = %s", data)
	}
}

func TestWebSocketUnknownTournament(t *testing.T) {
	s := newTestServer(t, 16)
	wsURL := fmt.Sprintf("ws%s/ws/tournaments/%s", strings.TrimPrefix(s.URL, "http"), "00000000-0000-4000-8000-000000000002")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("handshake response = %v, want 404", resp)
	}
}
