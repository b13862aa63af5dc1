package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/services"
	"github.com/Dosada05/nations-cup/squad"
)

var federations = []string{
	"Nigeria", "Ghana", "Senegal", "Egypt", "Morocco", "Cameroon", "Algeria", "Tunisia",
	"Ivory Coast", "Mali", "South Africa", "Kenya", "Zambia", "DR Congo", "Burkina Faso", "Guinea",
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.Status, e.Body)
}

// seeder drives the public HTTP API the same way a federation client would.
type seeder struct {
	baseURL string
	client  *http.Client
	rng     *rand.Rand
	layout  squad.Layout
	logger  *slog.Logger
}

func (s *seeder) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(s.baseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (s *seeder) createTournament(ctx context.Context, name string) (*models.Tournament, error) {
	var env struct {
		Tournament *models.Tournament `json:"tournament"`
	}
	if err := s.call(ctx, http.MethodPost, "/tournaments", map[string]string{"name": name}, &env); err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return env.Tournament, nil
}

func (s *seeder) pickFederations(n int) []string {
	picked := make([]string, len(federations))
	copy(picked, federations)
	s.rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:n]
}

func (s *seeder) registerTeams(ctx context.Context, tournament *models.Tournament, countries []string) error {
	for _, country := range countries {
		roster, err := squad.GenerateRoster(s.rng, s.layout)
		if err != nil {
			return err
		}
		slug := strings.ToLower(strings.ReplaceAll(country, " ", ""))
		input := services.RegisterTeamInput{
			Country: country,
			Manager: squad.RandomName(s.rng),
			Representative: models.Representative{
				Name:  squad.RandomName(s.rng),
				Email: "federation@" + slug + ".example",
			},
			Roster: roster,
		}

		var env struct {
			Team *models.Team `json:"team"`
		}
		path := "/tournaments/" + tournament.ID.String() + "/teams"
		if err := s.call(ctx, http.MethodPost, path, input, &env); err != nil {
			return fmt.Errorf("register %s: %w", country, err)
		}
		s.logger.Info("team registered", slog.String("country", country), slog.Float64("strength", env.Team.Strength))
	}
	return nil
}

// playOut resolves scheduled matches round by round until a champion is crowned.
func (s *seeder) playOut(ctx context.Context, tournamentID string, method models.ResolutionMethod) (string, error) {
	for {
		var env struct {
			Bracket services.BracketView `json:"bracket"`
		}
		if err := s.call(ctx, http.MethodGet, "/tournaments/"+tournamentID+"/bracket", nil, &env); err != nil {
			return "", fmt.Errorf("load bracket: %w", err)
		}
		if env.Bracket.Stage == models.TournamentCompleted && env.Bracket.Champion != nil {
			return *env.Bracket.Champion, nil
		}

		resolved := 0
		for _, round := range env.Bracket.Rounds {
			for _, m := range round.Matches {
				if m.Status != models.MatchScheduled {
					continue
				}
				var res struct {
					Winner string `json:"winner"`
				}
				path := "/matches/" + url.PathEscape(m.ID.String()) + "/resolve"
				if err := s.call(ctx, http.MethodPost, path, map[string]string{"method": string(method)}, &res); err != nil {
					return "", fmt.Errorf("resolve %s slot %d: %w", m.Stage, m.Slot, err)
				}
				s.logger.Info("match resolved", slog.String("stage", string(m.Stage)), slog.Int("slot", m.Slot), slog.String("winner", res.Winner))
				resolved++
			}
		}
		if resolved == 0 {
			// нечего разыгрывать: повторяем проверку продвижения
			var check struct {
				Advanced bool `json:"advanced"`
			}
			if err := s.call(ctx, http.MethodPost, "/tournaments/"+tournamentID+"/advance", nil, &check); err != nil {
				return "", fmt.Errorf("advance: %w", err)
			}
			if !check.Advanced {
				return "", fmt.Errorf("tournament stuck at stage %s", env.Bracket.Stage)
			}
		}
	}
}
