// Command seed registers demo federations with random squads through the
// HTTP API and can play the tournament out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/squad"
)

func main() {
	var (
		apiURL       = flag.String("api", "http://localhost:8080/api/v1", "base URL of the API")
		name         = flag.String("name", "Nations Cup", "name of the tournament to create")
		tournamentID = flag.String("tournament", "", "register into an existing tournament instead of creating one")
		teams        = flag.Int("teams", models.BracketSize, "number of federations to register (1-8)")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "random seed for federations and squads")
		policy       = flag.String("policy", "minimum", "squad quota policy the server enforces (minimum|fixed)")
		resolve      = flag.String("resolve", "", "play the tournament out with this method (quick|detailed)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, *apiURL, *name, *tournamentID, *teams, *seed, *policy, models.ResolutionMethod(*resolve)); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, apiURL, name, tournamentID string, teams int, seed int64, policyName string, method models.ResolutionMethod) error {
	if teams < 1 || teams > models.BracketSize {
		return fmt.Errorf("teams must be between 1 and %d, got %d", models.BracketSize, teams)
	}
	if method != "" && !method.Valid() {
		return fmt.Errorf("unknown resolution method %q", method)
	}
	policy, err := squad.PolicyByName(policyName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := &seeder{
		baseURL: apiURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		rng:     rand.New(rand.NewSource(seed)),
		layout:  squad.LayoutFor(policy),
		logger:  logger,
	}

	tournament := &models.Tournament{}
	if tournamentID == "" {
		tournament, err = s.createTournament(ctx, name)
		if err != nil {
			return err
		}
		logger.Info("tournament created", slog.String("id", tournament.ID.String()), slog.Int64("seed", seed))
	} else if err := s.call(ctx, http.MethodGet, "/tournaments/"+tournamentID, nil, &struct {
		Tournament *models.Tournament `json:"tournament"`
	}{tournament}); err != nil {
		return fmt.Errorf("load tournament %s: %w", tournamentID, err)
	}

	if err := s.registerTeams(ctx, tournament, s.pickFederations(teams)); err != nil {
		return err
	}

	if method == "" {
		return nil
	}
	champion, err := s.playOut(ctx, tournament.ID.String(), method)
	if err != nil {
		return err
	}
	logger.Info("tournament completed", slog.String("champion", champion))
	return nil
}
