package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/nations-cup/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const listenerTimeout = 15 * time.Second

// EventTeam identifies a participant and the federation contact to notify.
type EventTeam struct {
	Country        string                `json:"country"`
	Representative models.Representative `json:"representative"`
}

// MatchCompletedEvent is published once per match, after its result is stored.
type MatchCompletedEvent struct {
	TournamentID uuid.UUID        `json:"tournament_id"`
	Match        *models.Match    `json:"match"`
	TeamA        EventTeam        `json:"team_a"`
	TeamB        EventTeam        `json:"team_b"`
	Winner       string           `json:"winner"`
	Transition   *StageTransition `json:"transition,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

type MatchCompletedListener interface {
	OnMatchCompleted(ctx context.Context, event MatchCompletedEvent) error
}

type StageListener interface {
	OnStageAdvanced(ctx context.Context, transition StageTransition) error
}

// dispatch runs every listener concurrently and waits for all of them.
// Failures are logged; the caller's state change is already committed.
func dispatch[L any](ctx context.Context, logger *slog.Logger, listeners []L, call func(context.Context, L) error) {
	if len(listeners) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)
	defer cancel()

	var g errgroup.Group
	for _, l := range listeners {
		l := l
		g.Go(func() error {
			if err := call(ctx, l); err != nil {
				logger.Error("listener failed", slog.String("listener", fmt.Sprintf("%T", l)), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
