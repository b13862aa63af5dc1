package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/storage"
)

// MatchArchiver uploads a JSON report of every completed match.
type MatchArchiver struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewMatchArchiver(uploader storage.FileUploader, logger *slog.Logger) *MatchArchiver {
	return &MatchArchiver{uploader: uploader, logger: logger}
}

// ReportKey is the object key of a match report.
func ReportKey(m *models.Match) string {
	return fmt.Sprintf("tournaments/%s/matches/%s-%d-%s.json", m.TournamentID, m.Stage, m.Slot, m.ID)
}

func (a *MatchArchiver) OnMatchCompleted(ctx context.Context, event MatchCompletedEvent) error {
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode match report: %w", err)
	}

	res, err := a.uploader.Upload(ctx, ReportKey(event.Match), "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	a.logger.Info("match report archived",
		slog.String("match_id", event.Match.ID.String()),
		slog.String("key", res.Key),
		slog.String("location", res.Location),
	)
	return nil
}
