package services

import (
	"errors"
	"time"

	"github.com/Dosada05/nations-cup/repositories"
)

// handleRepositoryError переводит ошибки репозитория в ошибки сервисов.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTeamCountryConflict):
		return ErrCountryConflict
	case errors.Is(err, repositories.ErrTournamentFull):
		return ErrTournamentFull
	case errors.Is(err, repositories.ErrRegistrationClosed):
		return ErrRegistrationClosed
	case errors.Is(err, repositories.ErrStageConflict):
		return ErrStageAlreadyAdvanced
	case errors.Is(err, repositories.ErrMatchNotScheduled):
		return ErrMatchAlreadyCompleted
	}
	return err
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
