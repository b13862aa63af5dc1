package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")
	// Конфликт с текущим состоянием турнира (универсальная)
	ErrConflict = errors.New("conflict with current state")

	// Ошибки валидации
	ErrValidationFailed        = errors.New("validation failed")
	ErrInvalidResolutionMethod = errors.New("resolution method must be quick or detailed")
	ErrTournamentNameRequired  = errors.New("tournament name is required")

	// Ошибки конфликтов
	ErrCountryConflict       = fmt.Errorf("%w: country is already registered in this tournament", ErrConflict)
	ErrMatchAlreadyCompleted = fmt.Errorf("%w: match is already completed", ErrConflict)
	ErrStageAlreadyAdvanced  = fmt.Errorf("%w: stage has already advanced", ErrConflict)
	ErrTournamentFull        = fmt.Errorf("%w: tournament already has eight teams", ErrConflict)
	ErrRegistrationClosed    = fmt.Errorf("%w: tournament registration is closed", ErrConflict)
	ErrMatchNotReady         = fmt.Errorf("%w: match participants are not set", ErrConflict)
	ErrBracketNotReady       = fmt.Errorf("%w: bracket needs eight registered teams", ErrConflict)

	// Ошибки, специфичные для сущностей
	ErrMatchNotFound      = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrTeamNotFound       = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("%w: tournament not found", ErrNotFound)
)
