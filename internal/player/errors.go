package player

import "planets-tableau/internal/shared/errors"

var (
	ErrInvalidName     = errors.Validationf("player name must be between 1 and %d characters", MaxNameLength)
	ErrDuplicatePlayer = errors.Validation("players must be unique")
)
