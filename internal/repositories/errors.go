package repositories

import "github.com/WingsGames/Neve-Or/internal/errors"

var (
	ErrNotFound      = errors.NewSentinel("not found")
	ErrQuotaExceeded = errors.NewSentinel("storage quota exceeded")
)
