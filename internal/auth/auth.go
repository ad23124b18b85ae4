// Package auth gives every visitor an anonymous player identity kept in the session.
package auth

import (
	"context"
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

const playerIDSessionKey = "playerID"

// Sessions is the part of *scs.SessionManager the service needs.
type Sessions interface {
	GetBytes(ctx context.Context, key string) []byte
	Put(ctx context.Context, key string, val interface{})
	RenewToken(ctx context.Context) error
}

type Users interface {
	Upsert(ctx context.Context, user *models.User) error
}

type Service struct {
	sessions Sessions
	users    Users
	logger   *slog.Logger
}

func New(sessions Sessions, users Users, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		users:    users,
		logger:   logger.With("source", "AuthService"),
	}
}

// EnsureSignedIn returns the player id of the session, creating an anonymous player on the first visit.
//
// Persisting the new player is best effort: a failure is logged and play continues with the session id.
func (s *Service) EnsureSignedIn(ctx context.Context) ([]byte, error) {
	if id := s.sessions.GetBytes(ctx, playerIDSessionKey); id != nil {
		return id, nil
	}
	var (
		user *models.User
		err  error
	)
	if user, err = models.NewUser(); err != nil {
		return nil, errors.Wrap(err, "new anonymous player")
	}
	if err = s.sessions.RenewToken(ctx); err != nil {
		return nil, errors.Wrap(err, "renew session token")
	}
	s.sessions.Put(ctx, playerIDSessionKey, user.ID)
	if err = s.users.Upsert(ctx, user); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "anonymous sign-in not persisted", errors.SlogError(err))
	} else {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "signed in anonymous player")
	}
	return user.ID, nil
}

// PlayerID returns the player of the session without signing in, nil if there is none.
func (s *Service) PlayerID(ctx context.Context) []byte {
	return s.sessions.GetBytes(ctx, playerIDSessionKey)
}
