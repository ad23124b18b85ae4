package repositories

import (
	"context"
	"database/sql"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"log/slog"
)

type UserRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewUserRepository(dbs *sqlite.Database, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		dbs:    dbs,
		logger: logger.With("source", "UserRepository"),
	}
}

// Get returns the user with id or ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id []byte) (*models.User, error) {
	var user models.User
	if err := r.dbs.ReadOnly.GetContext(ctx, &user,
		`SELECT id, display_name FROM users WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "read user")
		}
		return nil, errors.Wrap(err, "read user")
	}
	return &user, nil
}

// Upsert stores the user. Existing users keep their original display name.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	stmt := `INSERT INTO users (id, display_name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, user.ID, user.DisplayName); err != nil {
		return errors.Wrap(err, "upsert user")
	}
	return nil
}

func (r *UserRepository) Exists(ctx context.Context, id []byte) (bool, error) {
	var exists bool
	if err := r.dbs.ReadOnly.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id); err != nil {
		return false, errors.Wrap(err, "query user exists")
	}
	return exists, nil
}
