package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
)

// DefaultQuotaBytes mirrors the per-origin budget browsers give local storage.
const DefaultQuotaBytes = 5 * 1024 * 1024

// SaveRepository is a per-owner key-value store for serialized progress with a byte quota per owner.
type SaveRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
	quota  int64
}

func NewSaveRepository(dbs *sqlite.Database, logger *slog.Logger, quotaBytes int64) *SaveRepository {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &SaveRepository{
		dbs:    dbs,
		logger: logger.With("source", "SaveRepository"),
		quota:  quotaBytes,
	}
}

// Get returns the value stored under name or ErrNotFound.
func (r *SaveRepository) Get(ctx context.Context, ownerID []byte, name string) (string, error) {
	var value string
	stmt := `SELECT value FROM saves WHERE owner_id = ? AND name = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &value, stmt, ownerID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.Wrap(ErrNotFound, "read save", slog.String("name", name))
		}
		return "", errors.Wrap(err, "read save", slog.String("name", name))
	}
	return value, nil
}

// Set writes value under name. It returns ErrQuotaExceeded without writing when the owner's total size would
// exceed the quota.
func (r *SaveRepository) Set(ctx context.Context, ownerID []byte, name, value string) error {
	var (
		tx    *sql.Tx
		used  int64
		err   error
		bytes = int64(len(value))
	)
	if tx, err = r.dbs.ReadWrite.BeginTx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rollbackErr))
		}
	}()

	stmt := `SELECT COALESCE(SUM(length(CAST(value AS BLOB))), 0) FROM saves WHERE owner_id = ? AND name <> ?`
	if err = tx.QueryRowContext(ctx, stmt, ownerID, name).Scan(&used); err != nil {
		return errors.Wrap(err, "query usage")
	}
	if used+bytes > r.quota {
		return errors.Wrap(ErrQuotaExceeded, "write save",
			slog.String("name", name), slog.Int64("used", used), slog.Int64("bytes", bytes), slog.Int64("quota", r.quota))
	}

	stmt = `INSERT INTO saves (owner_id, name, value) VALUES (:owner_id, :name, :value)
ON CONFLICT (owner_id, name) DO UPDATE SET value = excluded.value, updated = strftime('%Y-%m-%dT%H:%M:%fZ')`
	if _, err = tx.ExecContext(ctx, stmt,
		sql.Named("owner_id", ownerID), sql.Named("name", name), sql.Named("value", value)); err != nil {
		return errors.Wrap(err, "upsert save")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Delete removes the value stored under name. Deleting a missing value is not an error.
func (r *SaveRepository) Delete(ctx context.Context, ownerID []byte, name string) error {
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM saves WHERE owner_id = ? AND name = ?`,
		ownerID, name); err != nil {
		return errors.Wrap(err, "delete save", slog.String("name", name))
	}
	return nil
}

// Usage returns the bytes stored by the owner and the quota.
func (r *SaveRepository) Usage(ctx context.Context, ownerID []byte) (int64, int64, error) {
	var used int64
	stmt := `SELECT COALESCE(SUM(length(CAST(value AS BLOB))), 0) FROM saves WHERE owner_id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &used, stmt, ownerID); err != nil {
		return 0, 0, errors.Wrap(err, "query usage")
	}
	return used, r.quota, nil
}

// ForOwner binds the repository to one owner.
func (r *SaveRepository) ForOwner(ownerID []byte) *OwnerSaves {
	return &OwnerSaves{repo: r, ownerID: ownerID}
}

// OwnerSaves is the key-value view of one owner's saves.
type OwnerSaves struct {
	repo    *SaveRepository
	ownerID []byte
}

func (s *OwnerSaves) Get(ctx context.Context, name string) (string, error) {
	return s.repo.Get(ctx, s.ownerID, name)
}

func (s *OwnerSaves) Set(ctx context.Context, name, value string) error {
	return s.repo.Set(ctx, s.ownerID, name, value)
}

func (s *OwnerSaves) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, s.ownerID, name)
}
