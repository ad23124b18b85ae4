package repositories

import (
	"context"
	"database/sql"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"log/slog"
)

// AssetRepository stores uploaded images by path.
type AssetRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewAssetRepository(dbs *sqlite.Database, logger *slog.Logger) *AssetRepository {
	return &AssetRepository{
		dbs:    dbs,
		logger: logger.With("source", "AssetRepository"),
	}
}

// Put writes the asset, replacing any existing asset at the same path.
func (r *AssetRepository) Put(ctx context.Context, asset models.Asset) error {
	stmt := `INSERT INTO assets (path, content_type, data) VALUES (:path, :content_type, :data)
ON CONFLICT (path) DO UPDATE SET content_type = excluded.content_type, data = excluded.data`
	if _, err := r.dbs.ReadWrite.NamedExecContext(ctx, stmt, asset); err != nil {
		return errors.Wrap(err, "upsert asset", slog.String("path", asset.Path))
	}
	return nil
}

// Get returns the asset at path or ErrNotFound.
func (r *AssetRepository) Get(ctx context.Context, path string) (*models.Asset, error) {
	var asset models.Asset
	if err := r.dbs.ReadOnly.GetContext(ctx, &asset,
		`SELECT path, content_type, data FROM assets WHERE path = ?`, path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "read asset", slog.String("path", path))
		}
		return nil, errors.Wrap(err, "read asset", slog.String("path", path))
	}
	return &asset, nil
}
