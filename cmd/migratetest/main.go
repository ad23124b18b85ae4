package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("NEVEOR_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "NEVEOR_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// A migrated production database has players and their saves, count both as a simple smoke test.
	var players, saves int
	if err = db.ReadOnly.GetContext(ctx, &players, `SELECT COUNT(*) FROM users`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching player count", errors.SlogError(err))
		os.Exit(1)
	}
	if err = db.ReadOnly.GetContext(ctx, &saves, `SELECT COUNT(*) FROM saves`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching save count", errors.SlogError(err))
		os.Exit(1)
	}
	if players == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no players found, something is likely wrong")
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "row counts", slog.Int("players", players), slog.Int("saves", saves))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
