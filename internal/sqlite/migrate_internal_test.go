package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

const (
	savesV1 = "CREATE TABLE saves (owner_id BLOB NOT NULL, name TEXT NOT NULL, PRIMARY KEY (owner_id, name))"
	savesV2 = "CREATE TABLE saves (owner_id BLOB NOT NULL, name TEXT NOT NULL, value TEXT NOT NULL DEFAULT '', " +
		"PRIMARY KEY (owner_id, name))"
	insertSave = "INSERT INTO saves (owner_id, name, value) VALUES (x'01', 'neve_or_game_state_v9', '{}')"
	assetsV1   = "CREATE TABLE assets (path TEXT PRIMARY KEY, content_type TEXT)"
	sessionsV1 = "CREATE TABLE sessions (token TEXT PRIMARY KEY, expiry REAL NOT NULL)"
	// Rejects values longer than four bytes.
	quotaTrigger = `CREATE TRIGGER saves_quota BEFORE INSERT ON saves
                    WHEN length(NEW.value) > 4 BEGIN SELECT RAISE ( ABORT, 'quota' ); END;`
)

func TestDatabase_migrateTo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		schemas  []string
		queries  []string
		wantFail bool
	}{
		{
			name:    "nothing to migrate",
			schemas: []string{""},
			queries: []string{"SELECT * FROM sqlite_schema"},
		},
		{
			name:    "saves table appears",
			schemas: []string{savesV2},
			queries: []string{insertSave, "SELECT value FROM saves"},
		},
		{
			name:     "assets table dropped",
			schemas:  []string{savesV2 + "; " + assetsV1, savesV2},
			queries:  []string{"INSERT INTO assets (path, content_type) VALUES ('a.jpg', 'image/jpeg')"},
			wantFail: true,
		},
		{
			name:    "value column added",
			schemas: []string{savesV1, savesV2},
			queries: []string{insertSave},
		},
		{
			name:     "value column removed again",
			schemas:  []string{savesV1, savesV2, savesV1},
			queries:  []string{insertSave},
			wantFail: true,
		},
		{
			name:    "expiry index created",
			schemas: []string{sessionsV1 + "; CREATE INDEX sessions_expiry_idx ON sessions (expiry)"},
			queries: []string{"DROP INDEX sessions_expiry_idx"},
		},
		{
			name: "expiry index dropped",
			schemas: []string{
				sessionsV1 + "; CREATE INDEX sessions_expiry_idx ON sessions (expiry)",
				sessionsV1,
			},
			queries:  []string{"DROP INDEX sessions_expiry_idx"},
			wantFail: true,
		},
		{
			name: "expiry index changed",
			schemas: []string{
				sessionsV1 + "; CREATE INDEX sessions_expiry_idx ON sessions (expiry)",
				sessionsV1 + "; CREATE INDEX sessions_expiry_idx ON sessions (expiry, token)",
			},
			queries: []string{"DROP INDEX sessions_expiry_idx"},
		},
		{
			name:     "quota trigger created",
			schemas:  []string{savesV2 + "; " + quotaTrigger},
			queries:  []string{"INSERT INTO saves (owner_id, name, value) VALUES (x'01', 'k', 'too long')"},
			wantFail: true,
		},
		{
			name:    "quota trigger dropped",
			schemas: []string{savesV2 + "; " + quotaTrigger, savesV2},
			queries: []string{"INSERT INTO saves (owner_id, name, value) VALUES (x'01', 'k', 'too long')"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			logger := testhelpers.NewLogger(io.Discard)
			db, err := connect(":memory:", logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			for _, schema := range tt.schemas {
				logger.LogAttrs(ctx, slog.LevelDebug, "migrating", slog.String("schema", schema))
				require.NoError(t, db.migrateTo(ctx, schema))
			}
			for _, query := range tt.queries {
				_, err = db.ReadWrite.ExecContext(ctx, query)
				if tt.wantFail {
					require.Error(t, err, query)
				} else {
					require.NoError(t, err, query)
				}
			}
		})
	}
}

func TestDatabase_migrateTo_keepsSaves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)
	db, err := connect(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.migrateTo(ctx, savesV1))
	_, err = db.ReadWrite.ExecContext(ctx, "INSERT INTO saves (owner_id, name) VALUES (x'01', 'neve_or_game_state_v9')")
	require.NoError(t, err)

	require.NoError(t, db.migrateTo(ctx, schemaDefinition))
	var name string
	require.NoError(t, db.ReadWrite.GetContext(ctx, &name, "SELECT name FROM saves WHERE owner_id = x'01'"))
	require.Equal(t, "neve_or_game_state_v9", name)

	require.NoError(t, db.migrateTo(ctx, schemaDefinition))
}
