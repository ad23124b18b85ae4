package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/repositories"
)

// DefaultStorageKey is StorageKey("neve_or_game", 9).
const DefaultStorageKey = "neve_or_game_state_v9"

// StorageKey names the save of an app. Bumping version abandons saves of an incompatible content schema.
func StorageKey(appID string, version int) string {
	return fmt.Sprintf("%s_state_v%d", appID, version)
}

// Store is the key-value storage of one player. Get returns repositories.ErrNotFound for a missing key
// and Set returns repositories.ErrQuotaExceeded when the value does not fit.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// Saver persists GameState snapshots under a single key.
type Saver struct {
	store       Store
	key         string
	logger      *slog.Logger
	storageFull bool
}

func NewSaver(store Store, key string, logger *slog.Logger) *Saver {
	return &Saver{
		store:  store,
		key:    key,
		logger: logger.With("source", "Saver"),
	}
}

// StorageFull reports whether the last save was rejected for lack of space.
func (s *Saver) StorageFull() bool {
	return s.storageFull
}

// Save serializes the state and writes it in one call. A full storage is remembered until the next
// successful save.
func (s *Saver) Save(ctx context.Context, state models.GameState) error {
	var (
		blob []byte
		err  error
	)
	if blob, err = json.Marshal(Snapshot(state)); err != nil {
		return errors.Wrap(err, "marshal save")
	}
	if err = s.store.Set(ctx, s.key, string(blob)); err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			if !s.storageFull {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "storage full, progress is not saved",
					slog.Int("bytes", len(blob)))
			}
			s.storageFull = true
		}
		return errors.Wrap(err, "write save", slog.String("key", s.key))
	}
	s.storageFull = false
	return nil
}

// Load merges the stored save into fresh content. A missing or corrupt save yields FreshState; the
// corrupt save is left in place. The boolean reports whether a save was applied.
func (s *Saver) Load(ctx context.Context, fresh []models.Node) (models.GameState, bool) {
	blob, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.LogAttrs(ctx, slog.LevelError, "read save failed, starting fresh", errors.SlogError(err))
		}
		return FreshState(fresh), false
	}
	saved, err := decode(blob)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "ignoring corrupt save", errors.SlogError(err),
			slog.String("key", s.key))
		return FreshState(fresh), false
	}
	state := FreshState(fresh)
	state.Nodes = merge(state.Nodes, saved.nodes)
	if saved.score != nil {
		state.Score = *saved.score
	}
	return state, true
}

// Reset deletes the save.
func (s *Saver) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return errors.Wrap(err, "delete save", slog.String("key", s.key))
	}
	s.storageFull = false
	return nil
}

// Raw returns the stored blob as is.
func (s *Saver) Raw(ctx context.Context) (string, error) {
	blob, err := s.store.Get(ctx, s.key)
	if err != nil {
		return "", errors.Wrap(err, "read save", slog.String("key", s.key))
	}
	return blob, nil
}

// Size is the serialized size of state in bytes.
func Size(state models.GameState) (int, error) {
	blob, err := json.Marshal(Snapshot(state))
	if err != nil {
		return 0, errors.Wrap(err, "marshal save")
	}
	return len(blob), nil
}
