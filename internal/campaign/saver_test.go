package campaign_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/repositories"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// memoryStore is a Store whose writes can be made to fail.
type memoryStore struct {
	values map[string]string
	full   bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, name string) (string, error) {
	v, ok := m.values[name]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, name, value string) error {
	if m.full {
		return repositories.ErrQuotaExceeded
	}
	m.values[name] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, name string) error {
	delete(m.values, name)
	return nil
}

func TestStorageKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, campaign.DefaultStorageKey, campaign.StorageKey("neve_or_game", 9))
}

func TestSnapshot_format(t *testing.T) {
	t.Parallel()
	state := models.GameState{
		Score: 7,
		Nodes: []models.Node{
			{ID: "a", IsLocked: true, Data: models.NodeContent{
				Description:     "not saved",
				BackgroundImage: "bg.jpg",
				SubScenes:       []models.SubScene{{ID: "s", Title: "not saved"}},
			}},
		},
	}
	blob, err := json.Marshal(campaign.Snapshot(state))
	require.NoError(t, err)
	require.JSONEq(t, `{"nodes":[{"id":"a","isLocked":true,"isCompleted":false,
		"data":{"backgroundImage":"bg.jpg","characterImages":null,
		"subScenes":[{"id":"s","backgroundImage":null}]}}],"score":7}`, string(blob))
}

func TestSaver_roundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	saver := campaign.NewSaver(newMemoryStore(), campaign.DefaultStorageKey, testhelpers.NewLogger(io.Discard))

	state := campaign.FreshState(testNodes())
	state.Score = 3
	state.Nodes = campaign.Complete(state.Nodes, "a").Nodes
	state.Nodes[2].Data.BackgroundImage = "custom.jpg"
	require.NoError(t, saver.Save(ctx, state))

	fresh := testNodes()
	fresh[2].Title = "fixed typo"
	loaded, ok := saver.Load(ctx, fresh)
	require.True(t, ok)
	require.Equal(t, 3, loaded.Score)
	require.Empty(t, loaded.CurrentNodeID)
	require.Equal(t, "fixed typo", loaded.Nodes[2].Title)
	require.Equal(t, "custom.jpg", loaded.Nodes[2].Data.BackgroundImage)
	require.True(t, loaded.Nodes[2].IsCompleted)
	require.False(t, loaded.Nodes[3].IsLocked)
	require.True(t, loaded.Nodes[4].IsLocked)
}

func TestSaver_Load(t *testing.T) {
	t.Parallel()
	fresh := []models.Node{
		{ID: "intro", Type: models.NodeTypeIntro},
		{ID: "a", Type: models.NodeTypeScenario, Data: models.NodeContent{
			BackgroundImage: "fresh.jpg",
			CharacterImages: map[string]string{"Tamar": "tamar.jpg"},
			SubScenes:       []models.SubScene{{ID: "s1", BackgroundImage: "s1.jpg"}, {ID: "s2"}},
		}},
		{ID: "b", Type: models.NodeTypeScenario},
	}
	tests := []struct {
		name   string
		blob   string
		wantOK bool
		check  func(t *testing.T, state models.GameState)
	}{
		{
			name:   "unparsable",
			blob:   `{"nodes":[`,
			wantOK: false,
			check: func(t *testing.T, state models.GameState) {
				require.False(t, state.Nodes[1].IsLocked)
				require.True(t, state.Nodes[2].IsLocked)
			},
		},
		{
			name:   "no nodes array",
			blob:   `{"nodes":{"a":1},"score":4}`,
			wantOK: false,
			check: func(t *testing.T, state models.GameState) {
				require.Zero(t, state.Score)
			},
		},
		{
			name:   "wrong field types fall back to fresh values",
			blob:   `{"nodes":[{"id":"a","isLocked":"no","isCompleted":true,"data":{"backgroundImage":5,"characterImages":[],"subScenes":"x"}},{"id":"b","isLocked":false}],"score":"lots"}`,
			wantOK: true,
			check: func(t *testing.T, state models.GameState) {
				require.Zero(t, state.Score)
				require.False(t, state.Nodes[1].IsLocked)
				require.True(t, state.Nodes[1].IsCompleted)
				require.Equal(t, "fresh.jpg", state.Nodes[1].Data.BackgroundImage)
				require.Equal(t, "tamar.jpg", state.Nodes[1].Data.CharacterImages["Tamar"])
				require.False(t, state.Nodes[2].IsLocked)
			},
		},
		{
			name:   "saved assets override fresh ones",
			blob:   `{"nodes":[{"id":"a","data":{"backgroundImage":"saved.jpg","characterImages":{"Tamar":"saved-tamar.jpg","Noa":""},"subScenes":[{"id":"s2","backgroundImage":"saved-s2.jpg"},{"id":"s1","backgroundImage":null}]}},{"id":"gone","isLocked":false}],"score":2}`,
			wantOK: true,
			check: func(t *testing.T, state models.GameState) {
				require.Equal(t, 2, state.Score)
				data := state.Nodes[1].Data
				require.Equal(t, "saved.jpg", data.BackgroundImage)
				require.Equal(t, map[string]string{"Tamar": "saved-tamar.jpg"}, data.CharacterImages)
				require.Equal(t, "s1.jpg", data.SubScenes[0].BackgroundImage)
				require.Equal(t, "saved-s2.jpg", data.SubScenes[1].BackgroundImage)
				require.Len(t, state.Nodes, 3, "saved nodes missing from content are dropped")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newMemoryStore()
			store.values[campaign.DefaultStorageKey] = tt.blob
			saver := campaign.NewSaver(store, campaign.DefaultStorageKey, testhelpers.NewLogger(io.Discard))
			state, ok := saver.Load(context.Background(), fresh)
			require.Equal(t, tt.wantOK, ok)
			tt.check(t, state)
			require.Equal(t, tt.blob, store.values[campaign.DefaultStorageKey], "the save is never cleared on load")
		})
	}
}

func TestSaver_storageFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	saver := campaign.NewSaver(store, campaign.DefaultStorageKey, testhelpers.NewLogger(io.Discard))
	state := campaign.FreshState(testNodes())

	store.full = true
	err := saver.Save(ctx, state)
	require.ErrorIs(t, err, repositories.ErrQuotaExceeded)
	require.True(t, saver.StorageFull())
	require.ErrorIs(t, saver.Save(ctx, state), repositories.ErrQuotaExceeded)
	require.True(t, saver.StorageFull())

	store.full = false
	require.NoError(t, saver.Save(ctx, state))
	require.False(t, saver.StorageFull())
}

func TestSaver_withSaveRepository(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := testhelpers.NewLogger(io.Discard)
	dbs, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbs.Close() })

	repo := repositories.NewSaveRepository(dbs, logger, 2000)
	saver := campaign.NewSaver(repo.ForOwner([]byte("player")), campaign.DefaultStorageKey, logger)

	state := campaign.FreshState(testNodes())
	require.NoError(t, saver.Save(ctx, state))
	loaded, ok := saver.Load(ctx, testNodes())
	require.True(t, ok)
	require.Equal(t, locked(state.Nodes), locked(loaded.Nodes))

	// A long asset url pushes the save over the quota.
	state.Nodes[2].Data.BackgroundImage = "data:image/jpeg;base64," + strings.Repeat("A", 3000)
	require.ErrorIs(t, saver.Save(ctx, state), repositories.ErrQuotaExceeded)
	require.True(t, saver.StorageFull())

	require.NoError(t, saver.Reset(ctx))
	_, ok = saver.Load(ctx, testNodes())
	require.False(t, ok)
}
