package main

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/WingsGames/Neve-Or/internal/broker"
	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/content"
	"github.com/WingsGames/Neve-Or/internal/eventloop"
	"github.com/WingsGames/Neve-Or/internal/game"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/repositories"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestPlayers(t *testing.T, idle time.Duration) (*players, *testClock) {
	t.Helper()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)
	dbs, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbs.Close() })

	snapshots := broker.NewSnapshotBroker[string, snapshot]()
	go snapshots.Start()
	t.Cleanup(snapshots.Stop)

	ps := newPlayers(playersConfig{
		catalog:    content.MustLoadEmbedded(),
		translator: i18n.MustLoadEmbedded(),
		saves:      repositories.NewSaveRepository(dbs, logger, 5<<20),
		snapshots:  snapshots,
		storageKey: campaign.DefaultStorageKey,
		language:   i18n.English,
		idle:       idle,
	}, logger)
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	ps.now = clock.Now
	t.Cleanup(ps.stop)
	return ps, clock
}

func send(t *testing.T, p *player, cmd game.Command) snapshot {
	t.Helper()
	snap, err := p.dispatch(context.Background(), cmd)
	require.NoError(t, err, cmd.Type)
	return snap
}

func TestPlayers_sweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ps, clock := newTestPlayers(t, time.Minute)

	for i := range 200 {
		_, err := ps.get(ctx, []byte{byte(i >> 8), byte(i)})
		require.NoError(t, err)
	}
	clock.Advance(30 * time.Second)
	busy, err := ps.get(ctx, []byte{0, 7})
	require.NoError(t, err)

	clock.Advance(45 * time.Second)
	require.Equal(t, 199, ps.sweep(ctx, clock.Now()))
	require.Len(t, ps.byKey, 1)
	require.Same(t, busy, ps.byKey[busy.key])

	clock.Advance(time.Minute)
	require.Equal(t, 1, ps.sweep(ctx, clock.Now()))
	require.Empty(t, ps.byKey)
}

func TestPlayers_sweep_disabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ps, clock := newTestPlayers(t, 0)

	_, err := ps.get(ctx, []byte{1})
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	require.Zero(t, ps.sweep(ctx, clock.Now()))
	require.Len(t, ps.byKey, 1)
}

func TestPlayers_evictedPlayerRestoresSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ps, clock := newTestPlayers(t, time.Minute)
	playerID := []byte{0xca, 0xfe}

	p, err := ps.get(ctx, playerID)
	require.NoError(t, err)
	send(t, p, game.Command{Type: game.CommandStart})
	send(t, p, game.Command{Type: game.CommandSelectNode, ID: "school_lior"})
	send(t, p, game.Command{Type: game.CommandNext})
	send(t, p, game.Command{Type: game.CommandNext})
	send(t, p, game.Command{Type: game.CommandSelectAnswer, ID: "2"})
	require.Eventually(t, func() bool {
		_, err := p.dispatch(ctx, game.Command{Type: game.CommandNext})
		return err == nil
	}, 5*time.Second, 50*time.Millisecond, "the answer settles on a timer")
	send(t, p, game.Command{Type: game.CommandSelectOption, ID: "opt1"})
	snap := send(t, p, game.Command{Type: game.CommandContinue})
	require.Equal(t, game.ScreenHub, snap.Screen)

	updates, cancel := ps.cfg.snapshots.Subscribe(p.key)
	defer cancel()

	// Stays while in use.
	clock.Advance(50 * time.Second)
	send(t, p, game.Command{Type: game.CommandBackToIntro})
	clock.Advance(50 * time.Second)
	require.Zero(t, ps.sweep(ctx, clock.Now()))

	clock.Advance(time.Minute)
	require.Equal(t, 1, ps.sweep(ctx, clock.Now()))
	require.Empty(t, ps.byKey)
	require.ErrorIs(t, p.loop.Do(ctx, func() error { return nil }), eventloop.ErrStopped)
	require.Eventually(t, func() bool {
		select {
		case _, open := <-updates:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "stream subscriptions are closed")

	restored, err := ps.get(ctx, playerID)
	require.NoError(t, err)
	require.NotSame(t, p, restored)
	snap = send(t, restored, game.Command{Type: game.CommandStart})
	require.Equal(t, game.ScreenHub, snap.Screen)
	snap = send(t, restored, game.Command{Type: game.CommandSelectNode, ID: "town_square"})
	require.Equal(t, game.ScreenScene, snap.Screen, "town_square stays unlocked after the restart")
}
