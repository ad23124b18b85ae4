package main

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WingsGames/Neve-Or/internal/ai"
	"github.com/WingsGames/Neve-Or/internal/assets"
	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/broker"
	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/content"
	"github.com/WingsGames/Neve-Or/internal/editor"
	"github.com/WingsGames/Neve-Or/internal/eventloop"
	"github.com/WingsGames/Neve-Or/internal/game"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/repositories"
	"github.com/WingsGames/Neve-Or/internal/scene"
)

// snapshot is the game view together with the sound cues the browser should play for it.
type snapshot struct {
	game.View
	Cues []audio.Cue `json:"cues,omitempty"`
}

type playersConfig struct {
	catalog    *content.Catalog
	translator i18n.Translator
	saves      *repositories.SaveRepository
	images     ai.ImageGenerator
	uploader   assets.Uploader
	snapshots  *broker.SnapshotBroker[string, snapshot]
	storageKey string
	language   i18n.Language
	devTools   bool
	reveal     time.Duration
	// idle is how long a player may go unused before its loop is stopped. Zero keeps players forever.
	idle time.Duration
}

// player is the running game of one visitor. Everything touching game and editor state runs on loop.
type player struct {
	key    string
	loop   *eventloop.Loop
	game   *game.Session
	editor *editor.Editor
	cues   *audio.Recorder
	cfg    playersConfig
	now    func() time.Time

	// inCommand defers publishing to the end of the command being dispatched.
	inCommand bool

	boot    sync.Once
	bootErr error

	// lastUsed is the unix nano time of the last request that reached the player.
	lastUsed atomic.Int64
}

func (p *player) touch() {
	p.lastUsed.Store(p.now().UnixNano())
}

// players keeps a player per signed-in visitor until it has been idle for cfg.idle. An evicted player
// is booted again from its save on the next request.
type players struct {
	cfg    playersConfig
	logger *slog.Logger
	now    func() time.Time
	done   chan struct{}

	mu      sync.Mutex
	byKey   map[string]*player
	stopped bool
}

func newPlayers(cfg playersConfig, logger *slog.Logger) *players {
	return &players{
		cfg:    cfg,
		logger: logger.With("source", "Players"),
		now:    time.Now,
		done:   make(chan struct{}),
		byKey:  map[string]*player{},
	}
}

func playerKey(playerID []byte) string {
	return hex.EncodeToString(playerID)
}

// get returns the player with the given id, starting and booting it on first use.
func (ps *players) get(ctx context.Context, playerID []byte) (*player, error) {
	key := playerKey(playerID)
	ps.mu.Lock()
	if ps.stopped {
		ps.mu.Unlock()
		return nil, eventloop.ErrStopped
	}
	p, ok := ps.byKey[key]
	if !ok {
		p = ps.start(key, playerID)
		ps.byKey[key] = p
	}
	p.touch()
	ps.mu.Unlock()

	p.boot.Do(func() {
		bootCtx := context.WithoutCancel(ctx)
		p.bootErr = p.loop.Do(bootCtx, func() error {
			p.game.Boot(bootCtx)
			return nil
		})
	})
	return p, p.bootErr
}

func (ps *players) start(key string, playerID []byte) *player {
	logger := ps.logger.With(slog.String("playerID", key))
	loop := eventloop.New(logger)
	go loop.Start()

	cues := &audio.Recorder{}
	saver := campaign.NewSaver(ps.cfg.saves.ForOwner(playerID), ps.cfg.storageKey, logger)
	p := &player{
		key:  key,
		loop: loop,
		cues: cues,
		cfg:  ps.cfg,
		now:  ps.now,
	}
	p.game = game.New(ps.cfg.catalog, ps.cfg.translator, saver, loop, audio.Logging{Next: cues, Logger: logger},
		logger, game.Config{
			Language: ps.cfg.language,
			DevTools: ps.cfg.devTools,
			Timings:  scene.Timings{IntroReveal: ps.cfg.reveal},
		})
	p.editor = editor.New(p.game, loop.Do, ps.cfg.images, ps.cfg.uploader, logger)
	p.game.OnChange(func() {
		if !p.inCommand {
			p.publish()
		}
	})
	ps.logger.LogAttrs(context.Background(), slog.LevelInfo, "started player", slog.String("playerID", key))
	return p
}

// stop stops every player loop. Players cannot be started afterwards.
func (ps *players) stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.stopped {
		return
	}
	ps.stopped = true
	close(ps.done)
	for key, p := range ps.byKey {
		p.loop.Stop()
		delete(ps.byKey, key)
	}
}

// sweep evicts the players unused since before now minus cfg.idle and returns how many it evicted.
// Their stream subscriptions are closed so that connected clients reconnect to a fresh player.
func (ps *players) sweep(ctx context.Context, now time.Time) int {
	if ps.cfg.idle <= 0 {
		return 0
	}
	cutoff := now.Add(-ps.cfg.idle).UnixNano()

	ps.mu.Lock()
	var idle []*player
	for key, p := range ps.byKey {
		if p.lastUsed.Load() < cutoff {
			idle = append(idle, p)
			delete(ps.byKey, key)
		}
	}
	ps.mu.Unlock()

	for _, p := range idle {
		p.loop.Stop()
		ps.cfg.snapshots.Forget(p.key)
		ps.logger.LogAttrs(ctx, slog.LevelInfo, "evicted idle player", slog.String("playerID", p.key))
	}
	return len(idle)
}

// sweepEvery runs sweep on every tick until ctx is done or the players are stopped.
func (ps *players) sweepEvery(ctx context.Context, interval time.Duration) {
	if ps.cfg.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ps.done:
			return
		case <-ticker.C:
			ps.sweep(ctx, ps.now())
		}
	}
}

// publish renders the view and hands it to the stream subscribers. It must run on the loop.
func (p *player) publish() snapshot {
	snap := snapshot{View: p.game.View(), Cues: p.cues.Drain()}
	p.cfg.snapshots.Publish(p.key, snap)
	return snap
}

// dispatch runs cmd on the loop and returns the snapshot published after it, also when the game
// rejected the command.
func (p *player) dispatch(ctx context.Context, cmd game.Command) (snapshot, error) {
	var (
		snap   snapshot
		cmdErr error
	)
	p.touch()
	err := p.loop.Do(ctx, func() error {
		p.inCommand = true
		defer func() { p.inCommand = false }()
		cmdErr = p.game.Dispatch(context.WithoutCancel(ctx), cmd)
		snap = p.publish()
		return nil
	})
	if err != nil {
		return snapshot{}, err
	}
	return snap, cmdErr
}

// view renders the current view without consuming pending cues.
func (p *player) view(ctx context.Context) (game.View, error) {
	var v game.View
	err := p.loop.Do(ctx, func() error {
		v = p.game.View()
		return nil
	})
	return v, err
}

func (p *player) editorView(ctx context.Context) (editor.View, error) {
	var lang i18n.Language
	if err := p.loop.Do(ctx, func() error {
		lang = p.game.Language()
		return nil
	}); err != nil {
		return editor.View{}, err
	}
	return p.editor.View(ctx, p.cfg.translator, lang)
}
