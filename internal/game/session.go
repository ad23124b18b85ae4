// Package game is the top-level state machine of one player: the intro screen, the hub map, the scene
// being played and the authoring overlay. It owns the GameState and autosaves every change to it.
package game

import (
	"context"
	"log/slog"
	"slices"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/content"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/eventloop"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/repositories"
	"github.com/WingsGames/Neve-Or/internal/scene"
)

type Screen string

const (
	ScreenIntro Screen = "INTRO_SCREEN"
	ScreenHub   Screen = "HUB"
	ScreenScene Screen = "SCENE"
	ScreenError Screen = "ERROR"
)

var (
	ErrNodeLocked          = errors.NewSentinel("node is locked")
	ErrNodeHidden          = errors.NewSentinel("node is not on the map")
	ErrUnknownNode         = errors.NewSentinel("unknown node")
	ErrWrongScreen         = errors.NewSentinel("command not available on this screen")
	ErrDevToolsDisabled    = errors.NewSentinel("dev tools are disabled")
	ErrUnsupportedLanguage = errors.NewSentinel("unsupported language")
)

type Config struct {
	Language i18n.Language
	// DevTools enables the authoring overlay and its keyboard shortcut.
	DevTools bool
	Timings  scene.Timings
}

// Session is the game of one player.
//
// Session is not safe for concurrent use. Every method and every scheduled callback must run on the
// goroutine of the scheduler, which eventloop.Loop provides.
type Session struct {
	catalog    *content.Catalog
	translator i18n.Translator
	saver      *campaign.Saver
	player     audio.Player
	scene      *scene.Controller
	logger     *slog.Logger
	cfg        Config

	state    models.GameState
	language i18n.Language
	// completed is the node whose scene finished during the running command.
	completed string
	onChange  func()
}

func New(
	catalog *content.Catalog,
	translator i18n.Translator,
	saver *campaign.Saver,
	scheduler eventloop.Scheduler,
	player audio.Player,
	logger *slog.Logger,
	cfg Config,
) *Session {
	if cfg.Language == "" {
		cfg.Language = i18n.Default
	}
	s := &Session{
		catalog:    catalog,
		translator: translator,
		saver:      saver,
		player:     player,
		scene:      scene.New(scheduler, player, logger, cfg.Timings),
		logger:     logger.With("source", "GameSession"),
		cfg:        cfg,
		language:   cfg.Language,
	}
	s.state = campaign.FreshState(catalog.Nodes(s.language))
	s.scene.OnComplete(func(nodeID string) { s.completed = nodeID })
	s.scene.OnChange(s.notify)
	return s
}

// OnChange registers a callback invoked after every change that alters the view.
func (s *Session) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// save writes the state. A failed write never interrupts play; StorageFull reports a full storage.
func (s *Session) save(ctx context.Context) {
	if err := s.saver.Save(ctx, s.state); err != nil && !errors.Is(err, repositories.ErrQuotaExceeded) {
		s.logger.LogAttrs(ctx, slog.LevelError, "autosave failed", errors.SlogError(err))
	}
}

// changed autosaves and announces a change of the GameState.
func (s *Session) changed(ctx context.Context) {
	s.save(ctx)
	s.notify()
}

// Boot restores the saved progress over fresh content and shows the intro screen.
func (s *Session) Boot(ctx context.Context) {
	state, restored := s.saver.Load(ctx, s.catalog.Nodes(s.language))
	state.CurrentNodeID = ""
	state.DevMode = false
	s.state = state
	s.scene.Leave()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "booted game", slog.Bool("restored", restored),
		slog.String("language", s.language.String()))
	s.notify()
}

// Screen is the screen the current node id resolves to.
func (s *Session) Screen() Screen {
	switch s.state.CurrentNodeID {
	case "":
		if _, ok := s.state.Intro(); !ok {
			return ScreenError
		}
		return ScreenIntro
	case models.HubNodeID:
		return ScreenHub
	}
	n, ok := s.state.Node(s.state.CurrentNodeID)
	switch {
	case !ok:
		return ScreenError
	case n.Type == models.NodeTypeIntro:
		return ScreenIntro
	default:
		return ScreenScene
	}
}

func (s *Session) wrongScreen(command string) error {
	return errors.Wrap(ErrWrongScreen, command, slog.String("screen", string(s.Screen())))
}

// goTo makes id the current node and enters its scene when it has one.
func (s *Session) goTo(ctx context.Context, id string) {
	s.state.CurrentNodeID = id
	if s.Screen() != ScreenScene {
		s.scene.Leave()
		if s.Screen() == ScreenError {
			s.logger.LogAttrs(ctx, slog.LevelError, "node not found", slog.String("nodeID", id))
		}
		return
	}
	node, _ := s.state.Node(id)
	s.player.Play(audio.Transition)
	s.scene.Enter(node)
}

// Start leaves the intro screen for the hub.
func (s *Session) Start(ctx context.Context) error {
	if s.Screen() != ScreenIntro {
		return s.wrongScreen("start")
	}
	s.player.Play(audio.Click)
	if id := s.state.CurrentNodeID; id != "" {
		s.state.Nodes = campaign.Complete(s.state.Nodes, id).Nodes
	}
	s.goTo(ctx, models.HubNodeID)
	s.changed(ctx)
	return nil
}

// SelectNode enters a node from the hub. Locked and hidden nodes are refused with an error cue.
func (s *Session) SelectNode(ctx context.Context, id string) error {
	if s.Screen() != ScreenHub {
		return s.wrongScreen("select node")
	}
	node, ok := s.state.Node(id)
	var err error
	switch {
	case !ok:
		err = ErrUnknownNode
	case !node.Type.Playable() || node.Coordinates == nil:
		err = ErrNodeHidden
	case node.IsLocked:
		err = ErrNodeLocked
	}
	if err != nil {
		s.player.Play(audio.Error)
		return errors.Wrap(err, "select node", slog.String("nodeID", id))
	}
	s.player.Play(audio.Click)
	s.goTo(ctx, id)
	s.changed(ctx)
	return nil
}

// BackToHub returns to the map from anywhere past the intro screen.
func (s *Session) BackToHub(ctx context.Context) error {
	if s.Screen() == ScreenIntro {
		return s.wrongScreen("back to hub")
	}
	s.player.Play(audio.Click)
	s.goTo(ctx, models.HubNodeID)
	s.changed(ctx)
	return nil
}

// BackToIntro returns from the map to the intro screen.
func (s *Session) BackToIntro(ctx context.Context) error {
	if s.Screen() != ScreenHub {
		return s.wrongScreen("back to intro")
	}
	s.player.Play(audio.Click)
	s.goTo(ctx, "")
	s.changed(ctx)
	return nil
}

// Back steps the scene one phase back and leaves to the hub from its intro.
func (s *Session) Back(ctx context.Context) error {
	if s.Screen() != ScreenScene {
		return s.wrongScreen("back")
	}
	if !s.scene.Back() {
		return s.BackToHub(ctx)
	}
	s.player.Play(audio.Click)
	s.notify()
	return nil
}

// Scene runs command against the scene being played. When the command finishes the scene, the progress
// is recorded and the player moves on to the next destination.
func (s *Session) Scene(ctx context.Context, command func(c *scene.Controller) error) error {
	if s.Screen() != ScreenScene {
		return s.wrongScreen("scene command")
	}
	err := command(s.scene)
	if s.completed != "" {
		s.complete(ctx, s.completed)
		s.completed = ""
	}
	s.notify()
	return err
}

func (s *Session) complete(ctx context.Context, nodeID string) {
	outcome := campaign.Complete(s.state.Nodes, nodeID)
	s.state.Nodes = outcome.Nodes
	s.logger.LogAttrs(ctx, slog.LevelInfo, "completed node", slog.String("nodeID", nodeID),
		slog.String("unlocked", outcome.Unlocked), slog.String("destination", outcome.Destination))
	if outcome.Unlocked != "" {
		s.player.Play(audio.Unlock)
	}
	s.goTo(ctx, outcome.Destination)
	s.save(ctx)
}

// SetLanguage reloads the content in lang keeping progress and customised images. A scene being played
// restarts in the new language.
func (s *Session) SetLanguage(ctx context.Context, lang i18n.Language) error {
	if !slices.Contains(i18n.Supported(), lang) {
		return errors.Wrap(ErrUnsupportedLanguage, "set language", slog.String("language", string(lang)))
	}
	s.language = lang
	s.state.Nodes = campaign.Rebase(s.catalog.Nodes(lang), s.state.Nodes)
	if s.Screen() == ScreenScene {
		node, _ := s.state.Node(s.state.CurrentNodeID)
		s.scene.Enter(node)
	}
	s.changed(ctx)
	return nil
}

func (s *Session) Language() i18n.Language { return s.language }

// Key is a key press forwarded by the client.
type Key struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
}

func (k Key) togglesDevMode() bool {
	// ג is on the D key of a Hebrew layout.
	return k.Ctrl && k.Shift && (k.Key == "D" || k.Key == "d" || k.Key == "ג")
}

// HandleKey toggles the authoring overlay on Ctrl+Shift+D. It reports whether the key was consumed.
func (s *Session) HandleKey(ctx context.Context, key Key) bool {
	if !s.cfg.DevTools || !key.togglesDevMode() {
		return false
	}
	s.state.DevMode = !s.state.DevMode
	s.changed(ctx)
	return true
}

// SetDevMode opens or closes the authoring overlay.
func (s *Session) SetDevMode(ctx context.Context, on bool) error {
	if !s.cfg.DevTools {
		return ErrDevToolsDisabled
	}
	s.state.DevMode = on
	s.changed(ctx)
	return nil
}

// State returns a copy of the game state.
func (s *Session) State() models.GameState {
	return s.state.Clone()
}

// Replace swaps the node list, which is how the editor applies content changes. The scene being played
// keeps the content it was entered with.
func (s *Session) Replace(ctx context.Context, nodes []models.Node) error {
	s.state.Nodes = models.CloneNodes(nodes)
	s.changed(ctx)
	return nil
}

func (s *Session) StorageFull() bool {
	return s.saver.StorageFull()
}

// Reset deletes the save and starts over from fresh content on the intro screen.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.saver.Reset(ctx); err != nil {
		return errors.Wrap(err, "reset save")
	}
	s.state = campaign.FreshState(s.catalog.Nodes(s.language))
	s.scene.Leave()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "reset game")
	s.notify()
	return nil
}
