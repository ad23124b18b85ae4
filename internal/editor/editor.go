// Package editor is the authoring tool: it edits node content, generates images for backgrounds and
// characters, and moves inline images out of the save into uploaded assets.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/WingsGames/Neve-Or/internal/ai"
	"github.com/WingsGames/Neve-Or/internal/assets"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

var (
	ErrUnknownNode     = errors.NewSentinel("unknown node")
	ErrUnknownSubScene = errors.NewSentinel("unknown sub-scene")
	ErrUnknownSpeaker  = errors.NewSentinel("speaker has no dialog in this node")
	ErrNotInline       = errors.NewSentinel("image is already uploaded or missing")
)

// StorageBudgetBytes is the browser storage budget the usage meter is measured against.
const StorageBudgetBytes = 4.8 * 1024 * 1024

const (
	// storageWarningPercent turns the storage warning on before the save actually fails.
	storageWarningPercent = 95
	maxNotices            = 10
)

// Game is the session whose content is being edited.
type Game interface {
	State() models.GameState
	Replace(ctx context.Context, nodes []models.Node) error
	StorageFull() bool
	Reset(ctx context.Context) error
}

// Runner executes fn serialized with every other access to the game, eventloop.Loop.Do in production.
type Runner func(ctx context.Context, fn func() error) error

// Direct runs fn on the calling goroutine.
func Direct(_ context.Context, fn func() error) error {
	return fn()
}

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a message for the author. Key is an i18n message key.
type Notice struct {
	Level   Level
	Key     string
	Subject string
	At      time.Time
}

// target is what an edit applies to, captured when the request starts.
type target struct {
	nodeID     string
	subSceneID string
}

type Editor struct {
	game     Game
	run      Runner
	images   ai.ImageGenerator
	uploader assets.Uploader
	logger   *slog.Logger
	now      func() time.Time

	nodeID     string
	subSceneID string
	notices    []Notice
}

func New(game Game, run Runner, images ai.ImageGenerator, uploader assets.Uploader, logger *slog.Logger) *Editor {
	return &Editor{
		game:     game,
		run:      run,
		images:   images,
		uploader: uploader,
		logger:   logger.With("source", "Editor"),
		now:      time.Now,
	}
}

// SetClock replaces the clock used to name uploads.
func (e *Editor) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Editor) notify(level Level, key, subject string) {
	e.notices = append(e.notices, Notice{Level: level, Key: key, Subject: subject, At: e.now()})
	if len(e.notices) > maxNotices {
		e.notices = e.notices[len(e.notices)-maxNotices:]
	}
}

// selected resolves the selection against the current state. Without a selection the first node is used.
func (e *Editor) selected() (models.Node, *models.SubScene, error) {
	state := e.game.State()
	if len(state.Nodes) == 0 {
		return models.Node{}, nil, ErrUnknownNode
	}
	id := e.nodeID
	if id == "" {
		id = state.Nodes[0].ID
	}
	node, ok := state.Node(id)
	if !ok {
		return models.Node{}, nil, errors.Wrap(ErrUnknownNode, "resolve selection", slog.String("nodeID", id))
	}
	if e.subSceneID == "" {
		return node, nil, nil
	}
	sub, ok := node.Data.SubScene(e.subSceneID)
	if !ok {
		return models.Node{}, nil, errors.Wrap(ErrUnknownSubScene, "resolve selection",
			slog.String("nodeID", id), slog.String("subSceneID", e.subSceneID))
	}
	return node, &sub, nil
}

// Select chooses the node to edit and goes back to editing its main scene.
func (e *Editor) Select(ctx context.Context, nodeID string) error {
	return e.run(ctx, func() error {
		if _, ok := e.game.State().Node(nodeID); !ok {
			return errors.Wrap(ErrUnknownNode, "select", slog.String("nodeID", nodeID))
		}
		e.nodeID = nodeID
		e.subSceneID = ""
		return nil
	})
}

// SelectSubScene chooses a sub-scene of the selected node. An empty id selects the main scene.
func (e *Editor) SelectSubScene(ctx context.Context, subSceneID string) error {
	return e.run(ctx, func() error {
		node, _, err := e.selected()
		if err != nil {
			return err
		}
		if subSceneID != "" {
			if _, ok := node.Data.SubScene(subSceneID); !ok {
				return errors.Wrap(ErrUnknownSubScene, "select sub-scene", slog.String("subSceneID", subSceneID))
			}
		}
		e.nodeID = node.ID
		e.subSceneID = subSceneID
		return nil
	})
}

// SetDescription edits the description of the selected node. Sub-scenes share it as generation context.
func (e *Editor) SetDescription(ctx context.Context, description string) error {
	return e.run(ctx, func() error {
		node, _, err := e.selected()
		if err != nil {
			return err
		}
		return e.update(ctx, target{nodeID: node.ID}, func(n *models.Node) error {
			n.Data.Description = description
			return nil
		})
	})
}

// update applies fn to the node of t in a copy of the node list and hands the copy to the game.
func (e *Editor) update(ctx context.Context, t target, fn func(n *models.Node) error) error {
	nodes := models.CloneNodes(e.game.State().Nodes)
	i := models.FindNode(nodes, t.nodeID)
	if i < 0 {
		return errors.Wrap(ErrUnknownNode, "update", slog.String("nodeID", t.nodeID))
	}
	if err := fn(&nodes[i]); err != nil {
		return err
	}
	if err := e.game.Replace(ctx, nodes); err != nil {
		return errors.Wrap(err, "replace nodes")
	}
	return nil
}

func setBackground(t target, url string) func(n *models.Node) error {
	return func(n *models.Node) error {
		if t.subSceneID == "" {
			n.Data.BackgroundImage = url
			return nil
		}
		for i := range n.Data.SubScenes {
			if n.Data.SubScenes[i].ID == t.subSceneID {
				n.Data.SubScenes[i].BackgroundImage = url
				return nil
			}
		}
		return errors.Wrap(ErrUnknownSubScene, "set background", slog.String("subSceneID", t.subSceneID))
	}
}

func setCharacter(speaker, url string) func(n *models.Node) error {
	return func(n *models.Node) error {
		if n.Data.CharacterImages == nil {
			n.Data.CharacterImages = map[string]string{}
		}
		n.Data.CharacterImages[speaker] = url
		return nil
	}
}

// fail records a notice for a failed request. The content stays as it was.
func (e *Editor) fail(ctx context.Context, err error, key, subject, msg string) error {
	e.logger.LogAttrs(ctx, slog.LevelError, msg, errors.SlogError(err), slog.String("subject", subject))
	_ = e.run(ctx, func() error {
		e.notify(LevelError, key, subject)
		return nil
	})
	return errors.Wrap(err, msg)
}

// GenerateBackground draws a new background for the selected node or sub-scene.
func (e *Editor) GenerateBackground(ctx context.Context) error {
	var (
		t      target
		prompt string
	)
	if err := e.run(ctx, func() error {
		node, sub, err := e.selected()
		if err != nil {
			return err
		}
		t = target{nodeID: node.ID}
		if sub != nil {
			t.subSceneID = sub.ID
		}
		prompt = ai.BackgroundPrompt(node, sub)
		return nil
	}); err != nil {
		return err
	}

	url, err := e.images.GenerateImage(ctx, prompt, ai.Landscape)
	if err != nil {
		return e.fail(ctx, err, "generateFailed", t.nodeID, "generate background")
	}
	return e.run(ctx, func() error {
		return e.update(ctx, t, setBackground(t, url))
	})
}

// speakerMood is the mood of the speaker's first line in dialog.
func speakerMood(dialog []models.ChatMessage, speaker string) (models.Mood, bool) {
	for _, m := range dialog {
		if m.Speaker == speaker {
			if m.Mood == "" {
				return models.MoodNeutral, true
			}
			return m.Mood, true
		}
	}
	return "", false
}

// GenerateCharacter draws a portrait of speaker for the selected node.
func (e *Editor) GenerateCharacter(ctx context.Context, speaker string) error {
	var (
		t      target
		prompt string
	)
	if err := e.run(ctx, func() error {
		node, _, err := e.selected()
		if err != nil {
			return err
		}
		mood, ok := speakerMood(node.Data.Dialog, speaker)
		if !ok {
			return errors.Wrap(ErrUnknownSpeaker, "generate character", slog.String("speaker", speaker))
		}
		t = target{nodeID: node.ID}
		prompt = ai.CharacterPrompt(speaker, mood)
		return nil
	}); err != nil {
		return err
	}

	url, err := e.images.GenerateImage(ctx, prompt, ai.Square)
	if err != nil {
		return e.fail(ctx, err, "generateFailed", speaker, "generate character")
	}
	return e.run(ctx, func() error {
		return e.update(ctx, t, setCharacter(speaker, url))
	})
}

// BackgroundPath is where an uploaded background of node, or of its sub-scene, is stored.
func BackgroundPath(nodeID, subSceneID string, at time.Time) string {
	suffix := ""
	if subSceneID != "" {
		suffix = "_sub_" + subSceneID
	}
	return fmt.Sprintf("backgrounds/%s%s_%d.jpg", nodeID, suffix, at.UnixMilli())
}

var unsafeNameChars = regexp.MustCompile(`(?i)[^a-z0-9]`)

// CharacterPath is where an uploaded portrait of speaker is stored.
func CharacterPath(nodeID, speaker string, at time.Time) string {
	safe := strings.ToLower(unsafeNameChars.ReplaceAllString(speaker, "_"))
	return fmt.Sprintf("characters/%s_%s_%d.jpg", nodeID, safe, at.UnixMilli())
}

// UploadBackground moves the inline background of the selection to the asset store.
func (e *Editor) UploadBackground(ctx context.Context) error {
	var (
		t     target
		image string
		path  string
	)
	if err := e.run(ctx, func() error {
		node, sub, err := e.selected()
		if err != nil {
			return err
		}
		t = target{nodeID: node.ID}
		image = node.Data.BackgroundImage
		if sub != nil {
			t.subSceneID = sub.ID
			image = sub.BackgroundImage
		}
		if !assets.IsInline(image) {
			e.notify(LevelInfo, "alreadyUploaded", node.ID)
			return ErrNotInline
		}
		path = BackgroundPath(t.nodeID, t.subSceneID, e.now())
		return nil
	}); err != nil {
		return err
	}

	url, err := e.uploader.Upload(ctx, image, path)
	if err != nil {
		return e.fail(ctx, err, "uploadFailed", path, "upload background")
	}
	return e.run(ctx, func() error {
		if err = e.update(ctx, t, setBackground(t, url)); err != nil {
			return err
		}
		e.notify(LevelInfo, "uploaded", path)
		return nil
	})
}

// UploadCharacter moves the inline portrait of speaker to the asset store.
func (e *Editor) UploadCharacter(ctx context.Context, speaker string) error {
	var (
		t     target
		image string
		path  string
	)
	if err := e.run(ctx, func() error {
		node, _, err := e.selected()
		if err != nil {
			return err
		}
		image = node.Data.CharacterImages[speaker]
		if !assets.IsInline(image) {
			e.notify(LevelInfo, "alreadyUploaded", speaker)
			return ErrNotInline
		}
		t = target{nodeID: node.ID}
		path = CharacterPath(node.ID, speaker, e.now())
		return nil
	}); err != nil {
		return err
	}

	url, err := e.uploader.Upload(ctx, image, path)
	if err != nil {
		return e.fail(ctx, err, "uploadFailed", path, "upload character")
	}
	return e.run(ctx, func() error {
		if err = e.update(ctx, t, setCharacter(speaker, url)); err != nil {
			return err
		}
		e.notify(LevelInfo, "uploaded", path)
		return nil
	})
}

// ResetData deletes the save and restarts the game from fresh content.
func (e *Editor) ResetData(ctx context.Context) error {
	return e.run(ctx, func() error {
		e.nodeID = ""
		e.subSceneID = ""
		e.notices = nil
		if err := e.game.Reset(ctx); err != nil {
			return errors.Wrap(err, "reset game")
		}
		return nil
	})
}

// Usage is the size of the serialized game state in bytes.
func Usage(state models.GameState) (int, error) {
	blob, err := json.Marshal(state)
	if err != nil {
		return 0, errors.Wrap(err, "marshal state")
	}
	return len(blob), nil
}

// HasInlineImages reports whether any image of node is embedded in the save.
func HasInlineImages(node models.Node) bool {
	if assets.IsInline(node.Data.BackgroundImage) {
		return true
	}
	for _, img := range node.Data.CharacterImages {
		if assets.IsInline(img) {
			return true
		}
	}
	for _, s := range node.Data.SubScenes {
		if assets.IsInline(s.BackgroundImage) {
			return true
		}
	}
	return false
}
