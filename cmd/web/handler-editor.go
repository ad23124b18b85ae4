package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/WingsGames/Neve-Or/internal/ai"
	"github.com/WingsGames/Neve-Or/internal/assets"
	"github.com/WingsGames/Neve-Or/internal/editor"
	"github.com/WingsGames/Neve-Or/internal/errors"
)

// editorRequest carries the arguments of every editor action, each action reads the fields it needs.
type editorRequest struct {
	NodeID      string `json:"nodeId"`
	SubSceneID  string `json:"subSceneId"`
	Description string `json:"description"`
	Speaker     string `json:"speaker"`
}

type editorAction func(ctx context.Context, e *editor.Editor, req editorRequest) error

var editorActions = map[string]editorAction{
	"select": func(ctx context.Context, e *editor.Editor, req editorRequest) error {
		return e.Select(ctx, req.NodeID)
	},
	"selectSubScene": func(ctx context.Context, e *editor.Editor, req editorRequest) error {
		return e.SelectSubScene(ctx, req.SubSceneID)
	},
	"setDescription": func(ctx context.Context, e *editor.Editor, req editorRequest) error {
		return e.SetDescription(ctx, req.Description)
	},
	"generateBackground": func(ctx context.Context, e *editor.Editor, _ editorRequest) error {
		return e.GenerateBackground(ctx)
	},
	"generateCharacter": func(ctx context.Context, e *editor.Editor, req editorRequest) error {
		return e.GenerateCharacter(ctx, req.Speaker)
	},
	"uploadBackground": func(ctx context.Context, e *editor.Editor, _ editorRequest) error {
		return e.UploadBackground(ctx)
	},
	"uploadCharacter": func(ctx context.Context, e *editor.Editor, req editorRequest) error {
		return e.UploadCharacter(ctx, req.Speaker)
	},
	"reset": func(ctx context.Context, e *editor.Editor, _ editorRequest) error {
		return e.ResetData(ctx)
	},
}

// editorStatus maps an editor error to a response status. Failures of image generation and upload are
// already recorded as notices in the view.
func editorStatus(err error) int {
	switch {
	case errors.Is(err, editor.ErrUnknownNode), errors.Is(err, editor.ErrUnknownSubScene),
		errors.Is(err, editor.ErrUnknownSpeaker), errors.Is(err, editor.ErrNotInline),
		errors.Is(err, assets.ErrNotDataURL), errors.Is(err, assets.ErrInvalidPath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ai.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (app *application) editorView(w http.ResponseWriter, r *http.Request) {
	p, ok := app.currentPlayer(w, r)
	if !ok {
		return
	}
	v, err := p.editorView(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "render editor view"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, v)
}

// editorCommand runs the editor action named in the path and responds with the updated editor view.
func (app *application) editorCommand(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("action")
	action, ok := editorActions[name]
	if !ok {
		app.notFound(w, r)
		return
	}
	var req editorRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	p, ok := app.currentPlayer(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	if err := action(r.Context(), p.editor, req); err != nil {
		status = editorStatus(err)
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "editor action failed",
			slog.String("action", name), slog.Int("status", status), errors.SlogError(err))
	}
	v, err := p.editorView(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "render editor view"))
		return
	}
	app.writeJSON(w, r, status, v)
}
