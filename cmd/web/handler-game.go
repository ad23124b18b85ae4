package main

import (
	"log/slog"
	"net/http"

	"github.com/WingsGames/Neve-Or/internal/contexthelpers"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/game"
)

func (app *application) currentPlayer(w http.ResponseWriter, r *http.Request) (*player, bool) {
	p, err := app.players.get(r.Context(), contexthelpers.PlayerID(r.Context()))
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get player"))
		return nil, false
	}
	return p, true
}

// gameView responds with the current view of the player's game.
func (app *application) gameView(w http.ResponseWriter, r *http.Request) {
	p, ok := app.currentPlayer(w, r)
	if !ok {
		return
	}
	v, err := p.view(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "render view"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot{View: v})
}

// gameCommand applies a player command. A command the game refuses is answered with 422 and the view
// it was refused in.
func (app *application) gameCommand(w http.ResponseWriter, r *http.Request) {
	var cmd game.Command
	if !app.readJSON(w, r, &cmd) {
		return
	}
	p, ok := app.currentPlayer(w, r)
	if !ok {
		return
	}
	snap, err := p.dispatch(r.Context(), cmd)
	switch {
	case err == nil:
		app.writeJSON(w, r, http.StatusOK, snap)
	case game.Rejected(err):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "command rejected",
			slog.String("command", string(cmd.Type)), errors.SlogError(err))
		app.writeJSON(w, r, http.StatusUnprocessableEntity, rejection{Error: err.Error(), View: snap})
	case errors.Is(err, game.ErrUnknownCommand):
		app.clientError(w, r, http.StatusBadRequest)
	default:
		app.serverError(w, r, errors.Wrap(err, "dispatch command", slog.String("command", string(cmd.Type))))
	}
}
