package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/WingsGames/Neve-Or/internal/assets"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/repositories"
)

// asset serves an uploaded image. Asset paths carry the upload time so they never change content.
func (app *application) asset(w http.ResponseWriter, r *http.Request) {
	var (
		a   *models.Asset
		err error
	)
	if a, err = app.assets.Get(r.Context(), r.PathValue("path")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, assets.ErrInvalidPath) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "get asset"))
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	if _, err = w.Write(a.Data); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write asset", errors.SlogError(err))
	}
}
