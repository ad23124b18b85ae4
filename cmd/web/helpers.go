package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/WingsGames/Neve-Or/internal/errors"
)

// maxBodyBytes caps JSON request bodies. Editor requests carry no images, those are generated server side.
const maxBodyBytes = 64 * 1024

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri))
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		body []byte
		err  error
	)
	if body, err = json.Marshal(v); err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into v and answers 400 Bad Request when it cannot. It reports
// whether decoding succeeded.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "invalid request body", errors.SlogError(err))
		app.clientError(w, r, http.StatusBadRequest)
		return false
	}
	return true
}

// rejection is the body of a 422 response: the reason the command was refused and the unchanged view.
type rejection struct {
	Error string `json:"error"`
	View  any    `json:"view"`
}
