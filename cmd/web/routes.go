package main

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
)

func (app *application) routes(defaultTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, app.signIn)
	timed := func(h http.HandlerFunc) http.Handler { return timeoutHandler(h, defaultTimeout) }

	mux.Handle("GET /api/healthy", timed(app.healthy))
	mux.Handle("GET /assets/{path...}", alice.New(cacheForeverHeaders).Then(timed(app.asset)))

	mux.Handle("GET /api/game", session.Then(timed(app.gameView)))
	mux.Handle("POST /api/game/commands", session.Then(timed(app.gameCommand)))
	// The websocket outlives every timeout and needs the plain ResponseWriter to hijack the connection.
	mux.Handle("GET /api/game/stream", alice.New(app.loadSession, app.requirePlayer).ThenFunc(app.gameStream))

	editor := session.Append(app.devTools)
	mux.Handle("GET /api/editor", editor.Then(timed(app.editorView)))
	mux.Handle("POST /api/editor/{action}", alice.New(app.extendDeadline(editorTimeout)).
		Then(timeoutHandler(editor.ThenFunc(app.editorCommand), editorTimeout)))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
