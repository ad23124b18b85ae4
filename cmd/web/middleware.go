package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/WingsGames/Neve-Or/internal/contexthelpers"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/logging"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Generated and uploaded images are served from /assets, generated ones arrive as data URLs first.
		w.Header().Set("Content-Security-Policy",
			`default-src 'self';
				   img-src 'self' data: https:;
				   connect-src 'self';
				   object-src 'none';
				   base-uri 'none';`)

		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")

		next.ServeHTTP(w, r)
	})
}

func cacheForeverHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "received request",
			slog.String("proto", proto), slog.String("method", method), slog.String("uri", uri))

		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.New(fmt.Sprintf("%v", err)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// signIn makes sure the visitor has a player identity. It needs a loaded session.
func (app *application) signIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID, err := app.auth.EnsureSignedIn(r.Context())
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "ensure signed in"))
			return
		}
		r = contexthelpers.SetPlayerID(r, playerID)
		r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("playerID", playerKey(playerID))))
		next.ServeHTTP(w, r)
	})
}

// requirePlayer lets through visitors that already have a player identity. The stream cannot create
// one because the session cookie of a new identity would never reach the browser.
func (app *application) requirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := app.auth.PlayerID(r.Context())
		if playerID == nil {
			app.clientError(w, r, http.StatusUnauthorized)
			return
		}
		r = contexthelpers.SetPlayerID(r, playerID)
		r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("playerID", playerKey(playerID))))
		next.ServeHTTP(w, r)
	})
}

// loadSession makes scs work with hijacked websocket connections, where LoadAndSave cannot write the
// cookie. The session is only read.
// See https://github.com/alexedwards/scs/issues/141#issuecomment-1807075358
func (app *application) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		cookie, err := r.Cookie(app.sessionManager.Cookie.Name)
		if err == nil {
			token = cookie.Value
		}
		ctx, err := app.sessionManager.Load(r.Context(), token)
		if err != nil {
			app.serverError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// devTools hides the authoring endpoints unless they are enabled.
func (app *application) devTools(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.cfg.DevTools {
			app.notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
