package main

import (
	"net/http"
	"time"

	"github.com/WingsGames/Neve-Or/internal/errors"
)

const timeoutBody = `{"error":"timeout"}`

// editorTimeout leaves room for image generation, which takes tens of seconds.
const editorTimeout = 2 * time.Minute

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, defaultTimeout time.Duration) http.Handler {
	// We want the timeout to be a little shorter than the server's write timeout so that the
	// timeout handler has a chance to respond before the server closes the connection.
	httpHandlerTimeout := defaultTimeout - 500*time.Millisecond //nolint:mnd // 500ms
	return http.TimeoutHandler(h, httpHandlerTimeout, timeoutBody)
}

// extendDeadline lifts the server's write deadline for handlers that are allowed to take up to timeout.
// It must wrap the ResponseWriter of the server, not one wrapped by other middleware.
func (app *application) extendDeadline(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				app.serverError(w, r, errors.Wrap(err, "extend write deadline"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
