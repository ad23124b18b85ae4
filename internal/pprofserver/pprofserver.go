// Package pprofserver exposes the runtime profiles of the game server on the loopback interface.
package pprofserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/WingsGames/Neve-Or/internal/errors"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("POST /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
}

func newServer(addr string) *http.Server {
	mux := http.NewServeMux()
	Handle(mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}

// Launch serves pprof at the ipv6 loopback address ::1 and the given port, e.g. ":6060". A failing pprof
// server is logged and does not take the game server down.
func Launch(port string, logger *slog.Logger) {
	logger = logger.With("source", "pprof")
	go func() {
		ctx := context.Background()
		addr := "[::1]" + port
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprofAddr", addr))
		if err := newServer(addr).ListenAndServe(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped",
				errors.SlogError(errors.Wrap(err, "listen and serve", slog.String("pprofAddr", addr))))
		}
	}()
}
