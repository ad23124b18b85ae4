package e2etest

import (
	"context"
	"io"
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/logging"
)

// LogAddrKey is the log attribute under which the server announces its listen address.
const LogAddrKey = "addr"

// RunFunc has the signature of the run function of cmd/web.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// Server is a game server running in the test process.
type Server struct {
	url    string
	client *Client
}

// addrListener returns a logger writing to logSink and a channel receiving the first announced address.
func addrListener(logSink io.Writer) (*slog.Logger, <-chan string) {
	addrs := make(chan string, 1)
	handler := slog.NewTextHandler(logSink, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key != LogAddrKey {
				return a
			}
			select {
			case addrs <- a.Value.String():
			default:
			}
			return a
		},
	})
	return slog.New(logging.NewContextHandler(handler)), addrs
}

// StartServer runs the server in the background with lookupEnv as its environment and returns once
// /api/healthy answers. Pass [io.Discard] as logSink unless the server logs are interesting. The server
// stops when ctx is cancelled; use localhost:0 as the address so that parallel tests get their own port.
func StartServer(
	ctx context.Context,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run RunFunc,
) (*Server, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	logger, addrs := addrListener(logSink)

	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	var addr string
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(context.Cause(ctx), "server stopped before listening")
	case addr = <-addrs:
	}

	s := &Server{url: "http://" + addr}
	var err error
	if s.client, err = NewClient(s.url); err != nil {
		return nil, errors.Wrap(err, "new client")
	}
	if err = s.client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, errors.Wrap(err, "wait for ready", slog.String("url", s.url))
	}
	return s, nil
}

// Client is signed in as nobody until its first game request.
func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}
