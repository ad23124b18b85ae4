package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/WingsGames/Neve-Or/internal/e2etest"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/game"
	"github.com/WingsGames/Neve-Or/internal/logging"
)

type view struct {
	Screen game.Screen `json:"screen"`
}

// TestStart signs in as a new player and leaves the intro screen for the map.
func TestStart(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var (
		err    error
		status int
		v      view
	)

	if status, err = client.GetJSON(ctx, "/api/game", &v); err != nil {
		return errors.Wrap(err, "get game")
	}
	if status != http.StatusOK || v.Screen != game.ScreenIntro {
		return errors.New("unexpected game view", slog.Int("status", status), slog.String("screen", string(v.Screen)))
	}
	if status, err = client.PostJSON(ctx, "/api/game/commands", game.Command{Type: game.CommandStart}, &v); err != nil {
		return errors.Wrap(err, "start game")
	}
	if status != http.StatusOK || v.Screen != game.ScreenHub {
		return errors.New("start did not reach the map", slog.Int("status", status),
			slog.String("screen", string(v.Screen)))
	}
	return nil
}

func main() {
	logger := logging.New(os.Stdout, slog.LevelDebug)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestStart(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing start", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
