package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/game"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait  = 5 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
	streamMaxMessage = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

type streamMessageType string

const (
	streamSnapshot streamMessageType = "snapshot"
	streamRejected streamMessageType = "rejected"
)

// streamMessage is sent to the browser. A rejected message answers a command the game refused, the
// snapshot published for the same command carries its error cue.
type streamMessage struct {
	Type     streamMessageType `json:"type"`
	Snapshot *snapshot         `json:"snapshot,omitempty"`
	Command  game.CommandType  `json:"command,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// gameStream upgrades to a websocket that pushes every new snapshot of the player's game and accepts
// commands in the same JSON shape as POST /api/game/commands.
func (app *application) gameStream(w http.ResponseWriter, r *http.Request) {
	p, ok := app.currentPlayer(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "websocket upgrade failed", errors.SlogError(err))
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots, unsubscribe := app.snapshots.Subscribe(p.key)
	defer unsubscribe()

	// Without a published snapshot yet, the subscription would stay silent until the first change.
	if err = p.loop.Do(ctx, func() error {
		p.publish()
		return nil
	}); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "publish initial snapshot", errors.SlogError(err))
		return
	}

	rejections := make(chan streamMessage, 1)
	go func() {
		defer cancel()
		app.readCommands(ctx, conn, p, rejections)
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()
	for {
		var msg streamMessage
		select {
		case <-ctx.Done():
			return
		case snap, open := <-snapshots:
			if !open {
				return
			}
			msg = streamMessage{Type: streamSnapshot, Snapshot: &snap}
		case msg = <-rejections:
		case <-ping.C:
			// An open stream keeps the player from being evicted.
			p.touch()
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		if err = writeStreamMessage(conn, msg); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelDebug, "stream closed", errors.SlogError(err))
			return
		}
	}
}

func writeStreamMessage(conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal stream message")
	}
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, "write stream message")
	}
	return nil
}

// readCommands dispatches the commands the browser sends until the connection closes. The resulting
// snapshots reach the browser through the subscription.
func (app *application) readCommands(
	ctx context.Context,
	conn *websocket.Conn,
	p *player,
	rejections chan<- streamMessage,
) {
	conn.SetReadLimit(streamMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var cmd game.Command
		if err = json.Unmarshal(data, &cmd); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelDebug, "invalid stream command", errors.SlogError(err))
			continue
		}
		if _, err = p.dispatch(ctx, cmd); err == nil {
			continue
		}
		if !game.Rejected(err) && !errors.Is(err, game.ErrUnknownCommand) {
			app.logger.LogAttrs(ctx, slog.LevelError, "stream command failed",
				slog.String("command", string(cmd.Type)), errors.SlogError(err))
			return
		}
		select {
		case rejections <- streamMessage{Type: streamRejected, Command: cmd.Type, Error: err.Error()}:
		case <-ctx.Done():
			return
		}
	}
}
