package contexthelpers

import (
	"context"
)

// PlayerID returns the anonymous player the request belongs to, nil before sign-in.
func PlayerID(ctx context.Context) []byte {
	playerID, ok := ctx.Value(playerIDContextKey).([]byte)
	if !ok {
		return nil
	}

	return playerID
}
