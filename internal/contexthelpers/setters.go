package contexthelpers

import (
	"context"
	"net/http"
)

func SetPlayerID(r *http.Request, playerID []byte) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, playerIDContextKey, playerID)
	return r.WithContext(ctx)
}
