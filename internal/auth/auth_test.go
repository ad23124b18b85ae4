package auth_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/WingsGames/Neve-Or/internal/auth"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	upserted [][]byte
	err      error
}

func (f *fakeUsers) Upsert(_ context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, user.ID)
	return nil
}

func sessionContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	return ctx
}

func TestService_EnsureSignedIn(t *testing.T) {
	t.Parallel()
	sm := scs.New()
	users := &fakeUsers{}
	s := auth.New(sm, users, testhelpers.NewLogger(io.Discard))
	ctx := sessionContext(t, sm)

	require.Nil(t, s.PlayerID(ctx))
	id, err := s.EnsureSignedIn(ctx)
	require.NoError(t, err)
	require.Len(t, id, 64)
	require.Equal(t, [][]byte{id}, users.upserted)

	again, err := s.EnsureSignedIn(ctx)
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Len(t, users.upserted, 1, "returning players are not created twice")
	require.Equal(t, id, s.PlayerID(ctx))

	other, err := s.EnsureSignedIn(sessionContext(t, sm))
	require.NoError(t, err)
	require.NotEqual(t, id, other)
}

func TestService_EnsureSignedIn_persistFailure(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sm := scs.New()
	s := auth.New(sm, &fakeUsers{err: errors.New("disk full")}, testhelpers.NewLogger(&buf))
	id, err := s.EnsureSignedIn(sessionContext(t, sm))
	require.NoError(t, err, "sign-in failures never block play")
	require.NotEmpty(t, id)
	require.Contains(t, buf.String(), "anonymous sign-in not persisted")
}
