package errors

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := Wrap(sentinel, "load node", slog.String("nodeID", "intro"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "load node: test error", wrapped.Error())

	var annotated AnnotatedError
	require.True(t, As(err, &annotated))

	// Ensure log values are coming through.
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.GreaterOrEqual(t, sourceIdx, 0)
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(nil, "nothing to wrap"))

	inner := New("inner", slog.Int("attempt", 2))
	outer := Wrap(inner, "outer", slog.String("key", "value"))

	var annotated AnnotatedError
	require.True(t, As(outer, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("key", "value"))
	require.Contains(t, group, slog.Int("attempt", 2))
	require.Equal(t, inner, Unwrap(outer))
}

func TestSlogError(t *testing.T) {
	plain := NewSentinel("plain")
	require.Equal(t, slog.String("error", "plain"), SlogError(plain))

	attr := SlogError(New("annotated"))
	require.Equal(t, "error", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Resolve().Kind())
}

func TestJoin(t *testing.T) {
	first := NewSentinel("first")
	second := NewSentinel("second")
	joined := Join(first, second)
	require.ErrorIs(t, joined, first)
	require.ErrorIs(t, joined, second)
}
