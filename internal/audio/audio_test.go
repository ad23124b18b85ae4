package audio_test

import (
	"bytes"
	"testing"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Drain(t *testing.T) {
	t.Parallel()
	var r audio.Recorder
	require.Empty(t, r.Drain())
	r.Play(audio.Click)
	r.Play(audio.Victory)
	require.Equal(t, []audio.Cue{audio.Click, audio.Victory}, r.Drain())
	require.Empty(t, r.Drain())
}

func TestLogging(t *testing.T) {
	t.Parallel()
	var (
		buf bytes.Buffer
		r   audio.Recorder
	)
	p := audio.Logging{Next: &r, Logger: testhelpers.NewLogger(&buf)}
	p.Play(audio.ModalOpen)
	require.Equal(t, []audio.Cue{audio.ModalOpen}, r.Drain())
	require.Contains(t, buf.String(), "cue=modal_open")
}
