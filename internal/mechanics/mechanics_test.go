package mechanics_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/mechanics"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	logger := testhelpers.NewLogger(io.Discard)
	tests := []struct {
		interaction models.Interaction
		want        models.InteractionType
	}{
		{models.MultipleChoice{}, models.InteractionMultipleChoice},
		{models.Balloons{}, models.InteractionBalloons},
		{models.Shield{}, models.InteractionShield},
		{models.SubLocations{}, models.InteractionSubLocations},
		{models.CodeCracker{}, models.InteractionCodeCracker},
	}
	for _, tt := range tests {
		m := mechanics.New(models.NodeContent{Interaction: tt.interaction}, logger)
		require.Equal(t, tt.want, m.Type())
		require.Equal(t, tt.want, m.View().Type)
	}
	require.Nil(t, mechanics.New(models.NodeContent{}, logger))
}

func TestMultipleChoice(t *testing.T) {
	t.Parallel()
	m := mechanics.NewMultipleChoice(models.MultipleChoice{
		Question: "Who may speak?",
		Answers: []models.Answer{
			{ID: "a", Text: "Only the mayor"},
			{ID: "b", Text: "Everyone", Correct: true},
		},
	})

	fb, err := m.Select("a")
	require.NoError(t, err)
	require.Equal(t, mechanics.Rejected, fb.Result)
	require.Equal(t, []audio.Cue{audio.Error}, fb.Cues)
	require.Equal(t, "a", fb.Shake)
	require.Equal(t, mechanics.AnswerShake, fb.ShakeFor)
	require.Equal(t, "a", m.View().Shake)
	require.True(t, m.View().Answers[0].Selected)

	m.ClearShake("a")
	require.Empty(t, m.View().Shake)
	require.False(t, m.View().Answers[0].Selected, "wrong selection is cleared with the shake")
	require.False(t, m.IsComplete())

	_, err = m.Select("missing")
	require.ErrorIs(t, err, mechanics.ErrUnknownTarget)

	fb, err = m.Select("b")
	require.NoError(t, err)
	require.Equal(t, mechanics.Accepted, fb.Result)
	require.Equal(t, []audio.Cue{audio.Success}, fb.Cues)
	require.Equal(t, mechanics.AnswerSettle, fb.Settle)
	require.True(t, m.View().Answers[1].Selected)
	require.False(t, m.IsComplete(), "completion waits for the settle")

	fb, err = m.Select("a")
	require.NoError(t, err)
	require.Equal(t, mechanics.Ignored, fb.Result, "answers are locked while settling")

	m.Settle()
	require.True(t, m.IsComplete())
	require.True(t, m.CanProceed())

	fb, err = m.Select("a")
	require.NoError(t, err)
	require.Equal(t, mechanics.Ignored, fb.Result)
	require.True(t, m.IsComplete(), "completion is permanent")
}

func TestMultipleChoice_staleShake(t *testing.T) {
	t.Parallel()
	m := mechanics.NewMultipleChoice(models.MultipleChoice{Answers: []models.Answer{
		{ID: "a"}, {ID: "b"}, {ID: "c", Correct: true},
	}})
	_, err := m.Select("a")
	require.NoError(t, err)
	_, err = m.Select("b")
	require.NoError(t, err)
	m.ClearShake("a")
	require.Equal(t, "b", m.View().Shake, "an older shake timer must not clear a newer shake")
}

func TestTargets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		build  func() *mechanics.Targets
		hitCue audio.Cue
	}{
		{
			name: "balloons",
			build: func() *mechanics.Targets {
				return mechanics.NewBalloons(models.Balloons{Items: []models.BalloonItem{
					{ID: "1", IsCorrect: true}, {ID: "2"}, {ID: "3", IsCorrect: true},
				}})
			},
			hitCue: audio.Pop,
		},
		{
			name: "shield",
			build: func() *mechanics.Targets {
				return mechanics.NewShield(models.Shield{Items: []models.ShieldItem{
					{ID: "1", IsDanger: true}, {ID: "2"}, {ID: "3", IsDanger: true},
				}})
			},
			hitCue: audio.Success,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, order := range [][]string{{"1", "3"}, {"3", "1"}} {
				m := tt.build()

				fb, err := m.Click("2")
				require.NoError(t, err)
				require.Equal(t, mechanics.Rejected, fb.Result)
				require.Equal(t, mechanics.TargetShake, fb.ShakeFor)
				require.False(t, m.IsComplete(), "non-target clicks never change completion")

				fb, err = m.Click(order[0])
				require.NoError(t, err)
				require.Equal(t, []audio.Cue{tt.hitCue}, fb.Cues)
				require.False(t, m.IsComplete())

				fb, err = m.Click(order[0])
				require.NoError(t, err)
				require.Equal(t, mechanics.Ignored, fb.Result, "hits are irreversible")

				fb, err = m.Click(order[1])
				require.NoError(t, err)
				require.Equal(t, []audio.Cue{tt.hitCue, audio.Success}, fb.Cues)
				require.Equal(t, mechanics.TargetSettle, fb.Settle)
				require.True(t, m.IsComplete())
				require.False(t, m.CanProceed())

				m.Settle()
				require.True(t, m.CanProceed())

				fb, err = m.Click("2")
				require.NoError(t, err)
				require.Zero(t, fb.Settle, "completion is announced once")
				require.True(t, m.IsComplete())
			}
		})
	}
}

func TestTargets_unknownItem(t *testing.T) {
	t.Parallel()
	m := mechanics.NewBalloons(models.Balloons{Items: []models.BalloonItem{{ID: "1", IsCorrect: true}}})
	_, err := m.Click("9")
	require.ErrorIs(t, err, mechanics.ErrUnknownTarget)
}

func TestSubLocations(t *testing.T) {
	t.Parallel()
	m := mechanics.NewSubLocations(models.SubLocations{}, []models.SubScene{
		{ID: "mayor"}, {ID: "clerk"}, {ID: "guard"}, {ID: "archive"},
	})
	require.Equal(t, 3, m.View().RequiredVisits)

	visit := func(id string) {
		t.Helper()
		fb, err := m.Open(id)
		require.NoError(t, err)
		require.Equal(t, []audio.Cue{audio.Click}, fb.Cues)
		require.True(t, m.IsOpen())
		m.FinishListening()
		require.False(t, m.IsOpen())
	}

	visit("mayor")
	visit("mayor")
	require.Equal(t, 1, m.Visited(), "visits are idempotent")

	_, err := m.Open("clerk")
	require.NoError(t, err)
	fb, err := m.Open("guard")
	require.NoError(t, err)
	require.Equal(t, mechanics.Ignored, fb.Result, "one sub-scene at a time")
	m.Close()
	require.Equal(t, 1, m.Visited(), "closing without listening does not count")

	visit("clerk")
	require.False(t, m.IsComplete())
	visit("guard")
	require.True(t, m.IsComplete())
	require.True(t, m.CanProceed())
	require.True(t, m.View().SubScenes[2].Visited)
	require.False(t, m.View().SubScenes[3].Visited)

	_, err = m.Open("basement")
	require.ErrorIs(t, err, mechanics.ErrUnknownTarget)
}

func TestSubLocations_tooFewSubScenes(t *testing.T) {
	t.Parallel()
	m := mechanics.NewSubLocations(models.SubLocations{}, []models.SubScene{{ID: "a"}, {ID: "b"}})
	for _, id := range []string{"a", "b", "a", "b"} {
		_, err := m.Open(id)
		require.NoError(t, err)
		m.FinishListening()
	}
	require.False(t, m.IsComplete())
}

func codeQuestions(digits ...int) []models.CodeQuestion {
	qs := make([]models.CodeQuestion, len(digits))
	for i, d := range digits {
		qs[i] = models.CodeQuestion{
			ID:          string(rune('a' + i)),
			Question:    "question",
			Options:     []models.CodeOption{{Text: "wrong"}, {Text: "right", Value: d}},
			Explanation: "because",
		}
	}
	return qs
}

func TestCodeCracker(t *testing.T) {
	t.Parallel()
	m := mechanics.NewCodeCracker(models.CodeCracker{Questions: codeQuestions(3, 2, 4, 2)},
		testhelpers.NewLogger(io.Discard))

	fb, err := m.Choose(0)
	require.NoError(t, err)
	require.Equal(t, mechanics.Rejected, fb.Result)
	require.Equal(t, mechanics.ShakeBoard, fb.Shake)
	require.Equal(t, mechanics.CodeShake, fb.ShakeFor)
	require.Zero(t, m.View().Code.Step, "wrong answers stay on the question")
	m.ClearShake(mechanics.ShakeBoard)
	require.Empty(t, m.View().Shake)

	require.Equal(t, mechanics.Ignored, m.Confirm().Result, "nothing to confirm yet")

	for step := range 4 {
		fb, err = m.Choose(1)
		require.NoError(t, err)
		require.Equal(t, []audio.Cue{audio.Success}, fb.Cues)
		view := m.View().Code
		require.NotNil(t, view.Pending)
		require.Equal(t, "because", view.Explanation)
		require.Equal(t, step, view.Step, "digit is only pending until confirmed")

		fb = m.Confirm()
		if step < 3 {
			require.Equal(t, step+1, m.View().Code.Step)
			require.False(t, m.IsComplete())
		}
	}
	require.Equal(t, []audio.Cue{audio.Click, audio.Victory}, fb.Cues)
	require.Equal(t, mechanics.CodeSettle, fb.Settle)
	require.True(t, m.IsComplete())
	require.True(t, m.CanProceed())
	require.Equal(t, []int{3, 2, 4, 2}, m.View().Code.Collected)
	require.False(t, m.View().Code.Cracked)
	m.Settle()
	require.True(t, m.View().Code.Cracked)
}

func TestCodeCracker_mismatchStartsOver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	m := mechanics.NewCodeCracker(models.CodeCracker{Questions: codeQuestions(1, 2), TargetCode: "21"},
		testhelpers.NewLogger(&buf))
	for range 2 {
		_, err := m.Choose(1)
		require.NoError(t, err)
		m.Confirm()
	}
	require.False(t, m.IsComplete())
	view := m.View().Code
	require.Zero(t, view.Step)
	require.Empty(t, view.Collected)
	require.Contains(t, buf.String(), "level=WARN")
}

func TestCodeCracker_deterministic(t *testing.T) {
	t.Parallel()
	logger := testhelpers.NewLogger(io.Discard)
	run := func() []int {
		m := mechanics.NewCodeCracker(models.CodeCracker{Questions: codeQuestions(3, 2, 4, 2)}, logger)
		for range 4 {
			_, _ = m.Choose(0)
			_, _ = m.Choose(1)
			m.Confirm()
		}
		return m.View().Code.Collected
	}
	require.Equal(t, run(), run())
}
