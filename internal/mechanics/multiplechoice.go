package mechanics

import (
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

// MultipleChoice accepts unlimited attempts. A correct answer completes the mechanic once it settles.
type MultipleChoice struct {
	question models.MultipleChoice
	selected string
	shake    string
	settling bool
	complete bool
}

func NewMultipleChoice(q models.MultipleChoice) *MultipleChoice {
	return &MultipleChoice{question: q}
}

func (m *MultipleChoice) Type() models.InteractionType { return models.InteractionMultipleChoice }

func (m *MultipleChoice) Select(answerID string) (Feedback, error) {
	if m.complete || m.settling {
		return Feedback{}, nil
	}
	var (
		answer models.Answer
		found  bool
	)
	for _, a := range m.question.Answers {
		if a.ID == answerID {
			answer, found = a, true
			break
		}
	}
	if !found {
		return Feedback{}, errors.Wrap(ErrUnknownTarget, "select answer", slog.String("answerID", answerID))
	}
	m.selected = answerID
	if answer.Correct {
		m.shake = ""
		m.settling = true
		fb := accepted(audio.Success)
		fb.Settle = AnswerSettle
		return fb, nil
	}
	m.shake = answerID
	return rejected(answerID, AnswerShake), nil
}

func (m *MultipleChoice) IsComplete() bool { return m.complete }

func (m *MultipleChoice) CanProceed() bool { return m.complete }

func (m *MultipleChoice) Settle() {
	if m.settling {
		m.settling = false
		m.complete = true
	}
}

// ClearShake also clears the wrong selection.
func (m *MultipleChoice) ClearShake(id string) {
	if m.shake != id {
		return
	}
	m.shake = ""
	if m.selected == id {
		m.selected = ""
	}
}

func (m *MultipleChoice) View() View {
	answers := make([]AnswerView, len(m.question.Answers))
	for i, a := range m.question.Answers {
		answers[i] = AnswerView{ID: a.ID, Text: a.Text, Selected: a.ID == m.selected}
	}
	return View{
		Type:       m.Type(),
		Complete:   m.complete,
		CanProceed: m.complete,
		Shake:      m.shake,
		Question:   m.question.Question,
		Answers:    answers,
	}
}
